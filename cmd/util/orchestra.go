package util

import (
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

// Orchestra is shared by every command. It is set up on first use, after
// flags and config files have been read.
type Orchestra struct {
	*orchestra.Orchestra
	load func() (*client.Config, error)
	opts []orchestra.Option
}

func NewOrchestra(load func() (*client.Config, error), opts ...orchestra.Option) *Orchestra {
	return &Orchestra{load: load, opts: opts}
}

// MockOrchestra returns an orchestra that is already set up and sends every
// request through gateway.
func MockOrchestra(config *client.Config, gateway client.Gateway, opts ...client.Option) *Orchestra {
	o, err := orchestra.New(config, orchestra.WithClientOptions(append(opts, client.UseGateway(gateway))...))
	if err != nil {
		panic(err)
	}

	return &Orchestra{Orchestra: o}
}

func (o *Orchestra) Setup() error {
	if o.Orchestra != nil {
		return nil
	}

	config, err := o.load()
	if err != nil {
		return err
	}

	x, err := orchestra.New(config, o.opts...)
	if err != nil {
		return err
	}

	o.Orchestra = x
	return nil
}

// GroupCmd returns a parent command that sets up o before any of its
// subcommands run.
func GroupCmd(o *Orchestra, use string, short string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.Setup()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
}
