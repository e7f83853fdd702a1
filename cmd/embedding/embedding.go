package embedding

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

// Embedding is the api shared by pca and t-sne.
type Embedding interface {
	util.Resource
	RunSync(context.Context, string, string, string) (*client.Envelope, error)
	RunAsync(context.Context, string, string, string) (*client.Outcome, error)
	SearchData(context.Context, string) (*client.Envelope, error)
	SearchPlot(context.Context, string) (*client.Envelope, error)
}

func NewPCACmd(o *util.Orchestra) *cobra.Command {
	return newCmd(o, "pca", "Principal component analysis plots", func(o *orchestra.Orchestra) Embedding {
		return o.PCA
	})
}

func NewTSNECmd(o *util.Orchestra) *cobra.Command {
	return newCmd(o, "tsne", "t-SNE plots", func(o *orchestra.Orchestra) Embedding {
		return o.TSNE
	})
}

func newCmd(o *util.Orchestra, use string, short string, r func(*orchestra.Orchestra) Embedding) *cobra.Command {
	cmd := util.GroupCmd(o, use, short)

	// Add subcommands
	cmd.AddCommand(RunCmd(o, r))
	cmd.AddCommand(GetCmd(o, r))
	cmd.AddCommand(PlotCmd(o, r))
	cmd.AddCommand(util.ResourceCmds(o, r)...)

	return cmd
}

func RunCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Embedding) *cobra.Command {
	var (
		dataset string
		label   string
		async   bool
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Embed a dataset in two dimensions and plot it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return r(o.Orchestra).RunSync(ctx, dataset, args[0], label)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return r(o.Orchestra).RunAsync(ctx, dataset, args[0], label)
				},
			)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "source dataset")
	cmd.Flags().StringVar(&label, "label", "", "attribute the plot is colored by")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func GetCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Embedding) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Get the embedded data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := r(o.Orchestra).SearchData(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}
}

func PlotCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Embedding) *cobra.Command {
	return &cobra.Command{
		Use:   "plot <name>",
		Short: "Get the plot url",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := r(o.Orchestra).SearchPlot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}
}
