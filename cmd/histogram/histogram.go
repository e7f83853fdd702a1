package histogram

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

func NewCmd(o *util.Orchestra) *cobra.Command {
	cmd := util.GroupCmd(o, "histogram", "Attribute histograms", "histograms")

	// Add subcommands
	cmd.AddCommand(RunCmd(o))
	cmd.AddCommand(GetCmd(o))
	cmd.AddCommand(util.ResourceCmds(o, func(o *orchestra.Orchestra) *orchestra.Histogram {
		return o.Histogram
	})...)

	return cmd
}

func RunCmd(o *util.Orchestra) *cobra.Command {
	var (
		dataset   string
		attribute string
		async     bool
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Count the values of a dataset attribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Histogram.RunSync(ctx, dataset, args[0], attribute)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Histogram.RunAsync(ctx, dataset, args[0], attribute)
				},
			)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "source dataset")
	cmd.Flags().StringVar(&attribute, "attribute", "", "attribute to count")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("attribute")

	return cmd
}

func GetCmd(o *util.Orchestra) *cobra.Command {
	var page orchestra.Page

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get a page of histogram content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Histogram.Search(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}

	util.PageFlags(cmd, &page)

	return cmd
}
