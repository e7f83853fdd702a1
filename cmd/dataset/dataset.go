package dataset

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

var insertExample = `
# Insert a csv dataset and wait until it is downloaded
orchestra dataset insert iris --uri https://example.com/iris.csv

# Insert without waiting, then wait on the returned handle
orchestra dataset insert iris --uri https://example.com/iris.csv --async
orchestra dataset wait iris`

func dataset(o *orchestra.Orchestra) *orchestra.Dataset {
	return o.Dataset
}

func NewCmd(o *util.Orchestra) *cobra.Command {
	cmd := util.GroupCmd(o, "dataset", "Learning orchestra datasets", "datasets")

	// Add subcommands
	cmd.AddCommand(InsertCmd(o))
	cmd.AddCommand(UpdateCmd(o))
	cmd.AddCommand(GetCmd(o))
	cmd.AddCommand(util.ResourceCmds(o, dataset)...)

	return cmd
}

func InsertCmd(o *util.Orchestra) *cobra.Command {
	var (
		uri   string
		async bool
	)

	cmd := &cobra.Command{
		Use:     "insert <name>",
		Short:   "Insert a dataset from a csv url",
		Example: insertExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return o.Dataset.InsertSync(ctx, uri, args[0]) },
				func(ctx context.Context) (*client.Outcome, error) { return o.Dataset.InsertAsync(ctx, uri, args[0]) },
			)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "csv url")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

func UpdateCmd(o *util.Orchestra) *cobra.Command {
	var (
		uri   string
		async bool
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Replace a dataset with the content of a csv url",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return o.Dataset.UpdateSync(ctx, uri, args[0]) },
				func(ctx context.Context) (*client.Outcome, error) { return o.Dataset.UpdateAsync(ctx, uri, args[0]) },
			)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "csv url")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("uri")

	return cmd
}

func GetCmd(o *util.Orchestra) *cobra.Command {
	var page orchestra.Page

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get a page of dataset content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Dataset.SearchContent(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}

	util.PageFlags(cmd, &page)

	return cmd
}
