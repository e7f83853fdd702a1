package datatype

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

var updateExample = `
# Convert two attributes of iris to numbers
orchestra datatype update iris --type sepal_length=number --type petal_length=number`

func NewCmd(o *util.Orchestra) *cobra.Command {
	cmd := util.GroupCmd(o, "datatype", "Dataset attribute types", "datatypes")

	// Add subcommands
	cmd.AddCommand(UpdateCmd(o))
	cmd.AddCommand(GetCmd(o))
	cmd.AddCommand(util.ResourceCmds(o, func(o *orchestra.Orchestra) *orchestra.DataType {
		return o.DataType
	})...)

	return cmd
}

func UpdateCmd(o *util.Orchestra) *cobra.Command {
	var (
		types map[string]string
		async bool
	)

	cmd := &cobra.Command{
		Use:     "update <name>",
		Short:   "Change attribute types to string or number",
		Example: updateExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return o.DataType.UpdateTypesSync(ctx, args[0], types) },
				func(ctx context.Context) (*client.Outcome, error) { return o.DataType.UpdateTypesAsync(ctx, args[0], types) },
			)
		},
	}

	cmd.Flags().StringToStringVar(&types, "type", map[string]string{}, "attribute to type")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("type")

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

			e, err := o.DataType.SearchContent(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}

	util.PageFlags(cmd, &page)

	return cmd
}
