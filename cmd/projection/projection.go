package projection

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

var removeAttributesExample = `
# Create iris_small from iris without two attributes
orchestra projection remove-attributes iris_small --from iris --attribute sepal_width --attribute petal_width

# Drop the attributes from iris itself
orchestra projection remove-attributes iris --from iris --attribute sepal_width --in-place`

func NewCmd(o *util.Orchestra) *cobra.Command {
	cmd := util.GroupCmd(o, "projection", "Dataset projections", "projections")

	// Add subcommands
	cmd.AddCommand(RemoveAttributesCmd(o))
	cmd.AddCommand(InsertAttributeCmd(o))
	cmd.AddCommand(ResizeCmds(o)...)
	cmd.AddCommand(JoinCmd(o))
	cmd.AddCommand(JoinPairCmd(o))
	cmd.AddCommand(UpdateValuesCmd(o))
	cmd.AddCommand(GetCmd(o))
	cmd.AddCommand(util.ResourceCmds(o, func(o *orchestra.Orchestra) *orchestra.Projection {
		return o.Projection
	})...)

	return cmd
}

func RemoveAttributesCmd(o *util.Orchestra) *cobra.Command {
	var (
		from       string
		attributes []string
		inPlace    bool
		async      bool
	)

	cmd := &cobra.Command{
		Use:     "remove-attributes <name>",
		Short:   "Remove attributes from a dataset",
		Example: removeAttributesExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Projection.RemoveAttributesSync(ctx, args[0], from, attributes, !inPlace)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Projection.RemoveAttributesAsync(ctx, args[0], from, attributes, !inPlace)
				},
			)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source dataset")
	cmd.Flags().StringArrayVar(&attributes, "attribute", nil, "attribute to remove")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "modify the dataset instead of creating a new one")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("attribute")

	return cmd
}

func InsertAttributeCmd(o *util.Orchestra) *cobra.Command {
	var (
		attribute string
		existing  string
		values    map[string]string
		inPlace   bool
		async     bool
	)

	cmd := &cobra.Command{
		Use:   "insert-attribute <name>",
		Short: "Derive a new attribute from an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Projection.InsertAttributeSync(ctx, args[0], attribute, existing, values, !inPlace)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Projection.InsertAttributeAsync(ctx, args[0], attribute, existing, values, !inPlace)
				},
			)
		},
	}

	cmd.Flags().StringVar(&attribute, "attribute", "", "attribute to insert")
	cmd.Flags().StringVar(&existing, "from-attribute", "", "attribute the values are derived from")
	cmd.Flags().StringToStringVar(&values, "value", map[string]string{}, "existing value to new value")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "modify the dataset instead of creating a new one")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("attribute")
	_ = cmd.MarkFlagRequired("from-attribute")

	return cmd
}

// ResizeCmds returns the reduce and enlarge commands.
func ResizeCmds(o *util.Orchestra) []*cobra.Command {
	type resize struct {
		use   string
		short string
		sync  func(context.Context, string, int, bool) (*client.Envelope, error)
		async func(context.Context, string, int, bool) (*client.Outcome, error)
	}

	cmds := []*cobra.Command{}
	for _, r := range []resize{
		{
			use:   "reduce <name>",
			short: "Sample a dataset down to size rows",
			sync: func(ctx context.Context, name string, size int, create bool) (*client.Envelope, error) {
				return o.Projection.ReduceSync(ctx, name, size, create)
			},
			async: func(ctx context.Context, name string, size int, create bool) (*client.Outcome, error) {
				return o.Projection.ReduceAsync(ctx, name, size, create)
			},
		},
		{
			use:   "enlarge <name>",
			short: "Resample a dataset up to size rows",
			sync: func(ctx context.Context, name string, size int, create bool) (*client.Envelope, error) {
				return o.Projection.EnlargeSync(ctx, name, size, create)
			},
			async: func(ctx context.Context, name string, size int, create bool) (*client.Outcome, error) {
				return o.Projection.EnlargeAsync(ctx, name, size, create)
			},
		},
	} {
		var (
			size    int
			inPlace bool
			async   bool
		)

		cmd := &cobra.Command{
			Use:   r.use,
			Short: r.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					return errors.New("must specify a name")
				}

				return util.Submit(cmd, async,
					func(ctx context.Context) (*client.Envelope, error) { return r.sync(ctx, args[0], size, !inPlace) },
					func(ctx context.Context) (*client.Outcome, error) { return r.async(ctx, args[0], size, !inPlace) },
				)
			},
		}

		cmd.Flags().IntVar(&size, "size", 0, "number of rows")
		cmd.Flags().BoolVar(&inPlace, "in-place", false, "modify the dataset instead of creating a new one")
		util.AsyncFlag(cmd, &async)

		_ = cmd.MarkFlagRequired("size")

		cmds = append(cmds, cmd)
	}

	return cmds
}

func JoinCmd(o *util.Orchestra) *cobra.Command {
	var (
		datasets       []string
		removeExisting bool
		async          bool
	)

	cmd := &cobra.Command{
		Use:   "join <name>",
		Short: "Concatenate datasets into a new dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Projection.JoinSync(ctx, datasets, args[0], removeExisting)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Projection.JoinAsync(ctx, datasets, args[0], removeExisting)
				},
			)
		},
	}

	cmd.Flags().StringArrayVar(&datasets, "dataset", nil, "dataset to join, at least two")
	cmd.Flags().BoolVar(&removeExisting, "remove-existing", false, "remove the joined datasets")
	util.AsyncFlag(cmd, &async)

	return cmd
}

func JoinPairCmd(o *util.Orchestra) *cobra.Command {
	var (
		one            string
		two            string
		associations   map[string]string
		removeExisting bool
		async          bool
	)

	cmd := &cobra.Command{
		Use:   "join-pair <name>",
		Short: "Join two datasets on associated attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Projection.JoinPairSync(ctx, one, two, associations, args[0], removeExisting)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Projection.JoinPairAsync(ctx, one, two, associations, args[0], removeExisting)
				},
			)
		},
	}

	cmd.Flags().StringVar(&one, "left", "", "first dataset")
	cmd.Flags().StringVar(&two, "right", "", "second dataset")
	cmd.Flags().StringToStringVar(&associations, "on", map[string]string{}, "left attribute to right attribute")
	cmd.Flags().BoolVar(&removeExisting, "remove-existing", false, "remove the joined datasets")
	util.AsyncFlag(cmd, &async)

	return cmd
}

func UpdateValuesCmd(o *util.Orchestra) *cobra.Command {
	var (
		attribute string
		values    map[string]string
		async     bool
	)

	cmd := &cobra.Command{
		Use:   "update-values <name>",
		Short: "Rewrite values of an attribute in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return o.Projection.UpdateValuesSync(ctx, args[0], attribute, values)
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return o.Projection.UpdateValuesAsync(ctx, args[0], attribute, values)
				},
			)
		},
	}

	cmd.Flags().StringVar(&attribute, "attribute", "", "attribute to rewrite")
	cmd.Flags().StringToStringVar(&values, "value", map[string]string{}, "old value to new value")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("attribute")

	return cmd
}

func GetCmd(o *util.Orchestra) *cobra.Command {
	var page orchestra.Page

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get a page of projection content",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Projection.SearchContent(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}

	util.PageFlags(cmd, &page)

	return cmd
}
