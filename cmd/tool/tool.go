package tool

import (
	"context"
	"errors"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

var runExample = `
# Fit a kmeans model on iris
orchestra explore run iris --package sklearn.cluster --class KMeans \
  --constructor-param n_clusters=3 --method fit`

// Tool is the api shared by explore and transform.
type Tool interface {
	util.Resource
	RunSync(context.Context, *orchestra.ToolSpec) (*client.Envelope, error)
	RunAsync(context.Context, *orchestra.ToolSpec) (*client.Outcome, error)
	UpdateSync(context.Context, string, string, map[string]any) (*client.Envelope, error)
	UpdateAsync(context.Context, string, string, map[string]any) (*client.Outcome, error)
	Search(context.Context, string) (*client.Envelope, error)
}

func NewExploreCmd(o *util.Orchestra) *cobra.Command {
	r := func(o *orchestra.Orchestra) Tool {
		return o.Explore
	}

	cmd := newCmd(o, "explore", "Exploration tools", r)
	cmd.AddCommand(&cobra.Command{
		Use:   "plot <name>",
		Short: "Get the plot url",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Explore.SearchPlot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	})

	return cmd
}

func NewTransformCmd(o *util.Orchestra) *cobra.Command {
	r := func(o *orchestra.Orchestra) Tool {
		return o.Transform
	}

	var page orchestra.Page

	content := &cobra.Command{
		Use:   "content <name>",
		Short: "Get a page of the transformed dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Transform.SearchContent(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}
	util.PageFlags(content, &page)

	cmd := newCmd(o, "transform", "Transformation tools", r)
	cmd.AddCommand(content)

	return cmd
}

func newCmd(o *util.Orchestra, use string, short string, r func(*orchestra.Orchestra) Tool) *cobra.Command {
	cmd := util.GroupCmd(o, use, short)

	// Add subcommands
	cmd.AddCommand(RunCmd(o, r))
	cmd.AddCommand(UpdateCmd(o, r))
	cmd.AddCommand(GetCmd(o, r))
	cmd.AddCommand(util.ResourceCmds(o, r)...)

	return cmd
}

func RunCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Tool) *cobra.Command {
	var (
		constructor map[string]string
		method      map[string]string
		async       bool
		spec        = &orchestra.ToolSpec{}
	)

	cmd := &cobra.Command{
		Use:     "run <name>",
		Short:   "Instantiate a class and call one of its methods",
		Example: runExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			spec.Name = args[0]
			spec.ConstructorParameters = util.Params(constructor)
			spec.MethodParameters = util.Params(method)

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return r(o.Orchestra).RunSync(ctx, spec) },
				func(ctx context.Context) (*client.Outcome, error) { return r(o.Orchestra).RunAsync(ctx, spec) },
			)
		},
	}

	cmd.Flags().StringVar(&spec.Tool, "tool", "scikit-learn", "scikit-learn or tensorflow")
	cmd.Flags().StringVar(&spec.Description, "description", "", "free text description")
	cmd.Flags().StringVar(&spec.Package, "package", "", "package holding the class")
	cmd.Flags().StringVar(&spec.Class, "class", "", "class to instantiate")
	cmd.Flags().StringToStringVar(&constructor, "constructor-param", map[string]string{}, "constructor parameter, values are decoded as json when possible")
	cmd.Flags().StringVar(&spec.Method, "method", "", "method to call")
	cmd.Flags().StringToStringVar(&method, "method-param", map[string]string{}, "method parameter, values are decoded as json when possible")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func UpdateCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Tool) *cobra.Command {
	var (
		method string
		params map[string]string
		async  bool
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Call a method again on a previous run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) {
					return r(o.Orchestra).UpdateSync(ctx, args[0], method, util.Params(params))
				},
				func(ctx context.Context) (*client.Outcome, error) {
					return r(o.Orchestra).UpdateAsync(ctx, args[0], method, util.Params(params))
				},
			)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "method to call")
	cmd.Flags().StringToStringVar(&params, "method-param", map[string]string{}, "method parameter, values are decoded as json when possible")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func GetCmd(o *util.Orchestra, r func(*orchestra.Orchestra) Tool) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Get run metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := r(o.Orchestra).Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}
}
