package builder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

var runExample = `
# Train and evaluate two spark ml classifiers
orchestra builder run titanic_model --train titanic_training --test titanic_testing \
  --code-file preprocess.py --classifier LR --classifier DT

# Same with tensorflow, without waiting
orchestra builder run titanic_model --tool tensorflow --train titanic_training --test titanic_testing \
  --code-file preprocess.py --classifier LR --async`

func NewCmd(o *util.Orchestra) *cobra.Command {
	cmd := util.GroupCmd(o, "builder", "Model builds", "builders", "build")

	// Add subcommands
	cmd.AddCommand(RunCmd(o))
	cmd.AddCommand(GetCmd(o))
	cmd.AddCommand(PredictionsCmd(o))
	cmd.AddCommand(util.ResourceCmds(o, func(o *orchestra.Orchestra) *orchestra.Builder {
		return o.Builder
	})...)

	return cmd
}

func RunCmd(o *util.Orchestra) *cobra.Command {
	var (
		tool     string
		code     string
		codeFile string
		async    bool
		spec     = &orchestra.BuildSpec{}
	)

	cmd := &cobra.Command{
		Use:     "run <name>",
		Short:   "Train and evaluate classifiers",
		Example: runExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}
			spec.Name = args[0]

			spec.ModelingCode = code
			if codeFile != "" {
				b, err := os.ReadFile(codeFile)
				if err != nil {
					return err
				}
				spec.ModelingCode = string(b)
			}

			var (
				sync   func(context.Context, *orchestra.BuildSpec) (*client.Envelope, error)
				submit func(context.Context, *orchestra.BuildSpec) (*client.Outcome, error)
			)

			switch tool {
			case orchestra.SparkML:
				sync, submit = o.Builder.RunSparkMLSync, o.Builder.RunSparkMLAsync
			case orchestra.TensorFlow:
				sync, submit = o.Builder.RunTensorFlowSync, o.Builder.RunTensorFlowAsync
			default:
				return fmt.Errorf("tool must be one of %s, %s", orchestra.SparkML, orchestra.TensorFlow)
			}

			return util.Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return sync(ctx, spec) },
				func(ctx context.Context) (*client.Outcome, error) { return submit(ctx, spec) },
			)
		},
	}

	cmd.Flags().StringVar(&tool, "tool", orchestra.SparkML, "sparkml or tensorflow")
	cmd.Flags().StringVar(&spec.TrainDataset, "train", "", "training dataset")
	cmd.Flags().StringVar(&spec.TestDataset, "test", "", "test dataset")
	cmd.Flags().StringVar(&code, "code", "", "modeling code")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "file holding the modeling code")
	cmd.Flags().StringArrayVar(&spec.Classifiers, "classifier", nil, "classifier to train")
	util.AsyncFlag(cmd, &async)

	_ = cmd.MarkFlagRequired("train")
	_ = cmd.MarkFlagRequired("test")
	_ = cmd.MarkFlagRequired("classifier")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")

	return cmd
}

func GetCmd(o *util.Orchestra) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Get build metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			e, err := o.Builder.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}
}

func PredictionsCmd(o *util.Orchestra) *cobra.Command {
	var page orchestra.Page

	cmd := &cobra.Command{
		Use:   "predictions <name>",
		Short: "Get classifier evaluations, or a page of predicted rows with --limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			var (
				e   *client.Envelope
				err error
			)
			if cmd.Flags().Changed("limit") || cmd.Flags().Changed("skip") {
				e, err = o.Builder.SearchRegisterPredictions(cmd.Context(), args[0], page)
			} else {
				e, err = o.Builder.SearchPredictions(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			return util.PrintEnvelope(cmd, e)
		},
	}

	util.PageFlags(cmd, &page)

	return cmd
}
