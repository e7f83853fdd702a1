package cmd

import (
	"log/slog"
	"os"

	"github.com/learningorchestra/orchestra/cmd/builder"
	"github.com/learningorchestra/orchestra/cmd/dataset"
	"github.com/learningorchestra/orchestra/cmd/datatype"
	"github.com/learningorchestra/orchestra/cmd/dev"
	"github.com/learningorchestra/orchestra/cmd/embedding"
	"github.com/learningorchestra/orchestra/cmd/histogram"
	"github.com/learningorchestra/orchestra/cmd/projection"
	"github.com/learningorchestra/orchestra/cmd/tool"
	"github.com/learningorchestra/orchestra/cmd/util"
	"github.com/learningorchestra/orchestra/cmd/version"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/config"
	"github.com/learningorchestra/orchestra/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile, logLevel, logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "orchestra",
	Short:         "Learning orchestra client",
	SilenceErrors: true,
}

func init() {
	cobra.EnableTraverseRunHooks = true

	vip, err := config.NewViper()
	if err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := log.New(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		return config.Read(vip, cfgFile)
	}

	o := util.NewOrchestra(func() (*client.Config, error) {
		return config.Load(vip)
	})

	// Flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default \"config.properties\")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level, can be one of: debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format, can be one of: text, json")
	rootCmd.PersistentFlags().StringP("output", "o", util.OutputText, "output format, can be one of: text, json, yaml")
	rootCmd.PersistentFlags().Bool("ignore-asserts", false, "ignore-asserts mode")
	_ = viper.BindPFlag("ignore-asserts", rootCmd.PersistentFlags().Lookup("ignore-asserts"))

	if err := config.Bind(rootCmd.PersistentFlags(), vip); err != nil {
		panic(err)
	}

	// Add Subcommands
	rootCmd.AddCommand(dataset.NewCmd(o))
	rootCmd.AddCommand(projection.NewCmd(o))
	rootCmd.AddCommand(datatype.NewCmd(o))
	rootCmd.AddCommand(histogram.NewCmd(o))
	rootCmd.AddCommand(embedding.NewPCACmd(o))
	rootCmd.AddCommand(embedding.NewTSNECmd(o))
	rootCmd.AddCommand(builder.NewCmd(o))
	rootCmd.AddCommand(tool.NewExploreCmd(o))
	rootCmd.AddCommand(tool.NewTransformCmd(o))
	rootCmd.AddCommand(dev.NewCmd())
	rootCmd.AddCommand(version.NewCmd())

	// Set default output
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
