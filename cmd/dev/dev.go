package dev

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/learningorchestra/orchestra/internal/backend"
	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/internal/util"
	"github.com/learningorchestra/orchestra/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	Addr         string        `flag:"addr" desc:"backend address" default:"127.0.0.1:5000" mapstructure:"addr"`
	MetricsAddr  string        `flag:"metrics-addr" desc:"prometheus metrics address" default:"127.0.0.1:9090" mapstructure:"metrics_addr"`
	Timeout      time.Duration `flag:"timeout" desc:"graceful shutdown timeout" default:"10s" mapstructure:"timeout"`
	Polls        int           `flag:"polls" desc:"status polls an operation stays pending for" default:"2" mapstructure:"polls"`
	Marker       string        `flag:"marker" desc:"suffix marking a result as pending" default:" please wait" mapstructure:"marker"`
	Secret       string        `flag:"secret" desc:"hs256 secret bearer tokens are verified with, empty disables authentication" mapstructure:"secret"`
	ClockSkew    time.Duration `flag:"clock-skew" desc:"leeway applied to token expiry" default:"30s" mapstructure:"clock_skew"`
	AllowOrigins []string      `flag:"allow-origin" desc:"allowed cors origin, empty disables cors" mapstructure:"allow_origin"`
}

func NewCmd() *cobra.Command {
	var (
		cfg = &Config{}
		vip = viper.New()
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start an in memory learning orchestra backend",
		Long: "Start an in memory stand in for the learning orchestra microservices.\n\n" +
			"Every operation stays pending for --polls status reads. The matching client\n" +
			"configuration is printed on startup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hooks := mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			)

			if err := vip.Unmarshal(cfg, viper.DecodeHook(hooks)); err != nil {
				return err
			}

			return Serve(cmd, cfg)
		},
	}

	// bind config
	if err := config.BindStruct(cmd.Flags(), vip, cfg); err != nil {
		panic(err)
	}

	// maintain defined order of flags
	cmd.Flags().SortFlags = false

	return cmd
}

func Serve(cmd *cobra.Command, cfg *Config) error {
	// metrics
	reg := prometheus.NewRegistry()
	metrics := metrics.New(reg)

	b := backend.New(&backend.Config{
		Addr:         cfg.Addr,
		Timeout:      cfg.Timeout,
		Polls:        cfg.Polls,
		Marker:       cfg.Marker,
		Secret:       cfg.Secret,
		ClockSkew:    cfg.ClockSkew,
		AllowOrigins: cfg.AllowOrigins,
	}, metrics, slog.Default())

	// client configuration
	cmd.Printf("address=http://%s\n", cfg.Addr)
	cmd.Printf("search_content=%s\n", cfg.Marker)
	cmd.Printf("search_metadata=%s\n", backend.StatusSuffix)
	for _, kv := range util.OrderedRangeKV(b.Routes()) {
		cmd.Printf("%s=%s\n", kv.Key, kv.Value)
	}

	// metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go func() {
		slog.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "err", err)
		}
	}()

	errors := make(chan error, 1)
	go b.Start(errors)

	// halt until we get a shutdown signal or an error
	// occurs, whichever happens first
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var err error
	select {
	case s := <-sig:
		slog.Info("shutdown signal received, shutting down", "signal", s)
	case err = <-errors:
		slog.Error("backend error received, shutting down", "err", err)
	}

	if stopErr := b.Stop(); stopErr != nil {
		slog.Warn("error stopping backend", "err", stopErr)
	}
	if closeErr := metricsServer.Close(); closeErr != nil {
		slog.Warn("error stopping metrics server", "err", closeErr)
	}

	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}
