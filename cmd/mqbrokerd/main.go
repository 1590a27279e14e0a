// Command mqbrokerd runs one mqbroker.Broker instance until an OS signal
// requests a graceful shutdown.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gonzalop/mqbroker"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "mqbrokerd",
		Short: "Run a single-node MQTT v5 broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBroker(v)
		},
	}

	flags := cmd.Flags()
	flags.String("bind", ":1883", "address to listen on, \"host:port\"")
	flags.Uint16("keep-alive", 60, "keep-alive interval in seconds advertised/enforced by the broker; 0 disables it")
	flags.Bool("force-keep-alive", false, "always override the client's requested keep-alive with --keep-alive")
	flags.Bool("metrics", false, "serve Prometheus metrics on --metrics-addr")
	flags.String("metrics-addr", ":9090", "address to serve /metrics on, when --metrics is set")
	flags.String("config", "", "optional path to a config file (yaml, json, toml, ...)")

	v.BindPFlags(flags)
	v.SetEnvPrefix("MQBROKER")
	v.AutomaticEnv()

	cobra.OnInitialize(func() {
		if cfg := v.GetString("config"); cfg != "" {
			v.SetConfigFile(cfg)
			if err := v.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "mqbrokerd: failed to read config file %s: %v\n", cfg, err)
			}
		}
	})

	return cmd
}

func runBroker(v *viper.Viper) error {
	logger := slog.Default()

	settings := mqbroker.NewSettings(
		mqbroker.WithBindAddress(v.GetString("bind")),
		mqbroker.WithKeepAlive(uint16(v.GetUint32("keep-alive"))),
		mqbroker.WithForceKeepAlive(v.GetBool("force-keep-alive")),
		mqbroker.WithMetrics(v.GetBool("metrics"), v.GetString("metrics-addr")),
		mqbroker.WithLogger(logger),
	)

	if !settings.IsValid() {
		return fmt.Errorf("mqbrokerd: invalid settings, refusing to start")
	}

	registry := prometheus.NewRegistry()
	broker := mqbroker.NewBroker(settings, registry)

	if settings.MetricsEnabled {
		go serveMetrics(settings.MetricsAddr, registry, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		broker.Stop()
	}()

	logger.Info("starting broker", "bind_address", settings.BindAddress, "keep_alive", settings.KeepAlive)
	return broker.Run()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
