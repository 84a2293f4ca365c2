package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/antminer/covering"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/internal/telemetry"
	"github.com/katalvlaran/antminer/quality"
)

func newTrainCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a rule list and print it with its training score",
		Long: `train reads a CSV file with a header row, induces a rule list for the
target column and prints it. A continuous target trains regression rules
(regression-fit rule quality, rmse list quality).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, v)
		},
	}
	f := cmd.Flags()
	f.String("data", "", "training CSV file")
	f.String("target", "", "target column name")
	f.Bool("nominal-target", false, "treat a numeric target as class labels")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.Bool("trace", false, "print spans to stderr")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runTrain(cmd *cobra.Command, v *viper.Viper) error {
	var (
		ctx   = cmd.Context()
		flags = cmd.Flags()
	)
	logger, err := newLogger(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts, err := loadOptions(cmd, v)
	if err != nil {
		return err
	}

	path, _ := flags.GetString("data")
	target, _ := flags.GetString("target")
	nominal, _ := flags.GetBool("nominal-target")
	ds, err := readDataset(path, target, nominal)
	if err != nil {
		return err
	}
	if !ds.Classification() && (opts.RuleQuality != quality.RegressionFitName || opts.ListQuality != quality.RMSEName) {
		logger.Info("continuous target, switching to regression quality functions")
		opts.RuleQuality = quality.RegressionFitName
		opts.ListQuality = quality.RMSEName
	}

	shutdown, srv, err := startTelemetry(cmd)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if srv != nil {
			_ = srv.Shutdown(sctx)
		}
		_ = shutdown(sctx)
	}()

	trainer, err := covering.New(opts, covering.WithLogger(logger))
	if err != nil {
		return err
	}
	list, err := trainer.Train(ctx, ds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, list.String(ds))
	if ds.Classification() {
		fmt.Fprintf(out, "\ntraining accuracy: %.4f\n", list.Accuracy(ds))
	} else {
		fmt.Fprintf(out, "\ntraining rmse: %.4f\n", quality.RMSE{}.Evaluate(ds, list))
	}

	if srv != nil {
		logger.Info("serving metrics until interrupted", "addr", srv.Addr)
		<-ctx.Done()
	}

	return nil
}

func readDataset(path, target string, nominal bool) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return dataset.ReadCSV(f, target, nominal)
}

// startTelemetry installs the exporters requested by the flags and starts
// the metrics server when an address is given.
func startTelemetry(cmd *cobra.Command) (func(context.Context) error, *http.Server, error) {
	var (
		flags   = cmd.Flags()
		cfg     = telemetry.DefaultConfig()
		addr, _ = flags.GetString("metrics-addr")
		tr, _   = flags.GetBool("trace")
	)
	cfg.Writer = cmd.ErrOrStderr()
	if tr {
		cfg.TraceExporter = telemetry.ExporterStdout
	}
	if addr != "" {
		cfg.MetricExporter = telemetry.ExporterPrometheus
	}

	shutdown, err := telemetry.Setup(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	if addr == "" {
		return shutdown, nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = shutdown(cmd.Context())
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(cmd.ErrOrStderr(), "metrics server:", err)
		}
	}()

	return shutdown, srv, nil
}
