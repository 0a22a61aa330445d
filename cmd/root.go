package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang-netstate/internal/adapter/infrastructure/dhcp"
	"golang-netstate/internal/adapter/infrastructure/file"
	"golang-netstate/internal/adapter/infrastructure/journal"
	"golang-netstate/internal/adapter/infrastructure/network"
	"golang-netstate/internal/adapter/netlink"
	"golang-netstate/internal/adapter/snapshot"
	"golang-netstate/internal/pkg/config"
	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/pkg/reconcile"
	"golang-netstate/internal/port"

	"github.com/spf13/cobra"
)

var (
	configFlag  string
	envFileFlag string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:           "golang-netstate",
	Short:         "golang-netstate reconciles declarative network interface state",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFileFlag, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}

		loaded, err := config.Load(configFlag)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		loaded.ApplyEnv()

		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("config validation error: %w", err)
		}

		logging.InitLogger(loaded.Logging)
		cfg = loaded
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "f", "", "Path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Path to dotenv file with NETSTATE_* overrides")
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.GetLogger().WithField("signal", sig.String()).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// newBackend creates the state backend selected by the configuration.
func newBackend(fileMgr port.FileManager) port.StateBackend {
	logger := logging.WithComponent("cmd")

	if cfg.Backend.Type == config.BackendSnapshot {
		logger.WithField("state_file", cfg.Backend.StateFile).Debug("Using snapshot backend")
		return snapshot.NewBackend(fileMgr, cfg.Backend.StateFile)
	}

	logger.Debug("Using netlink backend")
	return netlink.NewBackend(network.NewManagerAdapter(), fileMgr, dhcp.NewClientAdapter())
}

// openJournal opens the run journal. A nil journal means the journal is disabled.
func openJournal(ctx context.Context) (*journal.SQLiteJournal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(ctx, file.NewManagerAdapter(), cfg.Journal.Path)
}

// withReconciler builds a reconciler from the configuration, runs fn and releases the journal.
func withReconciler(ctx context.Context, fn func(*reconcile.Reconciler) (*reconcile.Result, error)) (*reconcile.Result, error) {
	fileMgr := file.NewManagerAdapter()

	var opts []reconcile.Option
	runJournal, err := openJournal(ctx)
	if err != nil {
		return nil, err
	}
	if runJournal != nil {
		defer func() {
			if err := runJournal.Close(); err != nil {
				logging.WithComponent("journal").WithError(err).Warn("Failed to close journal")
			}
		}()
		opts = append(opts, reconcile.WithJournal(runJournal))
	}

	r := reconcile.NewReconciler(newBackend(fileMgr), reconcile.NewDebugWriter(fileMgr, cfg.DebugDir), opts...)
	return fn(r)
}

// runReconcile executes one reconciliation and prints its result, also on failure.
func runReconcile(cmd *cobra.Command, fn func(context.Context, *reconcile.Reconciler) (*reconcile.Result, error)) error {
	ctx, cancel := signalContext()
	defer cancel()

	result, err := withReconciler(ctx, func(r *reconcile.Reconciler) (*reconcile.Result, error) {
		return fn(ctx, r)
	})
	if result != nil {
		if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil && err == nil {
			err = printErr
		}
	}
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
