// Command spatio runs the geospatial key-value server: it loads
// configuration, recovers the append-only log, and serves the
// RESP-compatible wire protocol described in spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kass/spatio/internal/config"
	"github.com/kass/spatio/internal/logging"
	"github.com/kass/spatio/pkg/aof"
	"github.com/kass/spatio/pkg/command"
	"github.com/kass/spatio/pkg/server"
	"github.com/kass/spatio/pkg/store"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "spatio",
		Short: "In-memory geospatial key-value server",
		RunE:  run,
	}
	root.Flags().String("host", "", "override SPATIO_HOST")
	root.Flags().Int("port", 0, "override SPATIO_PORT")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.ListenHost = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.ListenPort = port
	}

	log := logging.New(cfg.LogLevel)
	log.Info().Str("addr", cfg.Addr()).Bool("aof_enabled", cfg.AOFEnabled).Msg("starting spatio")

	var writer *aof.Writer
	var recovered aof.RecoveryResult
	if cfg.AOFEnabled {
		recovered, err = aof.Recover(cfg.AOFPath)
		if err != nil {
			return fmt.Errorf("aof recovery: %w", err)
		}
		log.Info().
			Int("commands", len(recovered.Commands)).
			Int("errors", len(recovered.Errors)).
			Float64("success_rate", recovered.SuccessRate()).
			Msg("aof recovery complete")
		for _, e := range recovered.Errors {
			log.Warn().Int("line", e.Line).Str("reason", e.Reason).Msg("skipped corrupt aof line")
		}

		writer, err = aof.OpenWriter(cfg.AOFPath, cfg.AOFSyncPolicy, log)
		if err != nil {
			return fmt.Errorf("open aof: %w", err)
		}
		defer writer.Close()
	}

	db := store.NewDatabase(writer, cfg.DefaultTimeout, log)
	if cfg.AOFEnabled {
		applied, replayErrs := db.ApplyRecovered(recovered.Commands)
		log.Info().Int("applied", applied).Int("replay_errors", len(replayErrs)).Msg("replayed aof into store")
		for _, e := range replayErrs {
			log.Warn().Err(e).Msg("failed to apply recovered command")
		}
	}

	return serve(cfg, db, log)
}

func serve(cfg config.Config, db *store.Database, log zerolog.Logger) error {
	registry := command.NewRegistry(command.Dependencies{
		DB:        db,
		AOFPolicy: cfg.AOFSyncPolicy,
		Version:   version,
	})
	srv := server.New(cfg.Addr(), registry, cfg.DefaultTimeout, log)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	return nil
}
