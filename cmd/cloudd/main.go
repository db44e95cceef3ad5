package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/pinegrove/cloudcore/internal/bridge"
	"github.com/pinegrove/cloudcore/internal/canon"
	"github.com/pinegrove/cloudcore/internal/config"
	"github.com/pinegrove/cloudcore/internal/logging"
	"github.com/pinegrove/cloudcore/internal/metrics"
	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/ticklog"
	"github.com/pinegrove/cloudcore/internal/tuning"
	"github.com/pinegrove/cloudcore/internal/world"
)

// #region main

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config failed")
	}
	logging.Setup(cfg.LogLevel)

	simCfg := tuning.Default()
	if cfg.TuningFile != "" {
		simCfg, err = tuning.Load(cfg.TuningFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.TuningFile).Msg("tuning load failed")
		}
	}

	w, err := world.New(simCfg, world.Options{Spines: npc.DefaultSpines()}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("world init failed")
	}

	store, err := canon.NewStore(cfg.CanonDB)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.CanonDB).Msg("canon store failed")
	}
	defer store.Close()

	// Resume the durable slice of the last session, if one exists.
	if rec, err := store.LoadActive(); err == nil {
		if err := w.ApplyCanon(rec); err != nil {
			log.Fatal().Err(err).Msg("canon restore failed")
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Warn().Err(err).Msg("canon load failed, starting cold")
	}

	if cfg.OracleURL != "" {
		seedScores(w, cfg.OracleURL)
	}

	var ticks *ticklog.Writer
	if cfg.TickLogDir != "" {
		ticks = ticklog.NewWriter(cfg.TickLogDir)
	}

	reg := metrics.NewRegistry()
	srv := bridge.NewServer(w, store, ticks, reg, log.Logger)
	defer srv.Close()

	e := echo.New()
	srv.Register(e)

	go func() {
		if err := e.Start(cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("addr", cfg.Address).Str("canon_db", cfg.CanonDB).Msg("cloudd ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// Persist the canon before going down.
	if rec, err := store.Save(w.ExportCanon()); err != nil {
		log.Error().Err(err).Msg("canon save failed")
	} else {
		log.Info().Str("version", rec.VersionID).Msg("canon saved")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// #endregion main

// #region oracle-seed

// seedScores pulls the full score table from the external scoring service.
// Failure is non-fatal: entities simply count zero influence until scores
// arrive through the feed endpoint.
func seedScores(w *world.World, baseURL string) {
	client := oracle.NewClient(baseURL)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scores, err := client.FetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", baseURL).Msg("oracle seed failed, starting without scores")
		return
	}
	for id, sc := range scores {
		if err := w.SetEntityScore(id, sc); err != nil {
			log.Warn().Err(err).Str("entity", id).Msg("score apply failed")
		}
	}
	log.Info().Int("entities", len(scores)).Msg("oracle scores seeded")
}

// #endregion oracle-seed
