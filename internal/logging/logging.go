package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog with sane defaults. Console writer for
// human-readable output; set CLOUDCORE_LOG_JSON=1 for raw JSON lines.
func Setup(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if os.Getenv("CLOUDCORE_LOG_JSON") == "1" {
		log.Logger = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
		return
	}

	cw := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
		w.TimeFormat = time.RFC3339
	})
	log.Logger = zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}
