// Package bridge exposes the simulation core over HTTP. The core itself is
// single-threaded and step-driven; this layer owns the one mutex that
// serializes every call into a single logical tick sequence. Concurrent
// ticks against the same world are never processed in parallel.
package bridge

import (
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pinegrove/cloudcore/internal/canon"
	"github.com/pinegrove/cloudcore/internal/metrics"
	"github.com/pinegrove/cloudcore/internal/snapshot"
	"github.com/pinegrove/cloudcore/internal/ticklog"
	"github.com/pinegrove/cloudcore/internal/world"
)

// #region server

// Server wires a world to echo. Canon store and tick log are optional;
// nil disables them.
type Server struct {
	mu     sync.Mutex
	world  *world.World
	store  *canon.Store
	ticks  *ticklog.Writer
	reg    *metrics.Registry
	hub    *Hub
	schema *jsonschema.Schema
	log    zerolog.Logger
}

// NewServer builds the bridge around an existing world.
func NewServer(w *world.World, store *canon.Store, ticks *ticklog.Writer, reg *metrics.Registry, log zerolog.Logger) *Server {
	return &Server{
		world:  w,
		store:  store,
		ticks:  ticks,
		reg:    reg,
		hub:    NewHub(log),
		schema: mustCompileTickSchema(),
		log:    log.With().Str("component", "bridge").Logger(),
	}
}

// Register mounts all routes on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(RequestLogger(s.reg))

	v1 := e.Group("/v1")
	v1.POST("/tick", s.handleTick)
	v1.GET("/state", s.handleState)
	v1.GET("/zones", s.handleZones)
	v1.GET("/zones/:id", s.handleZone)
	v1.GET("/artifacts/:entity/weight", s.handleArtifactWeight)
	v1.POST("/entities", s.handleEntities)
	v1.DELETE("/entities/:id", s.handleDetachEntity)
	v1.GET("/npcs", s.handleNPCs)
	v1.GET("/npcs/:id/can-contradict", s.handleCanContradict)
	v1.POST("/npcs/:id/contradiction", s.handleContradiction)
	v1.POST("/reset", s.handleReset)
	v1.POST("/canon/save", s.handleCanonSave)
	v1.POST("/canon/load", s.handleCanonLoad)

	e.GET("/ws/frames", s.hub.Handle)
	e.GET("/metrics", s.reg.EchoHandlerText)
	e.GET("/metrics.json", s.reg.EchoHandlerJSON)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Close releases the hub and tick log.
func (s *Server) Close() {
	s.hub.Close()
	if s.ticks != nil {
		if err := s.ticks.Close(); err != nil {
			s.log.Error().Err(err).Msg("close tick log")
		}
	}
}

// #endregion server

// #region after-tick

// afterTick handles frame fan-out and durable event logging. Called with
// the serialization mutex held.
func (s *Server) afterTick(fr snapshot.Frame) {
	s.hub.Publish(fr)

	if s.ticks != nil {
		if err := s.ticks.WriteFrame(fr); err != nil {
			s.log.Error().Err(err).Msg("tick log write")
		}
	}

	if s.store != nil {
		for _, ev := range fr.Events {
			entry := canon.EventEntry{
				EventType: ev.Type,
				NPCID:     ev.NPCID,
				ZoneID:    ev.ZoneID,
				SimTime:   ev.SimTime,
			}
			if ev.Type == snapshot.EventTierChanged {
				entry.Detail = fmt.Sprintf("tier %d → %d at level %.2f", ev.FromTier, ev.ToTier, ev.Level)
			} else {
				entry.Detail = ev.Rule
			}
			if err := s.store.LogEvent(entry); err != nil {
				s.log.Error().Err(err).Msg("canon event log")
			}
		}
	}
}

// #endregion after-tick
