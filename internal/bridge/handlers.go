package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pinegrove/cloudcore/internal/canon"
	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/oracle"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/snapshot"
)

// #region tick

type tickRequest struct {
	Dt     float64 `json:"dt"`
	Player *struct {
		Action string `json:"action"`
		Zone   string `json:"zone"`
		Entity string `json:"entity"`
	} `json:"player"`
	NPCEvents []struct {
		Kind  string  `json:"kind"`
		Zone  string  `json:"zone"`
		Delta float64 `json:"delta"`
	} `json:"npc_events"`
}

func (s *Server) handleTick(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, "read body: "+err.Error())
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, "invalid json: "+err.Error())
	}
	if err := s.schema.Validate(raw); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, "schema: "+err.Error())
	}

	var req tickRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, err.Error())
	}

	var player *pressure.PlayerEvent
	if req.Player != nil {
		player = &pressure.PlayerEvent{
			Action: pressure.ActionKind(req.Player.Action),
			Zone:   req.Player.Zone,
			Entity: req.Player.Entity,
		}
	}
	events := make([]pressure.NPCEvent, 0, len(req.NPCEvents))
	for _, ev := range req.NPCEvents {
		events = append(events, pressure.NPCEvent{Kind: ev.Kind, Zone: ev.Zone, Delta: ev.Delta})
	}

	s.mu.Lock()
	frame, err := s.world.Tick(req.Dt, player, events)
	if err != nil {
		s.mu.Unlock()
		s.reg.Inc(c.Request().Context(), "ticks_rejected_total", nil, 1)
		return writeDomainError(c, err)
	}
	s.afterTick(frame)
	s.mu.Unlock()

	ctx := c.Request().Context()
	s.reg.Inc(ctx, "ticks_total", nil, 1)
	for _, ev := range frame.Events {
		switch ev.Type {
		case snapshot.EventTierChanged:
			s.reg.Inc(ctx, "tier_changes_total", nil, 1)
		case snapshot.EventContradiction:
			s.reg.Inc(ctx, "contradictions_total", nil, 1)
		}
	}

	return c.JSON(http.StatusOK, frame)
}

// #endregion tick

// #region state-queries

func (s *Server) handleState(c echo.Context) error {
	s.mu.Lock()
	st := s.world.Pressure()
	cloud := snapshot.CloudFrom(st, s.world.BleedTier())
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cloud":    cloud,
		"sim_time": st.SimTime,
	})
}

func (s *Server) handleZones(c echo.Context) error {
	s.mu.Lock()
	ids := s.world.ZoneIDs()
	zones := make([]snapshot.Zone, 0, len(ids))
	for _, id := range ids {
		z, err := s.world.ZoneState(id)
		if err != nil {
			s.mu.Unlock()
			return writeDomainError(c, err)
		}
		zones = append(zones, snapshot.ZoneFrom(z))
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{"zones": zones})
}

func (s *Server) handleZone(c echo.Context) error {
	s.mu.Lock()
	z, err := s.world.ZoneState(c.Param("id"))
	s.mu.Unlock()
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot.ZoneFrom(z))
}

func (s *Server) handleArtifactWeight(c echo.Context) error {
	entity := c.Param("entity")
	s.mu.Lock()
	weight := s.world.ArtifactWeight(entity)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entity_id": entity,
		"weight":    weight,
	})
}

// #endregion state-queries

// #region oracle-feed

type entityUpsert struct {
	ID       string  `json:"id"`
	Zone     string  `json:"zone"`
	Power    float64 `json:"power"`
	Charisma float64 `json:"charisma"`
	Overall  float64 `json:"overall"`
}

func (s *Server) handleEntities(c echo.Context) error {
	var req struct {
		Entities []entityUpsert `json:"entities"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ent := range req.Entities {
		if ent.ID == "" {
			return writeError(c, http.StatusBadRequest, ErrBadRequest, "entity id required")
		}
		if err := s.world.SetEntityScore(ent.ID, oracle.Score{
			Power: ent.Power, Charisma: ent.Charisma, Overall: ent.Overall,
		}); err != nil {
			return writeDomainError(c, err)
		}
		if ent.Zone != "" {
			if err := s.world.AttributeEntity(ent.ID, ent.Zone); err != nil {
				return writeDomainError(c, err)
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": len(req.Entities)})
}

func (s *Server) handleDetachEntity(c echo.Context) error {
	s.mu.Lock()
	err := s.world.DetachEntity(c.Param("id"))
	s.mu.Unlock()
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// #endregion oracle-feed

// #region contradiction

func (s *Server) handleNPCs(c echo.Context) error {
	s.mu.Lock()
	ids := s.world.NPCIDs()
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{"npcs": ids})
}

func (s *Server) handleCanContradict(c echo.Context) error {
	s.mu.Lock()
	dec, err := s.world.CanContradict(c.Param("id"))
	s.mu.Unlock()
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"allowed":   dec.Allowed,
		"reason":    string(dec.Reason),
		"threshold": dec.Threshold,
	})
}

func (s *Server) handleContradiction(c echo.Context) error {
	var req struct {
		Rule string `json:"rule"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, err.Error())
	}

	s.mu.Lock()
	ev, err := s.world.RecordContradiction(c.Param("id"), npc.RuleID(req.Rule))
	s.mu.Unlock()
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot.ContradictionEvent(ev))
}

// #endregion contradiction

// #region world-admin

func (s *Server) handleReset(c echo.Context) error {
	s.mu.Lock()
	s.world.Reset()
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleCanonSave(c echo.Context) error {
	if s.store == nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, "canon store not configured")
	}
	s.mu.Lock()
	rec := s.world.ExportCanon()
	s.mu.Unlock()

	saved, err := s.store.Save(rec)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, ErrInternal, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"version_id": saved.VersionID})
}

func (s *Server) handleCanonLoad(c echo.Context) error {
	if s.store == nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, "canon store not configured")
	}
	var req struct {
		VersionID string `json:"version_id"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, ErrBadRequest, err.Error())
	}

	var (
		rec  canon.Record
		lerr error
	)
	if req.VersionID == "" {
		rec, lerr = s.store.LoadActive()
	} else {
		rec, lerr = s.store.LoadVersion(req.VersionID)
	}
	if lerr != nil {
		return writeError(c, http.StatusNotFound, ErrBadRequest, lerr.Error())
	}

	s.mu.Lock()
	err := s.world.ApplyCanon(rec)
	s.mu.Unlock()
	if err != nil {
		return writeError(c, http.StatusInternalServerError, ErrInternal, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "loaded"})
}

// #endregion world-admin
