package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
	"github.com/gofastercloud/attackgraph/pkg/validation"
)

// EntityResponse wraps any entity with its kind so clients need not infer
// it from the ID.
type EntityResponse struct {
	ID     string            `json:"id"`
	Kind   attack.EntityKind `json:"kind"`
	Entity any               `json:"entity"`
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateEntityID(id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := s.handle.Current().Store
	kind, ok := store.KindOf(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("entity %s not found", id))
		return
	}

	var entity any
	switch kind {
	case attack.KindTactic:
		entity, _ = store.Tactic(id)
	case attack.KindTechnique:
		entity, _ = store.Technique(id)
	case attack.KindGroup:
		entity, _ = store.Group(id)
	case attack.KindMitigation:
		entity, _ = store.Mitigation(id)
	case attack.KindDataSource:
		entity, _ = store.DataSource(id)
	}
	s.respondJSON(w, http.StatusOK, EntityResponse{ID: id, Kind: kind, Entity: entity})
}

// NeighborsResponse lists adjacent entity IDs grouped by relationship type.
type NeighborsResponse struct {
	ID        string              `json:"id"`
	Direction string              `json:"direction"`
	Neighbors map[string][]string `json:"neighbors"`
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateEntityID(id); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.handle.Current()
	if !snap.Store.Has(id) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("entity %s not found", id))
		return
	}

	dir := snapshot.DirectionBoth
	if q := r.URL.Query().Get("direction"); q != "" {
		dir = snapshot.ParseDirection(q)
	}

	types := attack.AllRelTypes()
	if q := r.URL.Query().Get("type"); q != "" {
		relType, err := attack.ParseRelType(q)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		types = []attack.RelType{relType}
	}

	resp := NeighborsResponse{
		ID:        id,
		Direction: dir.String(),
		Neighbors: make(map[string][]string),
	}
	for _, relType := range types {
		if ids := snap.Index.Neighbors(id, relType, dir); len(ids) > 0 {
			resp.Neighbors[string(relType)] = ids
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// KillChainStage pairs a canonical stage with its presence in the
// current snapshot.
type KillChainStage struct {
	TacticID      string `json:"tactic_id"`
	SequenceIndex int    `json:"sequence_index"`
	Name          string `json:"name,omitempty"`
	Present       bool   `json:"present"`
}

func (s *Server) handleKillChain(w http.ResponseWriter, r *http.Request) {
	store := s.handle.Current().Store
	stages := make([]KillChainStage, 0, len(attack.KillChain))
	for i, id := range attack.KillChain {
		stage := KillChainStage{TacticID: id, SequenceIndex: i + 1}
		if tac, ok := store.Tactic(id); ok {
			stage.Name = tac.Name
			stage.Present = true
		}
		stages = append(stages, stage)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"stages": stages})
}

// HealthResponse reports liveness plus the provenance of the snapshot
// currently serving queries.
type HealthResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	SnapshotID    string    `json:"snapshot_id"`
	FeedVersion   string    `json:"feed_version,omitempty"`
	BuiltAt       time.Time `json:"built_at"`
	Entities      int       `json:"entities"`
	Relationships int       `json:"relationships"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.handle.Current()
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		SnapshotID:    snap.ID,
		FeedVersion:   snap.FeedVersion,
		BuiltAt:       snap.BuiltAt,
		Entities:      snap.Store.EntityCount(),
		Relationships: snap.Index.EdgeCount(),
	})
}
