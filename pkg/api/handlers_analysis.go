package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/validation"
)

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) handleAttackPath(w http.ResponseWriter, r *http.Request) {
	var req validation.PathRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePathRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.engine.BuildPath(req.StartTactic, req.EndTactic, analysis.PathOptions{
		GroupID:               req.GroupID,
		Platform:              req.Platform,
		MaxTechniquesPerStage: req.MaxTechniquesPerStage,
	})
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, path)
}

func (s *Server) handleCoverageGaps(w http.ResponseWriter, r *http.Request) {
	var req validation.GapsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateGapsRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.engine.AnalyzeGaps(req.GroupIDs, analysis.GapOptions{
		TechniqueFilter:     req.TechniqueFilter,
		ExcludedMitigations: req.ExcludedMitigations,
	})
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	var req validation.TraverseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateTraverseRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	types := make([]attack.RelType, 0, len(req.Types))
	for _, t := range req.Types {
		types = append(types, attack.RelType(t))
	}
	graph, err := s.engine.Traverse(req.TechniqueID, analysis.TraverseOptions{
		Types: types,
		Depth: req.Depth,
	})
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, graph)
}
