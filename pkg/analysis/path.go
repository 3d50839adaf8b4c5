package analysis

import (
	"sort"
	"time"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

const opBuildPath = "BuildPath"

// DefaultMaxTechniquesPerStage caps the candidate list returned per stage
// to bound response size. Stage satisfaction is decided before the cap.
const DefaultMaxTechniquesPerStage = 25

// Completeness values for an attack path.
const (
	CompletenessComplete   = "complete"
	CompletenessIncomplete = "incomplete"
)

// PathOptions narrows the candidate technique set per stage. Zero values
// are no-ops.
type PathOptions struct {
	// GroupID restricts candidates to techniques the group uses.
	GroupID string
	// Platform restricts candidates to techniques applicable to the tag.
	Platform string
	// MaxTechniquesPerStage overrides the default cap; 0 keeps the default.
	MaxTechniquesPerStage int
}

// PathStage is one kill-chain stage of an attack path.
type PathStage struct {
	TacticID     string   `json:"tactic_id"`
	TacticName   string   `json:"tactic_name"`
	TechniqueIDs []string `json:"technique_ids"`
	Satisfied    bool     `json:"satisfied"`
}

// AttackPath is an ordered technique progression between two tactics.
type AttackPath struct {
	StartTacticID   string      `json:"start_tactic_id"`
	EndTacticID     string      `json:"end_tactic_id"`
	GroupID         string      `json:"group_id,omitempty"`
	Platform        string      `json:"platform,omitempty"`
	Stages          []PathStage `json:"stages"`
	Completeness    string      `json:"completeness"`
	Gaps            []string    `json:"gaps"`
	TotalTechniques int         `json:"total_techniques"`
	SnapshotID      string      `json:"snapshot_id"`
}

// BuildPath constructs a technique progression from startTactic to
// endTactic inclusive, walking the canonical kill-chain ordering. The
// start stage must not come after the end stage; reversed ranges are an
// InvalidRangeError, unknown IDs a NotFoundError.
func (e *Engine) BuildPath(startTactic, endTactic string, opts PathOptions) (*AttackPath, error) {
	start := time.Now()
	snap := e.handle.Current()

	path, err := buildPath(snap, startTactic, endTactic, opts)
	size := 0
	if path != nil {
		size = path.TotalTechniques
	}
	e.record("build_path", start, size, err)
	if err != nil {
		e.log.Debug("attack path failed",
			logging.Operation(opBuildPath), logging.Error(err))
		return nil, err
	}
	e.log.Debug("attack path built",
		logging.Operation(opBuildPath),
		logging.TacticID(startTactic),
		logging.Count("stages", len(path.Stages)),
		logging.Count("techniques", path.TotalTechniques),
		logging.SnapshotID(snap.ID))
	return path, nil
}

func buildPath(snap *snapshot.Snapshot, startTactic, endTactic string, opts PathOptions) (*AttackPath, error) {
	startT, ok := snap.Store.Tactic(startTactic)
	if !ok {
		return nil, attack.NotFound(opBuildPath, attack.KindTactic, startTactic)
	}
	endT, ok := snap.Store.Tactic(endTactic)
	if !ok {
		return nil, attack.NotFound(opBuildPath, attack.KindTactic, endTactic)
	}
	if startT.SequenceIndex > endT.SequenceIndex {
		return nil, attack.InvalidRange(opBuildPath, startTactic, endTactic)
	}

	// The group filter is a set of techniques the group uses; nil means
	// the filter is a no-op.
	var usedByGroup map[string]struct{}
	if opts.GroupID != "" {
		if _, ok := snap.Store.Group(opts.GroupID); !ok {
			return nil, attack.NotFound(opBuildPath, attack.KindGroup, opts.GroupID)
		}
		used := snap.Index.Neighbors(opts.GroupID, attack.RelUses, snapshot.DirectionOut)
		usedByGroup = make(map[string]struct{}, len(used))
		for _, id := range used {
			usedByGroup[id] = struct{}{}
		}
	}

	maxPerStage := opts.MaxTechniquesPerStage
	if maxPerStage <= 0 {
		maxPerStage = DefaultMaxTechniquesPerStage
	}

	path := &AttackPath{
		StartTacticID: startTactic,
		EndTacticID:   endTactic,
		GroupID:       opts.GroupID,
		Platform:      opts.Platform,
		Gaps:          []string{},
		SnapshotID:    snap.ID,
	}

	distinct := make(map[string]struct{})
	for _, stage := range snap.Store.TacticsInRange(startT.SequenceIndex, endT.SequenceIndex) {
		candidates := candidateTechniques(snap, stage.ID, usedByGroup, opts.Platform)

		satisfied := len(candidates) > 0
		if len(candidates) > maxPerStage {
			candidates = candidates[:maxPerStage]
		}
		for _, id := range candidates {
			distinct[id] = struct{}{}
		}
		if !satisfied {
			path.Gaps = append(path.Gaps, stage.ID)
		}
		path.Stages = append(path.Stages, PathStage{
			TacticID:     stage.ID,
			TacticName:   stage.Name,
			TechniqueIDs: candidates,
			Satisfied:    satisfied,
		})
	}

	path.TotalTechniques = len(distinct)
	if len(path.Gaps) == 0 {
		path.Completeness = CompletenessComplete
	} else {
		path.Completeness = CompletenessIncomplete
	}
	return path, nil
}

// candidateTechniques returns the sorted technique IDs for one stage after
// applying the group and platform filters.
func candidateTechniques(snap *snapshot.Snapshot, tacticID string, usedByGroup map[string]struct{}, platform string) []string {
	all := snap.Store.TechniquesForTactic(tacticID)
	candidates := make([]string, 0, len(all))
	for _, id := range all {
		if usedByGroup != nil {
			if _, ok := usedByGroup[id]; !ok {
				continue
			}
		}
		if platform != "" {
			tech, _ := snap.Store.Technique(id)
			if !tech.HasPlatform(platform) {
				continue
			}
		}
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	return candidates
}
