package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

const opAnalyzeGaps = "AnalyzeGaps"

// Gap priorities. A technique used by two or more of the requested groups
// is a higher-value remediation target.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// GapOptions narrows the coverage computation.
type GapOptions struct {
	// TechniqueFilter, when non-empty, restricts the analysis to the
	// intersection of the groups' techniques with this set. The filter
	// only ever narrows scope.
	TechniqueFilter []string
	// ExcludedMitigations are discarded when counting coverage: a
	// technique whose every mitigation is excluded counts as a gap.
	ExcludedMitigations []string
}

// GapEntry is one uncovered technique in a coverage report.
type GapEntry struct {
	TechniqueID string   `json:"technique_id"`
	GroupsUsing []string `json:"groups_using"`
	Priority    string   `json:"priority"`
}

// CoverageReport quantifies how much of a threat-group technique set is
// mitigated.
type CoverageReport struct {
	GroupIDs           []string   `json:"group_ids"`
	TotalCount         int        `json:"total_count"`
	CoveredCount       int        `json:"covered_count"`
	GapCount           int        `json:"gap_count"`
	CoveragePercentage float64    `json:"coverage_percentage"`
	Trivial            bool       `json:"trivial"`
	Gaps               []GapEntry `json:"gaps"`
	SnapshotID         string     `json:"snapshot_id"`
}

// AnalyzeGaps computes mitigation coverage for the techniques used by the
// given groups. groupIDs must name at least one existing group.
func (e *Engine) AnalyzeGaps(groupIDs []string, opts GapOptions) (*CoverageReport, error) {
	start := time.Now()
	snap := e.handle.Current()

	report, err := analyzeGaps(snap, groupIDs, opts)
	size := 0
	if report != nil {
		size = report.TotalCount
	}
	e.record("analyze_gaps", start, size, err)
	if err != nil {
		e.log.Debug("gap analysis failed",
			logging.Operation(opAnalyzeGaps), logging.Error(err))
		return nil, err
	}
	e.log.Debug("gap analysis complete",
		logging.Operation(opAnalyzeGaps),
		logging.Count("techniques", report.TotalCount),
		logging.Count("gaps", report.GapCount),
		logging.SnapshotID(snap.ID))
	return report, nil
}

func analyzeGaps(snap *snapshot.Snapshot, groupIDs []string, opts GapOptions) (*CoverageReport, error) {
	if len(groupIDs) == 0 {
		return nil, attack.InvalidArgument(opAnalyzeGaps, "at least one group ID is required")
	}

	groups := dedupeSorted(groupIDs)
	for _, id := range groups {
		if _, ok := snap.Store.Group(id); !ok {
			return nil, attack.NotFound(opAnalyzeGaps, attack.KindGroup, id)
		}
	}

	// Base set: union of the groups' technique sets, remembering which of
	// the requested groups use each technique.
	usedBy := make(map[string][]string)
	for _, g := range groups {
		for _, tech := range snap.Index.Neighbors(g, attack.RelUses, snapshot.DirectionOut) {
			usedBy[tech] = append(usedBy[tech], g)
		}
	}

	// The filter narrows scope; it never adds techniques.
	if len(opts.TechniqueFilter) > 0 {
		keep := make(map[string]struct{}, len(opts.TechniqueFilter))
		for _, id := range opts.TechniqueFilter {
			keep[id] = struct{}{}
		}
		for tech := range usedBy {
			if _, ok := keep[tech]; !ok {
				delete(usedBy, tech)
			}
		}
	}

	excluded := make(map[string]struct{}, len(opts.ExcludedMitigations))
	for _, id := range opts.ExcludedMitigations {
		excluded[id] = struct{}{}
	}

	report := &CoverageReport{
		GroupIDs:   groups,
		TotalCount: len(usedBy),
		Gaps:       []GapEntry{},
		SnapshotID: snap.ID,
	}

	for tech, users := range usedBy {
		if isCovered(snap, tech, excluded) {
			report.CoveredCount++
			continue
		}
		priority := PriorityMedium
		if len(users) >= 2 {
			priority = PriorityHigh
		}
		report.Gaps = append(report.Gaps, GapEntry{
			TechniqueID: tech,
			GroupsUsing: attack.SortIDs(users),
			Priority:    priority,
		})
	}
	report.GapCount = len(report.Gaps)

	// High-priority gaps first, ties broken by technique ID ascending.
	sort.Slice(report.Gaps, func(i, j int) bool {
		a, b := report.Gaps[i], report.Gaps[j]
		if a.Priority != b.Priority {
			return a.Priority == PriorityHigh
		}
		return a.TechniqueID < b.TechniqueID
	})

	if report.TotalCount == 0 {
		// Nothing to cover is full coverage, flagged so callers can tell.
		report.CoveragePercentage = 100.0
		report.Trivial = true
	} else {
		pct := float64(report.CoveredCount) / float64(report.TotalCount) * 100.0
		report.CoveragePercentage = math.Round(pct*10) / 10
	}
	return report, nil
}

// isCovered reports whether the technique has at least one mitigation
// outside the excluded set.
func isCovered(snap *snapshot.Snapshot, techniqueID string, excluded map[string]struct{}) bool {
	for _, m := range snap.Index.Neighbors(techniqueID, attack.RelMitigates, snapshot.DirectionIn) {
		if _, skip := excluded[m]; !skip {
			return true
		}
	}
	return false
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
