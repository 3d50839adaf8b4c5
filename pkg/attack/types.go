package attack

import (
	"fmt"
	"sort"
)

// RelType identifies the kind of a directed relationship edge.
type RelType string

const (
	// RelUses links a group to a technique it employs (Group -> Technique).
	RelUses RelType = "uses"
	// RelMitigates links a mitigation to the technique it reduces (Mitigation -> Technique).
	RelMitigates RelType = "mitigates"
	// RelDetects links a data source to the technique it can surface (DataSource -> Technique).
	RelDetects RelType = "detects"
	// RelSubtechniqueOf links a sub-technique to its parent (Technique -> Technique).
	RelSubtechniqueOf RelType = "subtechnique-of"
	// RelAttributedTo links a group to another group or campaign it is attributed to.
	RelAttributedTo RelType = "attributed-to"
)

// AllRelTypes returns the closed set of relationship types in canonical order.
// The order is fixed so that traversals enumerate edges deterministically.
func AllRelTypes() []RelType {
	return []RelType{RelUses, RelMitigates, RelDetects, RelSubtechniqueOf, RelAttributedTo}
}

// Valid reports whether t is one of the five known relationship types.
func (t RelType) Valid() bool {
	switch t {
	case RelUses, RelMitigates, RelDetects, RelSubtechniqueOf, RelAttributedTo:
		return true
	}
	return false
}

// ParseRelType converts a string to a RelType, rejecting unknown values.
func ParseRelType(s string) (RelType, error) {
	t := RelType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown relationship type %q", s)
	}
	return t, nil
}

// EntityKind identifies which entity collection an ID belongs to.
type EntityKind string

const (
	KindTactic     EntityKind = "tactic"
	KindTechnique  EntityKind = "technique"
	KindGroup      EntityKind = "group"
	KindMitigation EntityKind = "mitigation"
	KindDataSource EntityKind = "data-source"
)

// Tactic is one stage of the kill chain. SequenceIndex is its fixed
// position in the canonical ordering (1-based, ascending toward Impact).
type Tactic struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	SequenceIndex int    `json:"sequence_index" yaml:"sequence_index"`
}

// Technique is a specific adversary method. A technique belongs to at
// least one tactic; a non-empty ParentID marks it as a sub-technique.
type Technique struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	TacticIDs   []string `json:"tactic_ids" yaml:"tactic_ids"`
	Platforms   []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	ParentID    string   `json:"parent_technique_id,omitempty" yaml:"parent_technique_id,omitempty"`
}

// IsSubtechnique reports whether the technique refines a parent technique.
func (t *Technique) IsSubtechnique() bool {
	return t.ParentID != ""
}

// HasPlatform reports whether the technique applies to the given platform tag.
func (t *Technique) HasPlatform(platform string) bool {
	for _, p := range t.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// HasTactic reports whether the technique maps to the given tactic stage.
func (t *Technique) HasTactic(tacticID string) bool {
	for _, id := range t.TacticIDs {
		if id == tacticID {
			return true
		}
	}
	return false
}

// Group is a named threat actor collection.
type Group struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Mitigation is a defensive control mapped to techniques via mitigates edges.
type Mitigation struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DataSource is a detection entity mapped to techniques via detects edges.
type DataSource struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Relationship is one typed directed edge between two entity IDs.
type Relationship struct {
	Type     RelType `json:"type" yaml:"type"`
	SourceID string  `json:"source_id" yaml:"source_id"`
	TargetID string  `json:"target_id" yaml:"target_id"`
}

// Key returns a stable identity for deduplication.
func (r Relationship) Key() string {
	return string(r.Type) + "|" + r.SourceID + "|" + r.TargetID
}

// Feed is one already-parsed data load: the full entity sets plus the raw
// edge list, as supplied by a data provider. Parsing and format concerns
// stay on the provider side; the feed carries typed records only.
type Feed struct {
	Version       string         `json:"version,omitempty" yaml:"version,omitempty"`
	Tactics       []Tactic       `json:"tactics" yaml:"tactics"`
	Techniques    []Technique    `json:"techniques" yaml:"techniques"`
	Groups        []Group        `json:"groups,omitempty" yaml:"groups,omitempty"`
	Mitigations   []Mitigation   `json:"mitigations,omitempty" yaml:"mitigations,omitempty"`
	DataSources   []DataSource   `json:"data_sources,omitempty" yaml:"data_sources,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// SortIDs sorts a slice of entity IDs ascending, in place, and returns it.
// Analytical results order IDs this way so identical inputs always produce
// identical output.
func SortIDs(ids []string) []string {
	sort.Strings(ids)
	return ids
}
