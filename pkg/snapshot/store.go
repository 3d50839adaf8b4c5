package snapshot

import (
	"sort"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// EntityStore holds the normalized, read-only entity collections of one
// snapshot, keyed by stable ID. It is populated once by Build and never
// mutated afterwards.
type EntityStore struct {
	tactics     map[string]*attack.Tactic
	techniques  map[string]*attack.Technique
	groups      map[string]*attack.Group
	mitigations map[string]*attack.Mitigation
	dataSources map[string]*attack.DataSource

	// Derived lookups, computed at build time.
	kinds              map[string]attack.EntityKind
	tacticsInOrder     []*attack.Tactic          // ascending SequenceIndex
	techniquesByTactic map[string][]string       // tactic ID -> sorted technique IDs
}

func newEntityStore() *EntityStore {
	return &EntityStore{
		tactics:            make(map[string]*attack.Tactic),
		techniques:         make(map[string]*attack.Technique),
		groups:             make(map[string]*attack.Group),
		mitigations:        make(map[string]*attack.Mitigation),
		dataSources:        make(map[string]*attack.DataSource),
		kinds:              make(map[string]attack.EntityKind),
		techniquesByTactic: make(map[string][]string),
	}
}

// Tactic returns the tactic with the given ID.
func (s *EntityStore) Tactic(id string) (*attack.Tactic, bool) {
	t, ok := s.tactics[id]
	return t, ok
}

// Technique returns the technique with the given ID.
func (s *EntityStore) Technique(id string) (*attack.Technique, bool) {
	t, ok := s.techniques[id]
	return t, ok
}

// Group returns the group with the given ID.
func (s *EntityStore) Group(id string) (*attack.Group, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// Mitigation returns the mitigation with the given ID.
func (s *EntityStore) Mitigation(id string) (*attack.Mitigation, bool) {
	m, ok := s.mitigations[id]
	return m, ok
}

// DataSource returns the data source with the given ID.
func (s *EntityStore) DataSource(id string) (*attack.DataSource, bool) {
	d, ok := s.dataSources[id]
	return d, ok
}

// KindOf returns the entity kind for an ID, or false if the ID is unknown.
func (s *EntityStore) KindOf(id string) (attack.EntityKind, bool) {
	k, ok := s.kinds[id]
	return k, ok
}

// Has reports whether any entity with the given ID exists.
func (s *EntityStore) Has(id string) bool {
	_, ok := s.kinds[id]
	return ok
}

// TacticsInRange returns the tactics whose sequence index falls in
// [startSeq, endSeq], in ascending sequence order.
func (s *EntityStore) TacticsInRange(startSeq, endSeq int) []*attack.Tactic {
	var out []*attack.Tactic
	for _, t := range s.tacticsInOrder {
		if t.SequenceIndex < startSeq {
			continue
		}
		if t.SequenceIndex > endSeq {
			break
		}
		out = append(out, t)
	}
	return out
}

// TechniquesForTactic returns the sorted technique IDs mapped to a tactic
// stage. The returned slice is shared snapshot state; callers must not
// modify it.
func (s *EntityStore) TechniquesForTactic(tacticID string) []string {
	return s.techniquesByTactic[tacticID]
}

// Tactics returns all tactics in ascending sequence order.
func (s *EntityStore) Tactics() []*attack.Tactic {
	return s.tacticsInOrder
}

// TechniqueIDs returns all technique IDs, sorted ascending.
func (s *EntityStore) TechniqueIDs() []string {
	ids := make([]string, 0, len(s.techniques))
	for id := range s.techniques {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts returns the number of entities per kind.
func (s *EntityStore) Counts() map[attack.EntityKind]int {
	return map[attack.EntityKind]int{
		attack.KindTactic:     len(s.tactics),
		attack.KindTechnique:  len(s.techniques),
		attack.KindGroup:      len(s.groups),
		attack.KindMitigation: len(s.mitigations),
		attack.KindDataSource: len(s.dataSources),
	}
}

// EntityCount returns the total number of entities of all kinds.
func (s *EntityStore) EntityCount() int {
	return len(s.kinds)
}

func (s *EntityStore) finalize() {
	s.tacticsInOrder = make([]*attack.Tactic, 0, len(s.tactics))
	for _, t := range s.tactics {
		s.tacticsInOrder = append(s.tacticsInOrder, t)
	}
	sort.Slice(s.tacticsInOrder, func(i, j int) bool {
		return s.tacticsInOrder[i].SequenceIndex < s.tacticsInOrder[j].SequenceIndex
	})

	for _, tech := range s.techniques {
		for _, tacticID := range tech.TacticIDs {
			s.techniquesByTactic[tacticID] = append(s.techniquesByTactic[tacticID], tech.ID)
		}
	}
	for tacticID := range s.techniquesByTactic {
		sort.Strings(s.techniquesByTactic[tacticID])
	}
}
