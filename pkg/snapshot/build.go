package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

const opBuild = "Build"

// Build constructs one immutable snapshot from an already-parsed feed.
// All structural validation happens here, once: later analysis code never
// branches on representation or re-checks referential integrity.
//
// Build fails fast with a DataIntegrityError on the first violation found;
// a failed build must never replace a previously published snapshot.
func Build(feed *attack.Feed) (*Snapshot, error) {
	if feed == nil {
		return nil, attack.InvalidArgument(opBuild, "feed must not be nil")
	}

	store := newEntityStore()
	if err := loadEntities(store, feed); err != nil {
		return nil, err
	}
	if err := validateTactics(store); err != nil {
		return nil, err
	}
	if err := validateTechniqueTactics(store); err != nil {
		return nil, err
	}

	edges, err := normalizeEdges(store, feed.Relationships)
	if err != nil {
		return nil, err
	}
	edges, err = reconcileSubtechniques(store, edges)
	if err != nil {
		return nil, err
	}
	if err := validateParents(store); err != nil {
		return nil, err
	}

	index := newRelationshipIndex()
	for id := range store.kinds {
		index.entities[id] = struct{}{}
	}
	for _, e := range edges {
		index.add(e)
	}
	index.finalize()
	store.finalize()

	return &Snapshot{
		ID:          uuid.NewString(),
		FeedVersion: feed.Version,
		BuiltAt:     time.Now().UTC(),
		Store:       store,
		Index:       index,
	}, nil
}

func loadEntities(store *EntityStore, feed *attack.Feed) error {
	register := func(id string, kind attack.EntityKind) error {
		if id == "" {
			return attack.IntegrityError(opBuild, fmt.Sprintf("%s with empty ID", kind))
		}
		if existing, dup := store.kinds[id]; dup {
			return attack.IntegrityError(opBuild,
				fmt.Sprintf("duplicate entity ID (%s and %s)", existing, kind), id)
		}
		store.kinds[id] = kind
		return nil
	}

	for i := range feed.Tactics {
		t := feed.Tactics[i]
		if err := register(t.ID, attack.KindTactic); err != nil {
			return err
		}
		store.tactics[t.ID] = &t
	}
	for i := range feed.Techniques {
		t := feed.Techniques[i]
		if err := register(t.ID, attack.KindTechnique); err != nil {
			return err
		}
		t.TacticIDs = append([]string(nil), t.TacticIDs...)
		sort.Strings(t.TacticIDs)
		t.Platforms = append([]string(nil), t.Platforms...)
		store.techniques[t.ID] = &t
	}
	for i := range feed.Groups {
		g := feed.Groups[i]
		if err := register(g.ID, attack.KindGroup); err != nil {
			return err
		}
		g.Aliases = append([]string(nil), g.Aliases...)
		store.groups[g.ID] = &g
	}
	for i := range feed.Mitigations {
		m := feed.Mitigations[i]
		if err := register(m.ID, attack.KindMitigation); err != nil {
			return err
		}
		store.mitigations[m.ID] = &m
	}
	for i := range feed.DataSources {
		d := feed.DataSources[i]
		if err := register(d.ID, attack.KindDataSource); err != nil {
			return err
		}
		store.dataSources[d.ID] = &d
	}
	return nil
}

// validateTactics enforces the kill-chain invariant: every tactic is a
// canonical stage, its sequence index matches the canonical position, and
// no two tactics share an index.
func validateTactics(store *EntityStore) error {
	bySeq := make(map[int]string)
	for id, t := range store.tactics {
		canonical, ok := attack.KillChainIndex(id)
		if !ok {
			return attack.IntegrityError(opBuild, "tactic is not a kill-chain stage", id)
		}
		if t.SequenceIndex != canonical {
			return attack.IntegrityError(opBuild,
				fmt.Sprintf("sequence index %d does not match canonical position %d", t.SequenceIndex, canonical), id)
		}
		if other, dup := bySeq[t.SequenceIndex]; dup {
			return attack.IntegrityError(opBuild, "duplicate sequence index", id, other)
		}
		bySeq[t.SequenceIndex] = id
	}
	return nil
}

func validateTechniqueTactics(store *EntityStore) error {
	for id, tech := range store.techniques {
		if len(tech.TacticIDs) == 0 {
			return attack.IntegrityError(opBuild, "technique belongs to no tactic", id)
		}
		for _, tacticID := range tech.TacticIDs {
			if _, ok := store.tactics[tacticID]; !ok {
				return attack.IntegrityError(opBuild, "technique references missing tactic", id, tacticID)
			}
		}
	}
	return nil
}

// expectedEndpoints maps each relationship type to the entity kinds its
// endpoints must resolve to. Attribution targets are groups: campaigns are
// modeled as group entities in this store.
var expectedEndpoints = map[attack.RelType][2]attack.EntityKind{
	attack.RelUses:           {attack.KindGroup, attack.KindTechnique},
	attack.RelMitigates:      {attack.KindMitigation, attack.KindTechnique},
	attack.RelDetects:        {attack.KindDataSource, attack.KindTechnique},
	attack.RelSubtechniqueOf: {attack.KindTechnique, attack.KindTechnique},
	attack.RelAttributedTo:   {attack.KindGroup, attack.KindGroup},
}

func normalizeEdges(store *EntityStore, raw []attack.Relationship) ([]attack.Relationship, error) {
	edges := make([]attack.Relationship, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, e := range raw {
		if !e.Type.Valid() {
			return nil, attack.IntegrityError(opBuild,
				fmt.Sprintf("unknown relationship type %q", e.Type), e.SourceID, e.TargetID)
		}
		srcKind, ok := store.KindOf(e.SourceID)
		if !ok {
			return nil, attack.IntegrityError(opBuild,
				fmt.Sprintf("%s edge references missing source", e.Type), e.SourceID)
		}
		tgtKind, ok := store.KindOf(e.TargetID)
		if !ok {
			return nil, attack.IntegrityError(opBuild,
				fmt.Sprintf("%s edge references missing target", e.Type), e.TargetID)
		}
		want := expectedEndpoints[e.Type]
		if srcKind != want[0] || tgtKind != want[1] {
			return nil, attack.IntegrityError(opBuild,
				fmt.Sprintf("%s edge endpoints must be %s -> %s, got %s -> %s",
					e.Type, want[0], want[1], srcKind, tgtKind),
				e.SourceID, e.TargetID)
		}
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		edges = append(edges, e)
	}
	return edges, nil
}

// reconcileSubtechniques makes the parent_technique_id field and explicit
// subtechnique-of edges agree. Either representation alone is derived into
// the other; a mismatch between the two is a build-time failure. The
// returned slice includes any edges derived from parent fields.
func reconcileSubtechniques(store *EntityStore, edges []attack.Relationship) ([]attack.Relationship, error) {
	parentByEdge := make(map[string]string)
	for _, e := range edges {
		if e.Type != attack.RelSubtechniqueOf {
			continue
		}
		if existing, dup := parentByEdge[e.SourceID]; dup && existing != e.TargetID {
			return nil, attack.IntegrityError(opBuild,
				"technique has subtechnique-of edges to multiple parents",
				e.SourceID, existing, e.TargetID)
		}
		parentByEdge[e.SourceID] = e.TargetID
	}

	for id, tech := range store.techniques {
		edgeParent, hasEdge := parentByEdge[id]
		switch {
		case tech.ParentID != "" && hasEdge:
			if tech.ParentID != edgeParent {
				return nil, attack.IntegrityError(opBuild,
					fmt.Sprintf("parent_technique_id %s disagrees with subtechnique-of edge to %s", tech.ParentID, edgeParent),
					id)
			}
		case tech.ParentID != "" && !hasEdge:
			// Derive the explicit edge from the field.
			parentByEdge[id] = tech.ParentID
		case tech.ParentID == "" && hasEdge:
			// Derive the field from the explicit edge.
			tech.ParentID = edgeParent
		}
	}

	// Rebuild the derived edge set in place, appending any edges that only
	// existed as parent_technique_id fields.
	present := make(map[string]struct{})
	for _, e := range edges {
		if e.Type == attack.RelSubtechniqueOf {
			present[e.SourceID] = struct{}{}
		}
	}
	childIDs := make([]string, 0, len(parentByEdge))
	for child := range parentByEdge {
		childIDs = append(childIDs, child)
	}
	sort.Strings(childIDs)
	for _, child := range childIDs {
		if _, ok := present[child]; ok {
			continue
		}
		edges = append(edges, attack.Relationship{
			Type:     attack.RelSubtechniqueOf,
			SourceID: child,
			TargetID: parentByEdge[child],
		})
	}
	return edges, nil
}

func validateParents(store *EntityStore) error {
	for id, tech := range store.techniques {
		if tech.ParentID == "" {
			continue
		}
		parent, ok := store.techniques[tech.ParentID]
		if !ok {
			return attack.IntegrityError(opBuild, "parent technique does not exist", id, tech.ParentID)
		}
		if parent.ParentID != "" {
			return attack.IntegrityError(opBuild,
				"sub-techniques nest one level only: parent is itself a sub-technique",
				id, tech.ParentID)
		}
	}
	return nil
}
