package snapshot

import (
	"sort"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// Direction selects which adjacency side of an entity to read.
type Direction int

const (
	DirectionOut Direction = iota
	DirectionIn
	DirectionBoth
)

// String returns the string representation of a direction.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseDirection converts a string to a Direction, defaulting to both.
func ParseDirection(s string) Direction {
	switch s {
	case "out":
		return DirectionOut
	case "in":
		return DirectionIn
	default:
		return DirectionBoth
	}
}

// RelationshipIndex holds the typed adjacency lists of one snapshot.
// Every list is deduplicated and sorted ascending by entity ID at build
// time; lookups are O(1) map access plus the (read-only) slice.
type RelationshipIndex struct {
	out       map[string]map[attack.RelType][]string
	in        map[string]map[attack.RelType][]string
	entities  map[string]struct{}
	edgeCount int
}

func newRelationshipIndex() *RelationshipIndex {
	return &RelationshipIndex{
		out:      make(map[string]map[attack.RelType][]string),
		in:       make(map[string]map[attack.RelType][]string),
		entities: make(map[string]struct{}),
	}
}

func (ix *RelationshipIndex) add(edge attack.Relationship) {
	if ix.out[edge.SourceID] == nil {
		ix.out[edge.SourceID] = make(map[attack.RelType][]string)
	}
	if ix.in[edge.TargetID] == nil {
		ix.in[edge.TargetID] = make(map[attack.RelType][]string)
	}
	ix.out[edge.SourceID][edge.Type] = append(ix.out[edge.SourceID][edge.Type], edge.TargetID)
	ix.in[edge.TargetID][edge.Type] = append(ix.in[edge.TargetID][edge.Type], edge.SourceID)
	ix.edgeCount++
}

func (ix *RelationshipIndex) finalize() {
	for _, byType := range ix.out {
		for t := range byType {
			sort.Strings(byType[t])
		}
	}
	for _, byType := range ix.in {
		for t := range byType {
			sort.Strings(byType[t])
		}
	}
}

// Neighbors returns the IDs related to entityID by relType in the given
// direction, sorted ascending. For DirectionBoth the two sides are merged
// and deduplicated. The result for a single direction is shared snapshot
// state; callers must not modify it.
func (ix *RelationshipIndex) Neighbors(entityID string, relType attack.RelType, dir Direction) []string {
	switch dir {
	case DirectionOut:
		return ix.out[entityID][relType]
	case DirectionIn:
		return ix.in[entityID][relType]
	default:
		outIDs := ix.out[entityID][relType]
		inIDs := ix.in[entityID][relType]
		if len(outIDs) == 0 {
			return inIDs
		}
		if len(inIDs) == 0 {
			return outIDs
		}
		seen := make(map[string]struct{}, len(outIDs)+len(inIDs))
		merged := make([]string, 0, len(outIDs)+len(inIDs))
		for _, id := range outIDs {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
		for _, id := range inIDs {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
		sort.Strings(merged)
		return merged
	}
}

// HasEntity reports whether the index knows the given entity ID.
func (ix *RelationshipIndex) HasEntity(id string) bool {
	_, ok := ix.entities[id]
	return ok
}

// EdgeCount returns the number of distinct edges in the index.
func (ix *RelationshipIndex) EdgeCount() int {
	return ix.edgeCount
}
