package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/logging"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

const opTraverse = "Traverse"

// Depth bounds for relationship traversal. Out-of-range depths are a
// validation error, not silently clamped, so callers are never misled
// about what was computed.
const (
	MinTraversalDepth     = 1
	MaxTraversalDepth     = 3
	DefaultTraversalDepth = 2
)

// TraverseOptions configures a relationship traversal.
type TraverseOptions struct {
	// Types selects which relationship types to follow; empty means all.
	Types []attack.RelType
	// Depth bounds the BFS; 0 means DefaultTraversalDepth.
	Depth int
}

// VisitedEntity is one entity discovered by the traversal, at the depth of
// first discovery (shortest-path distance from the source).
type VisitedEntity struct {
	ID    string            `json:"id"`
	Kind  attack.EntityKind `json:"kind"`
	Depth int               `json:"depth"`
}

// Hierarchy is the direct sub-technique family of the source technique.
type Hierarchy struct {
	ParentID        string   `json:"parent_id,omitempty"`
	SubtechniqueIDs []string `json:"subtechnique_ids"`
}

// AttributionLink is one step of the attribution chain: a group using the
// source technique and the entities that group is attributed to.
type AttributionLink struct {
	GroupID      string   `json:"group_id"`
	AttributedTo []string `json:"attributed_to"`
}

// DetectionEntry is one detection or mitigation entity found by the
// traversal, annotated with its discovery depth.
type DetectionEntry struct {
	EntityID string            `json:"entity_id"`
	Kind     attack.EntityKind `json:"kind"`
	Depth    int               `json:"depth"`
}

// RelationshipGraph is the structured, de-duplicated result of a bounded
// traversal from one technique. The three views are derived from the same
// BFS pass, not independent queries.
type RelationshipGraph struct {
	TechniqueID      string            `json:"technique_id"`
	Depth            int               `json:"depth"`
	Nodes            []VisitedEntity   `json:"nodes"`
	Hierarchy        Hierarchy         `json:"hierarchy"`
	AttributionChain []AttributionLink `json:"attribution_chain"`
	Detections       []DetectionEntry  `json:"detections"`
	SnapshotID       string            `json:"snapshot_id"`
}

// Traverse explores the relationship graph outward from a technique up to
// the given depth, visiting each entity at most once. A traversal that
// finds nothing beyond the source is valid output, not an error.
func (e *Engine) Traverse(techniqueID string, opts TraverseOptions) (*RelationshipGraph, error) {
	start := time.Now()
	snap := e.handle.Current()

	graph, err := traverse(snap, techniqueID, opts)
	size := 0
	if graph != nil {
		size = len(graph.Nodes)
	}
	e.record("traverse", start, size, err)
	if err != nil {
		e.log.Debug("traversal failed",
			logging.Operation(opTraverse), logging.Error(err))
		return nil, err
	}
	e.log.Debug("traversal complete",
		logging.Operation(opTraverse),
		logging.TechniqueID(techniqueID),
		logging.Count("visited", len(graph.Nodes)),
		logging.SnapshotID(snap.ID))
	return graph, nil
}

type bfsEntry struct {
	id    string
	depth int
}

func traverse(snap *snapshot.Snapshot, techniqueID string, opts TraverseOptions) (*RelationshipGraph, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = DefaultTraversalDepth
	}
	if depth < MinTraversalDepth || depth > MaxTraversalDepth {
		return nil, attack.InvalidArgument(opTraverse,
			fmt.Sprintf("depth %d outside [%d, %d]", depth, MinTraversalDepth, MaxTraversalDepth))
	}

	types := opts.Types
	if len(types) == 0 {
		types = attack.AllRelTypes()
	}
	typeSet := make(map[attack.RelType]struct{}, len(types))
	for _, t := range types {
		if !t.Valid() {
			return nil, attack.InvalidArgument(opTraverse,
				fmt.Sprintf("unknown relationship type %q", t))
		}
		typeSet[t] = struct{}{}
	}

	if _, ok := snap.Store.Technique(techniqueID); !ok {
		return nil, attack.NotFound(opTraverse, attack.KindTechnique, techniqueID)
	}

	// Plain BFS with a global visited set: each entity is recorded at the
	// depth of first discovery, which also breaks attribution cycles.
	visited := map[string]int{techniqueID: 0}
	queue := []bfsEntry{{id: techniqueID, depth: 0}}
	var nodes []VisitedEntity

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= depth {
			continue
		}
		next := current.depth + 1

		// Enumerate types in canonical order and each side sorted, so the
		// traversal is deterministic.
		for _, relType := range attack.AllRelTypes() {
			if _, selected := typeSet[relType]; !selected {
				continue
			}
			for _, dir := range []snapshot.Direction{snapshot.DirectionOut, snapshot.DirectionIn} {
				for _, neighbor := range snap.Index.Neighbors(current.id, relType, dir) {
					if _, seen := visited[neighbor]; seen {
						continue
					}
					visited[neighbor] = next
					kind, _ := snap.Store.KindOf(neighbor)
					nodes = append(nodes, VisitedEntity{ID: neighbor, Kind: kind, Depth: next})
					queue = append(queue, bfsEntry{id: neighbor, depth: next})
				}
			}
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].ID < nodes[j].ID
	})

	graph := &RelationshipGraph{
		TechniqueID:      techniqueID,
		Depth:            depth,
		Nodes:            nodes,
		AttributionChain: []AttributionLink{},
		Detections:       []DetectionEntry{},
		SnapshotID:       snap.ID,
	}
	buildHierarchyView(snap, graph, typeSet)
	buildAttributionView(snap, graph, typeSet, depth)
	buildDetectionView(snap, graph)
	return graph, nil
}

// buildHierarchyView restricts sub-technique edges to the direct family of
// the source technique: its parent and its own sub-techniques.
func buildHierarchyView(snap *snapshot.Snapshot, graph *RelationshipGraph, typeSet map[attack.RelType]struct{}) {
	if _, selected := typeSet[attack.RelSubtechniqueOf]; !selected {
		graph.Hierarchy.SubtechniqueIDs = []string{}
		return
	}
	tech, _ := snap.Store.Technique(graph.TechniqueID)
	graph.Hierarchy.ParentID = tech.ParentID
	children := snap.Index.Neighbors(graph.TechniqueID, attack.RelSubtechniqueOf, snapshot.DirectionIn)
	graph.Hierarchy.SubtechniqueIDs = append([]string{}, children...)
}

// buildAttributionView walks technique -> using groups -> attribution
// targets, truncated at the traversal depth: with depth 1 the chain stops
// at the groups.
func buildAttributionView(snap *snapshot.Snapshot, graph *RelationshipGraph, typeSet map[attack.RelType]struct{}, depth int) {
	if _, selected := typeSet[attack.RelUses]; !selected {
		return
	}
	_, followAttribution := typeSet[attack.RelAttributedTo]

	for _, groupID := range snap.Index.Neighbors(graph.TechniqueID, attack.RelUses, snapshot.DirectionIn) {
		link := AttributionLink{GroupID: groupID, AttributedTo: []string{}}
		if depth >= 2 && followAttribution {
			targets := snap.Index.Neighbors(groupID, attack.RelAttributedTo, snapshot.DirectionOut)
			link.AttributedTo = append(link.AttributedTo, targets...)
		}
		graph.AttributionChain = append(graph.AttributionChain, link)
	}
}

// buildDetectionView collects mitigation and data-source entities found at
// any depth of the traversal.
func buildDetectionView(snap *snapshot.Snapshot, graph *RelationshipGraph) {
	for _, node := range graph.Nodes {
		if node.Kind == attack.KindMitigation || node.Kind == attack.KindDataSource {
			graph.Detections = append(graph.Detections, DetectionEntry{
				EntityID: node.ID,
				Kind:     node.Kind,
				Depth:    node.Depth,
			})
		}
	}
}
