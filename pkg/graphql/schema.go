// Package graphql offers a read-only query surface over the knowledge
// base for clients that want field selection instead of fixed REST shapes.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

// BuildSchema wires the query type to the analysis engine. Resolvers read
// the engine's current snapshot on every call, so a feed refresh is
// picked up without rebuilding the schema.
func BuildSchema(engine *analysis.Engine) (graphql.Schema, error) {
	tacticType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tactic",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"description":   &graphql.Field{Type: graphql.String},
			"sequenceIndex": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*attack.Tactic).SequenceIndex, nil
			}},
			"techniqueIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				return engine.Snapshot().Store.TechniquesForTactic(p.Source.(*attack.Tactic).ID), nil
			}},
		},
	})

	techniqueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Technique",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"platforms":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"tacticIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*attack.Technique).TacticIDs, nil
			}},
			"parentId": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*attack.Technique).ParentID, nil
			}},
			"subtechniqueIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				snap := engine.Snapshot()
				return snap.Index.Neighbors(p.Source.(*attack.Technique).ID, attack.RelSubtechniqueOf, snapshot.DirectionIn), nil
			}},
			"mitigatedBy": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				snap := engine.Snapshot()
				return snap.Index.Neighbors(p.Source.(*attack.Technique).ID, attack.RelMitigates, snapshot.DirectionIn), nil
			}},
			"usedBy": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				snap := engine.Snapshot()
				return snap.Index.Neighbors(p.Source.(*attack.Technique).ID, attack.RelUses, snapshot.DirectionIn), nil
			}},
		},
	})

	groupType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Group",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"aliases":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"techniqueIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				snap := engine.Snapshot()
				return snap.Index.Neighbors(p.Source.(*attack.Group).ID, attack.RelUses, snapshot.DirectionOut), nil
			}},
			"attributedTo": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				snap := engine.Snapshot()
				return snap.Index.Neighbors(p.Source.(*attack.Group).ID, attack.RelAttributedTo, snapshot.DirectionOut), nil
			}},
		},
	})

	coverageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coverage",
		Fields: graphql.Fields{
			"totalCount":   &graphql.Field{Type: graphql.Int},
			"coveredCount": &graphql.Field{Type: graphql.Int},
			"gapCount":     &graphql.Field{Type: graphql.Int},
			"coveragePercentage": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*analysis.CoverageReport).CoveragePercentage, nil
			}},
			"gapTechniqueIds": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (any, error) {
				report := p.Source.(*analysis.CoverageReport)
				ids := make([]string, 0, len(report.Gaps))
				for _, gap := range report.Gaps {
					ids = append(ids, gap.TechniqueID)
				}
				return ids, nil
			}},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tactic": &graphql.Field{
				Type: tacticType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					tac, ok := engine.Snapshot().Store.Tactic(p.Args["id"].(string))
					if !ok {
						return nil, nil
					}
					return tac, nil
				},
			},
			"technique": &graphql.Field{
				Type: techniqueType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					tech, ok := engine.Snapshot().Store.Technique(p.Args["id"].(string))
					if !ok {
						return nil, nil
					}
					return tech, nil
				},
			},
			"group": &graphql.Field{
				Type: groupType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					group, ok := engine.Snapshot().Store.Group(p.Args["id"].(string))
					if !ok {
						return nil, nil
					}
					return group, nil
				},
			},
			"killChain": &graphql.Field{
				Type: graphql.NewList(tacticType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return engine.Snapshot().Store.Tactics(), nil
				},
			},
			"coverage": &graphql.Field{
				Type: coverageType,
				Args: graphql.FieldConfigArgument{
					"groupIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw := p.Args["groupIds"].([]any)
					groupIDs := make([]string, 0, len(raw))
					for _, v := range raw {
						groupIDs = append(groupIDs, v.(string))
					}
					return engine.AnalyzeGaps(groupIDs, analysis.GapOptions{})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
