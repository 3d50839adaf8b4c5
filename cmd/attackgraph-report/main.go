// Command attackgraph-report runs one analysis against a local feed file
// and prints the result as JSON, for scripting and CI checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/provider"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "attackgraph-report: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("attackgraph-report", pflag.ContinueOnError)
	feedPath := flags.StringP("feed", "f", "", "feed file (JSON, YAML, or .sz)")
	op := flags.StringP("op", "o", "", "analysis to run: path, gaps, or traverse")

	startTactic := flags.String("start", "TA0043", "path: first kill-chain stage")
	endTactic := flags.String("end", "TA0040", "path: last kill-chain stage")
	group := flags.String("group", "", "path: restrict to one group's techniques")
	platform := flags.String("platform", "", "path: restrict to one platform")

	groups := flags.StringSlice("groups", nil, "gaps: threat groups to assess")
	excluded := flags.StringSlice("exclude-mitigations", nil, "gaps: mitigations to treat as absent")

	technique := flags.String("technique", "", "traverse: source technique")
	depth := flags.Int("depth", 0, "traverse: hops to explore (1-3)")
	relTypes := flags.StringSlice("types", nil, "traverse: relationship types to follow")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *feedPath == "" {
		return fmt.Errorf("--feed is required")
	}

	ctx := context.Background()
	feed, err := provider.NewFileProvider(*feedPath).Fetch(ctx)
	if err != nil {
		return err
	}
	snap, err := snapshot.Build(feed)
	if err != nil {
		return err
	}
	engine := analysis.NewEngine(snapshot.NewHandle(snap), nil, nil)

	var result any
	switch *op {
	case "path":
		result, err = engine.BuildPath(*startTactic, *endTactic, analysis.PathOptions{
			GroupID:  *group,
			Platform: *platform,
		})
	case "gaps":
		result, err = engine.AnalyzeGaps(*groups, analysis.GapOptions{
			ExcludedMitigations: *excluded,
		})
	case "traverse":
		types := make([]attack.RelType, 0, len(*relTypes))
		for _, t := range *relTypes {
			types = append(types, attack.RelType(strings.TrimSpace(t)))
		}
		result, err = engine.Traverse(*technique, analysis.TraverseOptions{
			Types: types,
			Depth: *depth,
		})
	default:
		return fmt.Errorf("unknown op %q (want path, gaps, or traverse)", *op)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
