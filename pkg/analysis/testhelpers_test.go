package analysis

import (
	"testing"

	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

// testFeed covers every entity kind and relationship type, including an
// attribution loop between G0016 and G0007 to exercise cycle safety.
func testFeed() *attack.Feed {
	return &attack.Feed{
		Version: "analysis-test",
		Tactics: []attack.Tactic{
			{ID: "TA0001", Name: "Initial Access", SequenceIndex: 3},
			{ID: "TA0002", Name: "Execution", SequenceIndex: 4},
			{ID: "TA0004", Name: "Privilege Escalation", SequenceIndex: 6},
			{ID: "TA0040", Name: "Impact", SequenceIndex: 14},
		},
		Techniques: []attack.Technique{
			{ID: "T1566", Name: "Phishing", TacticIDs: []string{"TA0001"}, Platforms: []string{"Windows", "Linux", "macOS"}},
			{ID: "T1059", Name: "Command and Scripting Interpreter", TacticIDs: []string{"TA0002"}, Platforms: []string{"Windows", "Linux"}},
			{ID: "T1059.001", Name: "PowerShell", TacticIDs: []string{"TA0002"}, Platforms: []string{"Windows"}, ParentID: "T1059"},
			{ID: "T1055", Name: "Process Injection", TacticIDs: []string{"TA0004"}, Platforms: []string{"Windows", "Linux"}},
			{ID: "T1486", Name: "Data Encrypted for Impact", TacticIDs: []string{"TA0040"}, Platforms: []string{"Windows"}},
		},
		Groups: []attack.Group{
			{ID: "G0007", Name: "APT28"},
			{ID: "G0016", Name: "APT29", Aliases: []string{"Cozy Bear"}},
			{ID: "G0032", Name: "Lazarus Group"},
		},
		Mitigations: []attack.Mitigation{
			{ID: "M1017", Name: "User Training"},
			{ID: "M1038", Name: "Execution Prevention"},
			{ID: "M1040", Name: "Behavior Prevention on Endpoint"},
		},
		DataSources: []attack.DataSource{
			{ID: "DS0009", Name: "Process"},
		},
		Relationships: []attack.Relationship{
			{Type: attack.RelUses, SourceID: "G0016", TargetID: "T1566"},
			{Type: attack.RelUses, SourceID: "G0016", TargetID: "T1059"},
			{Type: attack.RelUses, SourceID: "G0016", TargetID: "T1055"},
			{Type: attack.RelUses, SourceID: "G0032", TargetID: "T1055"},
			{Type: attack.RelUses, SourceID: "G0032", TargetID: "T1486"},
			{Type: attack.RelUses, SourceID: "G0007", TargetID: "T1566"},
			{Type: attack.RelMitigates, SourceID: "M1040", TargetID: "T1055"},
			{Type: attack.RelMitigates, SourceID: "M1017", TargetID: "T1566"},
			{Type: attack.RelMitigates, SourceID: "M1038", TargetID: "T1059.001"},
			{Type: attack.RelDetects, SourceID: "DS0009", TargetID: "T1055"},
			{Type: attack.RelDetects, SourceID: "DS0009", TargetID: "T1059"},
			{Type: attack.RelSubtechniqueOf, SourceID: "T1059.001", TargetID: "T1059"},
			// Mutual attribution: a cycle the traversal must terminate on.
			{Type: attack.RelAttributedTo, SourceID: "G0016", TargetID: "G0007"},
			{Type: attack.RelAttributedTo, SourceID: "G0007", TargetID: "G0016"},
		},
	}
}

func newTestEngine(t *testing.T, feed *attack.Feed) *Engine {
	t.Helper()
	snap, err := snapshot.Build(feed)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return NewEngine(snapshot.NewHandle(snap), nil, nil)
}

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngine(t, testFeed())
}
