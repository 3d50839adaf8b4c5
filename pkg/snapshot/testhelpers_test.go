package snapshot

import (
	"testing"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// testFeed returns a small but fully connected feed covering every entity
// kind and relationship type.
func testFeed() *attack.Feed {
	return &attack.Feed{
		Version: "test-1",
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
			{Type: attack.RelAttributedTo, SourceID: "G0016", TargetID: "G0007"},
		},
	}
}

func buildTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Build(testFeed())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return snap
}
