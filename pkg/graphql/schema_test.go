package graphql

import (
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/gofastercloud/attackgraph/pkg/analysis"
	"github.com/gofastercloud/attackgraph/pkg/attack"
	"github.com/gofastercloud/attackgraph/pkg/snapshot"
)

func testEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	feed := &attack.Feed{
		Version: "graphql-test",
		Tactics: []attack.Tactic{
			{ID: "TA0002", Name: "Execution", SequenceIndex: 4},
		},
		Techniques: []attack.Technique{
			{ID: "T1059", Name: "Command and Scripting Interpreter", TacticIDs: []string{"TA0002"}, Platforms: []string{"Windows", "Linux"}},
			{ID: "T1059.001", Name: "PowerShell", TacticIDs: []string{"TA0002"}, Platforms: []string{"Windows"}, ParentID: "T1059"},
		},
		Groups: []attack.Group{
			{ID: "G0016", Name: "APT29", Aliases: []string{"Cozy Bear"}},
		},
		Mitigations: []attack.Mitigation{
			{ID: "M1038", Name: "Execution Prevention"},
		},
		Relationships: []attack.Relationship{
			{Type: attack.RelUses, SourceID: "G0016", TargetID: "T1059"},
			{Type: attack.RelUses, SourceID: "G0016", TargetID: "T1059.001"},
			{Type: attack.RelMitigates, SourceID: "M1038", TargetID: "T1059"},
		},
	}
	snap, err := snapshot.Build(feed)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return analysis.NewEngine(snapshot.NewHandle(snap), nil, nil)
}

func execute(t *testing.T, schema graphql.Schema, query string) map[string]any {
	t.Helper()
	result := graphql.Do(graphql.Params{Schema: schema, RequestString: query})
	if result.HasErrors() {
		t.Fatalf("Query failed: %v", result.Errors)
	}
	return result.Data.(map[string]any)
}

func TestTechniqueQuery(t *testing.T) {
	schema, err := BuildSchema(testEngine(t))
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	data := execute(t, schema, `{
		technique(id: "T1059") {
			id
			name
			subtechniqueIds
			mitigatedBy
			usedBy
		}
	}`)

	tech := data["technique"].(map[string]any)
	if tech["name"] != "Command and Scripting Interpreter" {
		t.Errorf("name = %v", tech["name"])
	}
	if subs := tech["subtechniqueIds"].([]any); len(subs) != 1 || subs[0] != "T1059.001" {
		t.Errorf("subtechniqueIds = %v", subs)
	}
	if mits := tech["mitigatedBy"].([]any); len(mits) != 1 || mits[0] != "M1038" {
		t.Errorf("mitigatedBy = %v", mits)
	}
	if users := tech["usedBy"].([]any); len(users) != 1 || users[0] != "G0016" {
		t.Errorf("usedBy = %v", users)
	}
}

func TestGroupAndKillChainQueries(t *testing.T) {
	schema, err := BuildSchema(testEngine(t))
	if err != nil {
		t.Fatal(err)
	}

	data := execute(t, schema, `{
		group(id: "G0016") { name aliases techniqueIds }
		killChain { id sequenceIndex }
	}`)

	group := data["group"].(map[string]any)
	if group["name"] != "APT29" {
		t.Errorf("group name = %v", group["name"])
	}
	if techs := group["techniqueIds"].([]any); len(techs) != 2 {
		t.Errorf("techniqueIds = %v", techs)
	}
	if stages := data["killChain"].([]any); len(stages) != 1 {
		t.Errorf("killChain = %v", stages)
	}
}

func TestCoverageQuery(t *testing.T) {
	schema, err := BuildSchema(testEngine(t))
	if err != nil {
		t.Fatal(err)
	}

	data := execute(t, schema, `{
		coverage(groupIds: ["G0016"]) {
			totalCount
			coveredCount
			gapCount
			gapTechniqueIds
		}
	}`)

	cov := data["coverage"].(map[string]any)
	if cov["totalCount"] != 2 || cov["coveredCount"] != 1 || cov["gapCount"] != 1 {
		t.Errorf("coverage = %v", cov)
	}
	if gaps := cov["gapTechniqueIds"].([]any); len(gaps) != 1 || gaps[0] != "T1059.001" {
		t.Errorf("gapTechniqueIds = %v", gaps)
	}
}

func TestUnknownEntityResolvesToNull(t *testing.T) {
	schema, err := BuildSchema(testEngine(t))
	if err != nil {
		t.Fatal(err)
	}

	data := execute(t, schema, `{ technique(id: "T9999") { id } }`)
	if data["technique"] != nil {
		t.Errorf("technique = %v, want null", data["technique"])
	}
}
