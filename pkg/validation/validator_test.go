package validation

import (
	"strings"
	"testing"
)

func TestValidatePathRequest(t *testing.T) {
	valid := &PathRequest{StartTactic: "TA0001", EndTactic: "TA0040"}
	if err := ValidatePathRequest(valid); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}

	withOpts := &PathRequest{
		StartTactic:           "TA0001",
		EndTactic:             "TA0040",
		GroupID:               "G0016",
		Platform:              "Windows",
		MaxTechniquesPerStage: 10,
	}
	if err := ValidatePathRequest(withOpts); err != nil {
		t.Errorf("Valid request with options rejected: %v", err)
	}

	tests := []struct {
		name string
		req  *PathRequest
		want string
	}{
		{"missing start", &PathRequest{EndTactic: "TA0040"}, "required"},
		{"malformed start", &PathRequest{StartTactic: "TACTIC1", EndTactic: "TA0040"}, "TAnnnn"},
		{"malformed end", &PathRequest{StartTactic: "TA0001", EndTactic: "T1059"}, "TAnnnn"},
		{"malformed group", &PathRequest{StartTactic: "TA0001", EndTactic: "TA0040", GroupID: "APT29"}, "Gnnnn"},
		{"cap too large", &PathRequest{StartTactic: "TA0001", EndTactic: "TA0040", MaxTechniquesPerStage: 500}, "must not exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathRequest(tt.req)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error %q does not mention %q", err, tt.want)
			}
		})
	}

	if err := ValidatePathRequest(nil); err == nil {
		t.Error("Nil request should be rejected")
	}
}

func TestValidateGapsRequest(t *testing.T) {
	valid := &GapsRequest{
		GroupIDs:            []string{"G0016", "G0032"},
		TechniqueFilter:     []string{"T1059", "T1059.001"},
		ExcludedMitigations: []string{"M1040"},
	}
	if err := ValidateGapsRequest(valid); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}

	if err := ValidateGapsRequest(&GapsRequest{}); err == nil {
		t.Error("Empty group list should be rejected")
	}
	if err := ValidateGapsRequest(&GapsRequest{GroupIDs: []string{"not-a-group"}}); err == nil {
		t.Error("Malformed group ID should be rejected")
	}
	if err := ValidateGapsRequest(&GapsRequest{
		GroupIDs:        []string{"G0016"},
		TechniqueFilter: []string{"T1059.1"},
	}); err == nil {
		t.Error("Sub-technique suffix must be three digits")
	}
	if err := ValidateGapsRequest(nil); err == nil {
		t.Error("Nil request should be rejected")
	}
}

func TestValidateTraverseRequest(t *testing.T) {
	valid := &TraverseRequest{TechniqueID: "T1055", Depth: 2}
	if err := ValidateTraverseRequest(valid); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}
	sub := &TraverseRequest{TechniqueID: "T1059.001", Types: []string{"uses", "mitigates"}}
	if err := ValidateTraverseRequest(sub); err != nil {
		t.Errorf("Valid sub-technique request rejected: %v", err)
	}

	if err := ValidateTraverseRequest(&TraverseRequest{TechniqueID: "TA0001"}); err == nil {
		t.Error("Tactic ID is not a technique ID")
	}
	if err := ValidateTraverseRequest(&TraverseRequest{TechniqueID: "T1055", Depth: 4}); err == nil {
		t.Error("Depth above 3 should be rejected")
	}
	if err := ValidateTraverseRequest(&TraverseRequest{TechniqueID: "T1055", Depth: -1}); err == nil {
		t.Error("Negative depth should be rejected")
	}
	if err := ValidateTraverseRequest(nil); err == nil {
		t.Error("Nil request should be rejected")
	}
}

func TestValidateEntityID(t *testing.T) {
	for _, id := range []string{"TA0001", "T1059", "T1059.001", "G0016", "M1040", "DS0009"} {
		if err := ValidateEntityID(id); err != nil {
			t.Errorf("ValidateEntityID(%q) = %v", id, err)
		}
	}
	for _, id := range []string{"", "X1234", "T105", "TA001", "G16", "t1059"} {
		if err := ValidateEntityID(id); err == nil {
			t.Errorf("ValidateEntityID(%q) should fail", id)
		}
	}
}
