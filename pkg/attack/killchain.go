package attack

// KillChain lists the 14 kill-chain tactic IDs in canonical order, from
// reconnaissance through impact. Attack-path construction walks this
// ordering; feed tactics must carry sequence indices consistent with it.
var KillChain = []string{
	"TA0043", // Reconnaissance
	"TA0042", // Resource Development
	"TA0001", // Initial Access
	"TA0002", // Execution
	"TA0003", // Persistence
	"TA0004", // Privilege Escalation
	"TA0005", // Defense Evasion
	"TA0006", // Credential Access
	"TA0007", // Discovery
	"TA0008", // Lateral Movement
	"TA0009", // Collection
	"TA0011", // Command and Control
	"TA0010", // Exfiltration
	"TA0040", // Impact
}

var killChainIndex = func() map[string]int {
	m := make(map[string]int, len(KillChain))
	for i, id := range KillChain {
		m[id] = i + 1
	}
	return m
}()

// KillChainIndex returns the 1-based canonical position of a tactic ID,
// or false if the ID is not a kill-chain stage.
func KillChainIndex(tacticID string) (int, bool) {
	idx, ok := killChainIndex[tacticID]
	return idx, ok
}

// KillChainStages returns the number of canonical kill-chain stages.
func KillChainStages() int {
	return len(KillChain)
}
