package policy

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecisionJSONOmitsEmptyContext(t *testing.T) {
	out, err := json.Marshal(allow())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "context") {
		t.Errorf("allow decision should omit empty context, got %s", out)
	}

	out, err = json.Marshal(deny(ReasonCapacity, DecisionContext{OpenAssigned: 2, MaxAllowed: 2}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"max_allowed":2`) {
		t.Errorf("deny decision should carry context numbers, got %s", out)
	}
}
