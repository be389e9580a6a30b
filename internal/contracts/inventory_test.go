package contracts

import (
	"encoding/json"
	"testing"
)

func TestActionForState(t *testing.T) {
	tests := []struct {
		name  string
		state StockState
		want  string
	}{
		{"stockout risk", StateStockoutRisk, ActionStockoutRisk},
		{"overstock", StateOverstock, ActionOverstock},
		{"ok", StateOK, ActionOK},
		{"unknown state falls back to monitor", StockState("weird"), ActionOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActionForState(tt.state); got != tt.want {
				t.Errorf("ActionForState(%q) = %q, want %q", tt.state, got, tt.want)
			}
		})
	}
}

func TestItemDemandStats_NilRatiosMarshalAsNull(t *testing.T) {
	data, err := json.Marshal(ItemDemandStats{ItemCode: "SKU-1", State: StateOK})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"days_of_coverage", "overstock_pct", "stockout_risk_index"} {
		v, ok := m[key]
		if !ok {
			t.Errorf("missing field %q", key)
			continue
		}
		if v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
}
