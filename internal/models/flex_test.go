package models

import (
	"encoding/json"
	"testing"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexString
		wantErr  bool
	}{
		{"string", `"12449316"`, "12449316", false},
		{"integer", `12449316`, "12449316", false},
		{"decimal", `250.75`, "250.75", false},
		{"null", `null`, "", false},
		{"empty string", `""`, "", false},
		{"object", `{"a":1}`, "", true},
		{"bool", `true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f != tt.expected {
				t.Errorf("got %q, want %q", f, tt.expected)
			}
		})
	}
}

func TestFlexString_InStruct(t *testing.T) {
	var ctx AlertContext
	data := []byte(`{"alertId":7,"ambulanceId":101,"sysServiceId":12449316,"ambulanceNumber":"ITG1100"}`)
	if err := json.Unmarshal(data, &ctx); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if ctx.SysServiceID.String() != "12449316" {
		t.Errorf("sys service id = %q", ctx.SysServiceID)
	}

	out, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"alertId":7,"ambulanceId":101,"sysServiceId":"12449316","ambulanceNumber":"ITG1100"}` {
		t.Errorf("unexpected json: %s", out)
	}
}
