package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cat := Default()
	if err := cat.Validate(); err != nil {
		t.Fatalf("built-in catalog invalid: %v", err)
	}
	if _, ok := cat.FlowByName("navigation"); !ok {
		t.Fatalf("navigation flow missing")
	}
	if len(cat.Signatures) == 0 {
		t.Fatalf("built-in catalog has no signatures")
	}
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Flows) == 0 {
		t.Fatalf("expected default flows")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Flows) == 0 {
		t.Fatalf("expected default flows")
	}
}

func TestLoadFromYAML(t *testing.T) {
	doc := `
version: "test"
flows:
  - name: custom
    creationEvents: [CreateSession]
    keyEvents: [SessionStarted, SessionEnded]
    keyPatterns: ['SessionId=(\d+)']
    stages:
      - name: SessionStarted
        expected: [SessionStarted]
        required: true
signatures:
  - key: session-never-ends
    label: Session never ended
    category: session
    mustPresent: [SessionStarted]
    mustAbsent: [SessionEnded]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Version != "test" {
		t.Fatalf("version = %q", cat.Version)
	}
	flow, ok := cat.FlowByName("custom")
	if !ok {
		t.Fatalf("custom flow missing")
	}
	if !flow.Stages[0].Required {
		t.Fatalf("required flag lost in round trip")
	}
	if len(cat.Signatures) != 1 || cat.Signatures[0].Key != "session-never-ends" {
		t.Fatalf("signatures = %+v", cat.Signatures)
	}
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"no flows":         `version: "x"`,
		"no capture group": "flows:\n  - name: f\n    creationEvents: [C]\n    keyPatterns: ['NavigationId=\\d+']\n    stages:\n      - name: s\n        expected: [E]\n",
		"duplicate key":    "flows:\n  - name: f\n    creationEvents: [C]\n    stages:\n      - name: s\n        expected: [E]\nsignatures:\n  - {key: k, label: l}\n  - {key: k, label: l2}\n",
	}
	dir := t.TempDir()
	for name, doc := range cases {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestPatternsUnion(t *testing.T) {
	cat := &Catalog{
		Flows: []Flow{{
			Name:           "f",
			CreationEvents: []string{"Create"},
			KeyEvents:      []string{"Start", "Start"},
			Stages: []Stage{
				{Name: "s", Expected: []string{"Start"}, Failures: []string{"StartFailed"}},
			},
			Boundaries:        []BoundaryCheck{{Name: "b", Producer: "Start", Consumer: "Invoke_StartHandler"}},
			FlowCompleteEvent: "Done",
		}},
		Signatures: []Signature{{
			Key: "k", Label: "l",
			MustPresent: []string{"Start"},
			MustAbsent:  []string{"Done"},
			Timing:      []TimingPair{{From: "Start", To: "Done", ThresholdMs: 100}},
		}},
	}

	patterns := cat.Patterns()
	want := map[string]bool{
		"Create": false, "Start": false, "StartFailed": false,
		"Invoke_StartHandler": false, "Done": false,
	}
	for _, p := range patterns {
		if _, ok := want[p]; !ok {
			t.Fatalf("unexpected pattern %q", p)
		}
		if want[p] {
			t.Fatalf("duplicate pattern %q", p)
		}
		want[p] = true
	}
	for p, seen := range want {
		if !seen {
			t.Fatalf("pattern %q missing from union", p)
		}
	}
}
