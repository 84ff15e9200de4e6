package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Stage is one expected step in a flow's lifecycle, in catalog order.
type Stage struct {
	Name     string   `yaml:"name"`
	Expected []string `yaml:"expected"`
	Failures []string `yaml:"failures,omitempty"`
	Required bool     `yaml:"required,omitempty"`
}

// BoundaryCheck pairs a runtime-emitted event with the application-level
// handler line that should follow it.
type BoundaryCheck struct {
	Name     string `yaml:"name"`
	Producer string `yaml:"producer"`
	Consumer string `yaml:"consumer"`
}

// Flow is the static lifecycle catalog for one flow type.
type Flow struct {
	Name string `yaml:"name"`

	// CreationEvents anchor incarnation boundaries.
	CreationEvents []string `yaml:"creationEvents"`

	// KeyEvents are the milestones/failures/drops collected per
	// incarnation and per process.
	KeyEvents []string `yaml:"keyEvents"`

	// KeyPatterns are regexes (one capture group) extracting the
	// correlation key from a raw line; several surface syntaxes may map
	// to the same logical identifier.
	KeyPatterns []string `yaml:"keyPatterns"`

	Stages     []Stage         `yaml:"stages"`
	Boundaries []BoundaryCheck `yaml:"boundaries,omitempty"`

	// Issue-classification markers, evaluated in fixed priority order by
	// the segmenter.
	ProcessFailureEvents []string `yaml:"processFailureEvents,omitempty"`
	HangEvents           []string `yaml:"hangEvents,omitempty"`
	FlowStartEvent       string   `yaml:"flowStartEvent,omitempty"`
	FlowCompleteEvent    string   `yaml:"flowCompleteEvent,omitempty"`
	DropEvents           []string `yaml:"dropEvents,omitempty"`
}

// TimingPair flags a signature when the gap between two first-seen
// events exceeds a threshold.
type TimingPair struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	ThresholdMs uint64 `yaml:"thresholdMs"`
}

// Signature is one named fault hypothesis: which patterns should and
// should not appear for the hypothesis to hold.
type Signature struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
	Stage    string `yaml:"stage,omitempty"`

	MustPresent []string `yaml:"mustPresent,omitempty"`
	MustAbsent  []string `yaml:"mustAbsent,omitempty"`
	MayPresent  []string `yaml:"mayPresent,omitempty"`

	Timing []TimingPair `yaml:"timing,omitempty"`
}

// Catalog bundles the domain knowledge for one engine run. It is loaded
// once, validated, and treated as read-only thereafter.
type Catalog struct {
	Version    string      `yaml:"version"`
	Flows      []Flow      `yaml:"flows"`
	Signatures []Signature `yaml:"signatures"`
}

// Load reads a catalog from a YAML file. An empty path or a missing file
// yields the built-in defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks structural invariants: named flows with creation
// events and stages, compilable key patterns, named signatures.
func (c *Catalog) Validate() error {
	if len(c.Flows) == 0 {
		return errors.New("no flows defined")
	}
	for _, flow := range c.Flows {
		if flow.Name == "" {
			return errors.New("flow with empty name")
		}
		if len(flow.CreationEvents) == 0 {
			return fmt.Errorf("flow %s: no creation events", flow.Name)
		}
		if len(flow.Stages) == 0 {
			return fmt.Errorf("flow %s: no stages", flow.Name)
		}
		for _, pattern := range flow.KeyPatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("flow %s: key pattern %q: %w", flow.Name, pattern, err)
			}
			if re.NumSubexp() < 1 {
				return fmt.Errorf("flow %s: key pattern %q has no capture group", flow.Name, pattern)
			}
		}
	}
	seen := make(map[string]struct{}, len(c.Signatures))
	for _, sig := range c.Signatures {
		if sig.Key == "" || sig.Label == "" {
			return errors.New("signature with empty key or label")
		}
		if _, dup := seen[sig.Key]; dup {
			return fmt.Errorf("duplicate signature key %s", sig.Key)
		}
		seen[sig.Key] = struct{}{}
	}
	return nil
}

// FlowByName returns the named flow, falling back to the first flow when
// name is empty. The second return is false when no flow matches.
func (c *Catalog) FlowByName(name string) (Flow, bool) {
	if name == "" && len(c.Flows) > 0 {
		return c.Flows[0], true
	}
	for _, flow := range c.Flows {
		if flow.Name == name {
			return flow, true
		}
	}
	return Flow{}, false
}

// Patterns returns the union of every literal pattern the engine will
// query against the event index: creation and key events, stage
// expectations and failure variants, boundary producers/consumers, and
// signature must/may/absent patterns plus timing keys.
func (c *Catalog) Patterns() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(patterns ...string) {
		for _, p := range patterns {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, flow := range c.Flows {
		add(flow.CreationEvents...)
		add(flow.KeyEvents...)
		add(flow.ProcessFailureEvents...)
		add(flow.HangEvents...)
		add(flow.DropEvents...)
		add(flow.FlowStartEvent, flow.FlowCompleteEvent)
		for _, stage := range flow.Stages {
			add(stage.Expected...)
			add(stage.Failures...)
		}
		for _, boundary := range flow.Boundaries {
			add(boundary.Producer, boundary.Consumer)
		}
	}
	for _, sig := range c.Signatures {
		add(sig.MustPresent...)
		add(sig.MustAbsent...)
		add(sig.MayPresent...)
		for _, pair := range sig.Timing {
			add(pair.From, pair.To)
		}
	}
	return out
}
