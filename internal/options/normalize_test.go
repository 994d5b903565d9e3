package options

import (
	"context"
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

// fakeResolver returns "sha-<ref>" and counts calls per ref.
type fakeResolver struct {
	calls map[string]int
	err   error
}

func newFakeResolver() *fakeResolver { return &fakeResolver{calls: map[string]int{}} }

func (f *fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	f.calls[ref]++
	if f.err != nil {
		return "", f.err
	}
	return "sha-" + ref, nil
}

func (f *fakeResolver) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func TestNormalize_CIDefaults(t *testing.T) {
	t.Parallel()
	resolver := newFakeResolver()
	got, err := NewNormalizer(CIPreset, resolver).Normalize(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := Config{
		UseYarn:                BoolValue(true),
		ControlSHA:             StringValue("sha-origin/master"),
		ExperimentSHA:          StringValue("sha-HEAD"),
		BuildControl:           BoolValue(true),
		BuildExperiment:        BoolValue(true),
		ControlDist:            StringValue("dist-control"),
		ExperimentDist:         StringValue("dist-experiment"),
		ControlBuildCommand:    StringValue("ember build -e production --output-path dist-control"),
		ExperimentBuildCommand: StringValue("ember build -e production --output-path dist-experiment"),
		ControlServeCommand:    StringValue("ember s --path=dist-control --port=4200"),
		ExperimentServeCommand: StringValue("ember s --path=dist-experiment --port=4201"),
		ControlURL:             StringValue("http://localhost:4200?tracerbench=true"),
		ExperimentURL:          StringValue("http://localhost:4201?tracerbench=true"),
		Fidelity:               StringValue("low"),
		Markers:                StringValue("domComplete"),
		RuntimeStats:           BoolValue(false),
		Report:                 BoolValue(true),
		Headless:               BoolValue(true),
		RegressionThreshold:    IntValue(50),
	}
	if !reflect.DeepEqual(got, want) {
		for _, k := range want.Keys() {
			if got[k] != want[k] {
				t.Errorf("%s = %q (%s), want %q (%s)", k, got[k], got[k].Kind(), want[k], want[k].Kind())
			}
		}
		t.Fatalf("normalized config has %d keys, want %d", len(got), len(want))
	}
	if resolver.calls["origin/master"] != 1 || resolver.calls["HEAD"] != 1 {
		t.Errorf("resolver calls = %v, want one per ref", resolver.calls)
	}
	if err := Validate(got); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestNormalize_InteractivePreset(t *testing.T) {
	t.Parallel()
	got, err := NewNormalizer(InteractivePreset, newFakeResolver()).Normalize(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.String(Fidelity) != "high" {
		t.Errorf("fidelity = %q, want high", got.String(Fidelity))
	}
	if got.Bool(Headless) {
		t.Error("interactive preset should not run headless")
	}
}

func TestNormalize_DependentDefaultsReadSuppliedValues(t *testing.T) {
	t.Parallel()
	partial := Config{
		ControlDist:    StringValue("out/base"),
		ExperimentDist: StringValue("out/candidate"),
	}
	got, err := NewNormalizer(CIPreset, newFakeResolver()).Normalize(context.Background(), partial)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	tests := []struct {
		key  Key
		want string
	}{
		{ControlBuildCommand, "ember build -e production --output-path out/base"},
		{ExperimentBuildCommand, "ember build -e production --output-path out/candidate"},
		{ControlServeCommand, "ember s --path=out/base --port=4200"},
		{ExperimentServeCommand, "ember s --path=out/candidate --port=4201"},
	}
	for _, tt := range tests {
		if got.String(tt.key) != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got.String(tt.key), tt.want)
		}
	}
}

func TestNormalize_SuppliedSHAsSkipResolution(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		partial   Config
		wantCalls map[string]int
	}{
		{
			name:      "control supplied",
			partial:   Config{ControlSHA: StringValue("abc12345")},
			wantCalls: map[string]int{"HEAD": 1},
		},
		{
			name:      "experiment supplied",
			partial:   Config{ExperimentSHA: StringValue("def67890")},
			wantCalls: map[string]int{"origin/master": 1},
		},
		{
			name:      "both supplied",
			partial:   Config{ControlSHA: StringValue("abc12345"), ExperimentSHA: StringValue("def67890")},
			wantCalls: map[string]int{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resolver := newFakeResolver()
			if _, err := NewNormalizer(CIPreset, resolver).Normalize(context.Background(), tt.partial); err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if !reflect.DeepEqual(resolver.calls, tt.wantCalls) {
				t.Errorf("resolver calls = %v, want %v", resolver.calls, tt.wantCalls)
			}
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	partial := Config{Fidelity: StringValue("high")}
	if _, err := NewNormalizer(CIPreset, newFakeResolver()).Normalize(context.Background(), partial); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(partial) != 1 {
		t.Errorf("input config was modified: %v", partial)
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()
	boom := errors.New("fatal: ambiguous argument 'origin/master'")
	tests := []struct {
		name       string
		partial    Config
		resolveErr error
		wantConfig bool
		wantIs     error
	}{
		{
			name:       "kind mismatch",
			partial:    Config{Headless: StringValue("yes")},
			wantConfig: true,
		},
		{
			name:       "unknown key",
			partial:    Config{Key("colour"): StringValue("red")},
			wantConfig: true,
		},
		{
			name:       "resolver failure",
			partial:    Config{},
			resolveErr: boom,
			wantIs:     boom,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resolver := newFakeResolver()
			resolver.err = tt.resolveErr
			_, err := NewNormalizer(CIPreset, resolver).Normalize(context.Background(), tt.partial)
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr apperrors.ConfigError
			if tt.wantConfig != errors.As(err, &cfgErr) {
				t.Errorf("ConfigError = %v, want %v (err: %v)", !tt.wantConfig, tt.wantConfig, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error %v should wrap %v", err, tt.wantIs)
			}
		})
	}
}

func TestNormalize_ComputedSeesEarlierRules(t *testing.T) {
	t.Parallel()
	var seen Config
	rules := []Rule{
		{Key: ControlDist, Default: Literal{StringValue("first")}},
		{Key: ControlBuildCommand, Default: Computed(func(_ context.Context, c Config) (Value, error) {
			seen = c.Clone()
			return StringValue("build " + c.String(ControlDist)), nil
		})},
	}
	got, err := Normalize(context.Background(), Config{}, rules)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.String(ControlBuildCommand) != "build first" {
		t.Errorf("computed default = %q", got.String(ControlBuildCommand))
	}
	if !seen.Has(ControlDist) {
		t.Error("computed default should observe the earlier literal")
	}
}

func TestNormalize_ComputedWrongKind(t *testing.T) {
	t.Parallel()
	rules := []Rule{{Key: Headless, Default: Computed(func(context.Context, Config) (Value, error) {
		return StringValue("true"), nil
	})}}
	if _, err := Normalize(context.Background(), Config{}, rules); err == nil {
		t.Fatal("expected kind error from computed default")
	}
}

func TestPresetByName(t *testing.T) {
	t.Parallel()
	if p, err := PresetByName(""); err != nil || p.Name != "ci" {
		t.Errorf("empty name = %q, %v; want ci", p.Name, err)
	}
	if p, err := PresetByName("interactive"); err != nil || p.Name != "interactive" {
		t.Errorf("interactive = %q, %v", p.Name, err)
	}
	_, err := PresetByName("nightly")
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("unknown preset should be a ConfigError, got %v", err)
	}
	if CIPreset.WaitBudget() < CIPreset.WaitInterval*100 {
		t.Errorf("ci wait budget %s is too small for slow builds", CIPreset.WaitBudget())
	}
}

func TestSpecsCoverEveryKey(t *testing.T) {
	t.Parallel()
	if len(Specs()) != 19 {
		t.Fatalf("expected 19 options, got %d", len(Specs()))
	}
	rules := Rules(CIPreset, newFakeResolver())
	if len(rules) != len(Specs()) {
		t.Fatalf("rules cover %d keys, specs %d", len(rules), len(Specs()))
	}
	for i, s := range Specs() {
		if rules[i].Key != s.Key {
			t.Errorf("rule %d is %s, spec order has %s", i, rules[i].Key, s.Key)
		}
	}
	for _, v := range Variants {
		for _, k := range []Key{v.SHAKey(), v.DistKey(), v.BuildCommandKey(), v.ServeCommandKey(), v.URLKey(), v.BuildFlagKey()} {
			if _, ok := Lookup(k); !ok {
				t.Errorf("variant key %s is not a recognized option", k)
			}
		}
	}
}
