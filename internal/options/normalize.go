package options

import (
	"context"
	"fmt"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

// RevisionResolver turns a symbolic ref into a short revision identifier.
type RevisionResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Default produces the value of an absent option. It is either a Literal
// or a Computed.
type Default interface {
	isDefault()
}

// Literal is a static default.
type Literal struct {
	Value Value
}

func (Literal) isDefault() {}

// Computed derives a default from the options resolved so far. It runs only
// when its option is absent.
type Computed func(ctx context.Context, resolved Config) (Value, error)

func (Computed) isDefault() {}

// Rule pairs an option with its default. Rules are applied in slice order,
// so a Computed may read any key defaulted by an earlier rule.
type Rule struct {
	Key     Key
	Default Default
}

// Rules returns the default table for a preset. Revision defaults call
// resolver lazily.
func Rules(p Preset, resolver RevisionResolver) []Rule {
	resolve := func(ref string) Computed {
		return func(ctx context.Context, _ Config) (Value, error) {
			sha, err := resolver.Resolve(ctx, ref)
			if err != nil {
				return Value{}, err
			}
			return StringValue(sha), nil
		}
	}
	buildCommand := func(v Variant) Computed {
		return func(_ context.Context, c Config) (Value, error) {
			return StringValue(fmt.Sprintf("ember build -e production --output-path %s", c.String(v.DistKey()))), nil
		}
	}
	serveCommand := func(v Variant) Computed {
		return func(_ context.Context, c Config) (Value, error) {
			return StringValue(fmt.Sprintf("ember s --path=%s --port=%d", c.String(v.DistKey()), p.Port(v))), nil
		}
	}
	url := func(v Variant) Literal {
		u := fmt.Sprintf("http://localhost:%d", p.Port(v))
		if p.Instrument {
			u += "?tracerbench=true"
		}
		return Literal{StringValue(u)}
	}

	return []Rule{
		{UseYarn, Literal{BoolValue(true)}},
		{ControlSHA, resolve(p.ControlRef)},
		{ExperimentSHA, resolve(p.ExperimentRef)},
		{BuildControl, Literal{BoolValue(true)}},
		{BuildExperiment, Literal{BoolValue(true)}},
		{ControlDist, Literal{StringValue("dist-control")}},
		{ExperimentDist, Literal{StringValue("dist-experiment")}},
		{ControlBuildCommand, buildCommand(Control)},
		{ExperimentBuildCommand, buildCommand(Experiment)},
		{ControlServeCommand, serveCommand(Control)},
		{ExperimentServeCommand, serveCommand(Experiment)},
		{ControlURL, url(Control)},
		{ExperimentURL, url(Experiment)},
		{Fidelity, Literal{StringValue(p.Fidelity)}},
		{Markers, Literal{StringValue(p.Markers)}},
		{RuntimeStats, Literal{BoolValue(p.RuntimeStats)}},
		{Report, Literal{BoolValue(p.Report)}},
		{Headless, Literal{BoolValue(p.Headless)}},
		{RegressionThreshold, Literal{IntValue(p.RegressionThreshold)}},
	}
}

// Normalize returns a copy of partial with a value for every rule key.
// Supplied values always win; partial is never modified.
func Normalize(ctx context.Context, partial Config, rules []Rule) (Config, error) {
	if err := checkKinds(partial); err != nil {
		return nil, err
	}
	resolved := partial.Clone()
	for _, rule := range rules {
		if resolved.Has(rule.Key) {
			continue
		}
		var (
			v   Value
			err error
		)
		switch d := rule.Default.(type) {
		case Literal:
			v = d.Value
		case Computed:
			v, err = d(ctx, resolved)
			if err != nil {
				return nil, fmt.Errorf("defaulting %s: %w", rule.Key, err)
			}
		default:
			return nil, fmt.Errorf("defaulting %s: unsupported default %T", rule.Key, rule.Default)
		}
		if spec, ok := Lookup(rule.Key); ok && spec.Kind != v.Kind() {
			return nil, fmt.Errorf("defaulting %s: produced %s, want %s", rule.Key, v.Kind(), spec.Kind)
		}
		resolved[rule.Key] = v
	}
	return resolved, nil
}

func checkKinds(c Config) error {
	for _, key := range c.Keys() {
		spec, ok := Lookup(key)
		if !ok {
			return apperrors.NewConfigError("unknown option %q", key)
		}
		if got := c[key].Kind(); got != spec.Kind {
			return apperrors.NewConfigError("option %q expects %s, got %s", key, spec.Kind, got)
		}
	}
	return nil
}

// Normalizer applies a preset's rules.
type Normalizer struct {
	Preset   Preset
	Resolver RevisionResolver
}

// NewNormalizer creates a Normalizer for preset p.
func NewNormalizer(p Preset, resolver RevisionResolver) *Normalizer {
	return &Normalizer{Preset: p, Resolver: resolver}
}

// Normalize fills every absent option from the preset rules.
func (n *Normalizer) Normalize(ctx context.Context, partial Config) (Config, error) {
	return Normalize(ctx, partial, Rules(n.Preset, n.Resolver))
}
