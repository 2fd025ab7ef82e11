package effect

// EffectBuilderOption is a functional option for configuring an Effect.
type EffectBuilderOption func(*effect)

// WithName overrides the effect name, which otherwise defaults to the resource name.
//
// Parameters:
//   - name: the effect name
//
// Returns:
//   - EffectBuilderOption: a function that applies the name option
func WithName(name string) EffectBuilderOption {
	return func(e *effect) {
		if name != "" {
			e.name = name
		}
	}
}
