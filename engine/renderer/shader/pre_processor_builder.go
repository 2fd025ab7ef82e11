package shader

// PreProcessorBuilderOption is a functional option for configuring a preProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithBindGroup sets the bind group uniform declarations are generated in.
//
// Parameters:
//   - group: the bind group index
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithBindGroup(group int) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.group = group
	}
}

// WithSnippet registers an @oxy:include snippet.
//
// Parameters:
//   - name: the include name
//   - source: the WGSL text
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithSnippet(name, source string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.snippets[name] = source
	}
}
