// Package shader pre-processes effect shader sources before they are compiled. It expands the
// @oxy annotations an effect declares so the WGSL program sees its per-instance uniforms at the
// bindings the renderer writes them to:
//
//	//@oxy:data 1 tint vec4 1 1 1 1  ->  @group(1) @binding(1) var<uniform> tint: vec4<f32>;
//	//@oxy:data 0 amount vertex      ->  (left as a comment, the value arrives as vertex data)
//	//@oxy:include color             ->  the source of the registered "color" snippet
package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
)

const (
	annotationPrefix      = "@oxy:"
	annotationTypeData    = "data"
	annotationTypeInclude = "include"
)

// DefaultBindGroup is the bind group effect uniforms are declared in unless WithBindGroup
// says otherwise.
const DefaultBindGroup = 1

// ColorSnippet converts between packed 8-bit channels and normalized colors the same way the
// engine does on the CPU.
const ColorSnippet = `fn oxy_unpack_color(c: u32) -> vec4<f32> {
    return vec4<f32>(unpack4x8unorm(c));
}

fn oxy_pack_color(c: vec4<f32>) -> u32 {
    return pack4x8unorm(clamp(c, vec4<f32>(0.0), vec4<f32>(1.0)));
}`

// VertexDataSnippet declares the struct carrying the four per-instance vertex data values.
const VertexDataSnippet = `struct OxyVertexData {
    data: vec4<f32>,
}`

// PreProcessor expands @oxy annotations in WGSL sources.
type PreProcessor interface {
	// Process expands the annotations in source. Lines that are not annotations are kept as is.
	// The uniform declarations produced are available from Declarations until the next call.
	//
	// Parameters:
	//   - source: the WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error for malformed annotations or unknown snippets
	Process(source string) (string, error)

	// Declarations returns the uniform data bindings declared by the last Process call, in
	// source order.
	Declarations() []shader_resource.DataBinding

	// RegisterSnippet makes source available to @oxy:include under name, replacing any
	// snippet already registered under it.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL text
	RegisterSnippet(name, source string)

	// Snippets returns the registered include names in sorted order.
	Snippets() []string
}

type preProcessor struct {
	group        int
	snippets     map[string]string
	declarations []shader_resource.DataBinding
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the "color" and "vertex_data" snippets registered.
//
// Parameters:
//   - options: the PreProcessorBuilderOption values to apply
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		group: DefaultBindGroup,
		snippets: map[string]string{
			"color":       ColorSnippet,
			"vertex_data": VertexDataSnippet,
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) RegisterSnippet(name, source string) {
	p.snippets[name] = source
}

func (p *preProcessor) Snippets() []string {
	return slices.Sorted(maps.Keys(p.snippets))
}

func (p *preProcessor) Declarations() []shader_resource.DataBinding {
	return p.declarations
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		_, rest, ok := strings.Cut(trimmed, annotationPrefix)
		if !ok || !strings.HasPrefix(trimmed, "//") {
			out = append(out, line)
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", fmt.Errorf("line %d: empty @oxy annotation", i+1)
		}

		switch fields[0] {
		case annotationTypeData:
			b, err := shader_resource.ParseDataAnnotation(line, i+1)
			if err != nil {
				return "", err
			}
			if !b.IsUniform() {
				out = append(out, line)
				continue
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", p.group, b.Index, b.Name, b.Type.WGSL()))
			p.declarations = append(p.declarations, *b)
		case annotationTypeInclude:
			if len(fields) != 2 {
				return "", fmt.Errorf("line %d: @oxy:include takes one snippet name", i+1)
			}
			snippet, ok := p.snippets[fields[1]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include snippet %q", i+1, fields[1])
			}
			out = append(out, snippet)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, fields[0])
		}
	}
	return strings.Join(out, "\n"), nil
}
