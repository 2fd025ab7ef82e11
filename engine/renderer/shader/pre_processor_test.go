package shader

import (
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
)

const effectSource = `//@oxy:include color
//@oxy:data 0 amount vertex 1
  //@oxy:data 2 tint vec4 1 1 1 1
//@oxy:data 3 xform mat3
@fragment fn fs_main() -> @location(0) vec4<f32> { return tint; }`

func TestProcessExpandsAnnotations(t *testing.T) {
	p := NewPreProcessor()
	out, err := p.Process(effectSource)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(out, ColorSnippet) {
		t.Fatal("color snippet not inlined")
	}
	for _, want := range []string{
		"//@oxy:data 0 amount vertex 1",
		"@group(1) @binding(2) var<uniform> tint: vec4<f32>;",
		"@group(1) @binding(3) var<uniform> xform: mat3x3<f32>;",
		"@fragment fn fs_main() -> @location(0) vec4<f32> { return tint; }",
	} {
		if !slices.Contains(lines, want) {
			t.Errorf("output missing %q", want)
		}
	}

	decls := p.Declarations()
	if len(decls) != 2 || decls[0].Name != "tint" || decls[1].Type != uniform.DataTypeMat3 {
		t.Fatalf("Declarations() = %+v", decls)
	}

	if _, err := p.Process("fn main() {}"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(p.Declarations()) != 0 {
		t.Fatal("declarations not reset between calls")
	}
}

func TestWithBindGroupAndSnippet(t *testing.T) {
	p := NewPreProcessor(WithBindGroup(3), WithSnippet("noise", "fn noise() -> f32 { return 0.0; }"))
	out, err := p.Process("//@oxy:include noise\n//@oxy:data 0 t f32")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := "fn noise() -> f32 { return 0.0; }\n@group(3) @binding(0) var<uniform> t: f32;"
	if out != want {
		t.Fatalf("Process = %q, want %q", out, want)
	}
	if got := p.Snippets(); !slices.Equal(got, []string{"color", "noise", "vertex_data"}) {
		t.Fatalf("Snippets() = %v", got)
	}
}

func TestProcessErrors(t *testing.T) {
	tests := map[string]string{
		"unknown snippet": "//@oxy:include missing",
		"include arity":   "//@oxy:include",
		"unknown type":    "//@oxy:bogus 1",
		"empty":           "//@oxy:",
		"bad data":        "//@oxy:data 9 x vec4",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewPreProcessor().Process(src); err == nil {
				t.Fatalf("Process(%q) succeeded", src)
			}
		})
	}
}

func TestPlainCommentsKept(t *testing.T) {
	src := "// uses @oxy:data annotations below\nlet x = 1;"
	out, err := NewPreProcessor().Process(src)
	if err != nil {
		t.Fatal(err)
	}
	if out != src {
		t.Fatalf("Process = %q", out)
	}
}
