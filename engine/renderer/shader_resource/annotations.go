// annotations.go parses the data layout annotations of an effect shader. Each annotation is a
// single WGSL comment line that declares which of the four per-instance data slots the program
// reads, under which name, and whether the slot is fed as a uniform or as plain vertex data.
//
// Syntax: //@oxy:data <index> <name> <type> [default ...]
//
// Examples:
//
//	//@oxy:data 0 intensity vertex 1
//	//@oxy:data 1 tint vec4 1 1 1 1
package shader_resource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
)

const annotationPrefix = "@oxy:"

// annotationTypeData is the only annotation understood by ParseDataLayout.
const annotationTypeData = "data"

// vertexDataType is the type argument marking a slot as plain vertex data rather than a uniform.
const vertexDataType = "vertex"

// ParseDataLayout extracts the DataBindings declared with @oxy:data annotations in a WGSL source.
// Lines without the annotation prefix are ignored. Other @oxy annotation types are ignored so
// the same source can carry annotations meant for other pre-processing stages.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []DataBinding: the bindings in source order
//   - error: a descriptive error for malformed annotations, duplicate indices or duplicate names
func ParseDataLayout(source string) ([]DataBinding, error) {
	var bindings []DataBinding
	seenIndex := make(map[int]bool)
	seenName := make(map[string]bool)
	for i, line := range strings.Split(source, "\n") {
		b, err := ParseDataAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		if seenIndex[b.Index] {
			return nil, fmt.Errorf("line %d: data index %d declared twice", i+1, b.Index)
		}
		if seenName[b.Name] {
			return nil, fmt.Errorf("line %d: data name %q declared twice", i+1, b.Name)
		}
		seenIndex[b.Index] = true
		seenName[b.Name] = true
		bindings = append(bindings, *b)
	}
	return bindings, nil
}

// ParseDataAnnotation parses a single source line. It returns nil with no error for lines
// that are not @oxy:data annotations. lineNum only appears in error messages.
func ParseDataAnnotation(line string, lineNum int) (*DataBinding, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}
	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}
	if args[0] != annotationTypeData {
		return nil, nil
	}
	if len(args) < 4 {
		return nil, fmt.Errorf("line %d: @oxy data annotation requires an index, a name and a type", lineNum)
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid data index %q: %v", lineNum, args[1], err)
	}
	if index < 0 || index >= MaxDataBindings {
		return nil, fmt.Errorf("line %d: data index %d outside [0, %d]", lineNum, index, MaxDataBindings-1)
	}

	b := &DataBinding{Index: index, Name: args[2]}
	components := 1
	if args[3] != vertexDataType {
		b.Type, err = uniform.ParseDataType(args[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNum, err)
		}
		components = b.Type.Components()
	}

	defaults := args[4:]
	if len(defaults) > min(components, 4) {
		return nil, fmt.Errorf("line %d: %d default values given for %q, at most %d allowed", lineNum, len(defaults), b.Name, min(components, 4))
	}
	for i, d := range defaults {
		v, err := strconv.ParseFloat(d, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid default value %q: %v", lineNum, d, err)
		}
		b.Default[i] = float32(v)
	}
	return b, nil
}
