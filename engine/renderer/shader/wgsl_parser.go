package shader

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding and variable name from declarations like
	// @group(1) @binding(0) var<uniform> chunk_offset: ChunkOffset;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<[^>]*>)?\s+(\w+)`)
)

// bindingDecl is a resource declaration found in WGSL source.
type bindingDecl struct {
	group   int
	binding int
	name    string
}

// parseEntryPoint returns the name of the first function carrying the stage attribute, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var m []string
	switch shaderType {
	case ShaderTypeVertex:
		m = vertexEntryRegex.FindStringSubmatch(cleaned)
	case ShaderTypeFragment:
		m = fragmentEntryRegex.FindStringSubmatch(cleaned)
	}
	if m == nil {
		return ""
	}
	return m[1]
}

// parseBindingDeclarations lists every @group/@binding variable declared in the source.
//
// Parameters:
//   - source: raw WGSL source
//
// Returns:
//   - []bindingDecl: declarations in source order
func parseBindingDeclarations(source string) []bindingDecl {
	matches := bindingDeclRegex.FindAllStringSubmatch(stripComments(source), -1)
	decls := make([]bindingDecl, 0, len(matches))
	for _, m := range matches {
		g, errG := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errG != nil || errB != nil {
			continue
		}
		decls = append(decls, bindingDecl{group: g, binding: b, name: m[3]})
	}
	return decls
}

// stripComments removes // line comments and nested /* */ block comments so commented-out
// declarations are not picked up.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
