package batch

import (
	"embed"
	"fmt"
	"strings"

	"github.com/taigrr/glprim/pkg/gpu"
)

//go:embed shaders/*
var shaderFS embed.FS

const glslVersion = "#version 410 core\n"

// shaderSource concatenates the named files behind the version line and
// the given preprocessor definitions.
func shaderSource(defines []string, files ...string) string {
	var b strings.Builder
	b.WriteString(glslVersion)
	for _, d := range defines {
		fmt.Fprintf(&b, "#define %s\n", d)
	}
	for _, f := range files {
		src, err := shaderFS.ReadFile("shaders/" + f)
		if err != nil {
			// Files are embedded at build time.
			panic(err)
		}
		b.Write(src)
		b.WriteByte('\n')
	}
	return b.String()
}

// impostorSources returns the vertex and fragment stages of the shader pair
// named stem ("sphere" or "cylinder").
func impostorSources(stem string) []gpu.Source {
	return []gpu.Source{
		{Stage: gpu.VertexStage, Code: shaderSource(nil, stem+".vert")},
		{Stage: gpu.FragmentStage, Code: shaderSource(nil, "lighting.glsl", stem+".frag")},
	}
}
