package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderGeneratorTable(t *testing.T) {
	out := RenderGeneratorTable([]GeneratorRow{
		{Namespace: "app", Description: "Go module skeleton"},
		{Namespace: "gitignore", Description: "Default .gitignore", Unique: "namespace"},
	})

	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "app")
	assert.Contains(t, out, "gitignore")
	assert.Contains(t, out, "namespace")
	assert.Contains(t, out, "-")
}
