package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileLine(t *testing.T) {
	tests := []struct {
		status string
		path   string
	}{
		{StatusCreate, "README.md"},
		{StatusConflict, "main.go"},
		{StatusIdentical, ".gitignore"},
		{"verylongstatus", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			line := FormatFileLine(tt.status, tt.path)
			assert.Contains(t, line, tt.status)
			assert.Contains(t, line, tt.path)
			assert.True(t, strings.Index(line, tt.status) < strings.Index(line, tt.path))
		})
	}
}

func TestFormatCheckmark(t *testing.T) {
	assert.Contains(t, FormatCheckmark("done"), "done")
	assert.Contains(t, FormatCheckmark("done"), "✔")
}
