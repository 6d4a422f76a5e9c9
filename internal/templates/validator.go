package templates

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateProjectName checks if a project name is usable as a directory and
// module path element.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return fmt.Errorf("invalid project name %q: contains invalid character %q", name, r)
		}
	}

	if !unicode.IsLetter(rune(name[0])) {
		return fmt.Errorf("invalid project name %q: must start with a letter", name)
	}

	return nil
}

// SanitizeName converts a project name to a valid Go package name.
func SanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			result = append(result, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		}
	}

	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = append([]byte{'x'}, result...)
	}

	if len(result) == 0 {
		return "app"
	}

	return string(result)
}

// DeriveModulePath derives a Go module path from a project name.
func DeriveModulePath(name string) string {
	return "example.com/" + strings.ToLower(name)
}

// PascalCase converts kebab, snake or dotted names to PascalCase.
func PascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})

	var b strings.Builder
	for _, p := range parts {
		runes := []rune(p)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}
