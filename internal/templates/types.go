package templates

// Template describes an embedded template set.
type Template struct {
	// Name is the template directory and the generator namespace using it.
	Name string

	// Description explains what the rendered files are.
	Description string
}

// TemplateData holds the values the built-in templates reference.
type TemplateData struct {
	// Name is the project name in kebab-case (e.g., "my-app").
	Name string

	// NamePascal is the PascalCase version of Name (e.g., "MyApp").
	NamePascal string

	// ModulePath is the Go module path (e.g., "example.com/my-app").
	ModulePath string

	// PackageName is a valid Go identifier derived from Name.
	PackageName string

	// Description is a one-line summary of the project.
	Description string

	// License is the SPDX identifier of the chosen license.
	License string

	// Author and Email come from git configuration when available.
	Author string
	Email  string

	// Year is used in copyright lines.
	Year int

	// GoVersion is the language version written to go.mod.
	GoVersion string
}
