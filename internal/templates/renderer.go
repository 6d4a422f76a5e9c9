package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
)

// TemplateSuffix is stripped from rendered file names.
const TemplateSuffix = ".tmpl"

// Renderer handles template rendering with data substitution.
type Renderer struct {
	data  any
	funcs template.FuncMap
}

// NewRenderer creates a new renderer with the given template data.
func NewRenderer(data any) *Renderer {
	return &Renderer{
		data: data,
		funcs: template.FuncMap{
			"lower":  strings.ToLower,
			"upper":  strings.ToUpper,
			"pascal": PascalCase,
		},
	}
}

// RenderFile renders a single template file and returns the content.
func (r *Renderer) RenderFile(name string, content []byte) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(r.funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.Bytes(), nil
}

// RenderString renders a template string and returns the result.
func (r *Renderer) RenderString(content string) (string, error) {
	result, err := r.RenderFile("string", []byte(content))
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// TemplateFile represents a file generated from a template.
type TemplateFile struct {
	// SourcePath is the path within the source filesystem.
	SourcePath string

	// TargetPath is the output path relative to the destination (suffix removed).
	TargetPath string

	// Content is the rendered content.
	Content []byte
}

// RenderTree renders every file under root in fsys. Files ending in .tmpl are
// expanded and lose the suffix; other files are copied verbatim.
func (r *Renderer) RenderTree(fsys fs.FS, root string) ([]TemplateFile, error) {
	var files []TemplateFile

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		rel := p
		if root != "." && root != "" {
			rel = strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
			if p == root {
				rel = path.Base(p)
			}
		}

		if strings.HasSuffix(p, TemplateSuffix) {
			content, err = r.RenderFile(p, content)
			if err != nil {
				return err
			}
			rel = strings.TrimSuffix(rel, TemplateSuffix)
		}

		files = append(files, TemplateFile{
			SourcePath: p,
			TargetPath: rel,
			Content:    content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking template %s: %w", root, err)
	}

	return files, nil
}

// ListTemplateFiles returns the target paths of a template set without rendering.
func ListTemplateFiles(name string) ([]string, error) {
	fsys, err := Sub(name)
	if err != nil {
		return nil, err
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, strings.TrimSuffix(p, TemplateSuffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing template %s: %w", name, err)
	}

	return files, nil
}
