package generators

import (
	"context"
	"fmt"
	"slices"
	"time"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/priority"
	"github.com/opmodel/scaffold/internal/prompt"
	"github.com/opmodel/scaffold/internal/templates"
)

// Licenses are the SPDX identifiers with an embedded text.
var Licenses = []string{"MIT", "ISC", "Unlicense"}

// LicenseOptions are the named options of the license generator.
type LicenseOptions struct {
	License string `option:"license"`
	Author  string `option:"author"`
	Email   string `option:"email"`
	Year    int    `option:"year"`
}

// License writes a LICENSE file, asking for the license when no option
// names one and taking the copyright holder from git.
type License struct {
	*generator.Base

	opts LicenseOptions
}

// NewLicense creates the license generator.
func NewLicense(opts generator.Options) (generator.Generator, error) {
	base, err := generator.New(opts, generator.Features{Unique: generator.UniqueNamespace})
	if err != nil {
		return nil, err
	}

	l := &License{Base: base}
	if err := l.DecodeOptions(&l.opts); err != nil {
		return nil, err
	}

	l.Define(priority.Initializing, l.initializing)
	l.Define(priority.Prompting, l.prompting)
	l.Define(priority.Configuring, l.configuring)
	l.Define(priority.Writing, l.writing)
	return l, nil
}

func (l *License) initializing(ctx context.Context) error {
	_, err := l.ComposeWith(ctx, GitignoreNamespace, generator.ComposeOptions{})
	return err
}

func (l *License) prompting(ctx context.Context) error {
	if l.opts.License != "" {
		return nil
	}

	answers, err := l.Prompt(ctx, prompt.Question{
		Name:    "license",
		Type:    prompt.TypeList,
		Message: "Which license do you want to use?",
		Choices: prompt.Choices("MIT", "ISC", "Unlicense"),
		Default: 0,
		Store:   true,
	})
	if err != nil {
		return err
	}
	l.opts.License, _ = answers["license"].(string)
	return nil
}

func (l *License) configuring(ctx context.Context) error {
	if !slices.Contains(Licenses, l.opts.License) {
		return oerrors.NewValidationError(
			fmt.Sprintf("unsupported license %q", l.opts.License), l.Namespace(), "license",
			fmt.Sprintf("Choose one of %v", Licenses))
	}

	if l.opts.Author == "" {
		l.opts.Author = l.User().Name(ctx)
	}
	if l.opts.Email == "" {
		l.opts.Email = l.User().Email(ctx)
	}
	if l.opts.Year == 0 {
		l.opts.Year = time.Now().Year()
	}
	return nil
}

func (l *License) writing(context.Context) error {
	data := templates.TemplateData{
		License: l.opts.License,
		Author:  l.opts.Author,
		Email:   l.opts.Email,
		Year:    l.opts.Year,
	}
	if _, err := l.CopyTemplate(l.opts.License+".tmpl", "LICENSE", data); err != nil {
		return err
	}

	_, err := l.Config().Set("license", l.opts.License)
	return err
}
