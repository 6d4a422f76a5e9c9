package generators

import (
	"context"
	"path/filepath"
	"time"

	"github.com/opmodel/scaffold/internal/generator"
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/priority"
	"github.com/opmodel/scaffold/internal/prompt"
	"github.com/opmodel/scaffold/internal/templates"
	"github.com/opmodel/scaffold/internal/version"
)

// NoLicense skips the license generator.
const NoLicense = "none"

// defaultGoVersion is written to go.mod when no toolchain is detected.
const defaultGoVersion = "1.25"

// AppOptions are the named options of the app generator.
type AppOptions struct {
	Module    string `option:"module"`
	GoVersion string `option:"go-version"`
	Author    string `option:"author"`
	Email     string `option:"email"`
}

// App scaffolds a Go module: go.mod, a main package with a test and a
// README. It composes license and gitignore.
type App struct {
	*generator.Base

	opts AppOptions
	data templates.TemplateData
}

// NewApp creates the app generator. The first argument, when given, is the
// default project name.
func NewApp(opts generator.Options) (generator.Generator, error) {
	base, err := generator.New(opts, generator.Features{})
	if err != nil {
		return nil, err
	}

	a := &App{Base: base}
	if err := a.DecodeOptions(&a.opts); err != nil {
		return nil, err
	}

	a.Define(priority.Initializing, a.initializing)
	a.Define(priority.Prompting, a.prompting)
	a.Define(priority.Configuring, a.configuring)
	a.Define(priority.Writing, a.writing)
	a.Define(priority.Install, a.install)
	a.Define(priority.End, a.end)
	return a, nil
}

func (a *App) initializing(ctx context.Context) error {
	if err := a.CheckEnvironmentVersion("", "0.1.0"); err != nil {
		return err
	}

	if a.opts.GoVersion == "" {
		tc := version.DetectToolchain(ctx)
		a.opts.GoVersion = version.LanguageVersion(tc.Version)
		if !tc.Compatible {
			a.Log().Debug("go toolchain", "info", tc.Message)
		}
	}
	if a.opts.GoVersion == "" {
		a.opts.GoVersion = defaultGoVersion
	}
	return nil
}

func (a *App) prompting(ctx context.Context) error {
	defaultName := filepath.Base(a.DestinationRoot())
	if args := a.Args(); len(args) > 0 {
		defaultName = args[0]
	}

	answers, err := a.Prompt(ctx,
		prompt.Question{
			Name:    "name",
			Type:    prompt.TypeInput,
			Message: "Project name",
			Default: defaultName,
			Validate: func(v any) error {
				s, _ := v.(string)
				return templates.ValidateProjectName(s)
			},
		},
		prompt.Question{
			Name:    "description",
			Type:    prompt.TypeInput,
			Message: "Description",
		},
		prompt.Question{
			Name:    "license",
			Type:    prompt.TypeList,
			Message: "License",
			Choices: prompt.Choices("MIT", "ISC", "Unlicense", NoLicense),
			Default: 0,
			Store:   true,
		},
	)
	if err != nil {
		return err
	}

	name, _ := answers["name"].(string)
	description, _ := answers["description"].(string)
	license, _ := answers["license"].(string)

	a.data = templates.TemplateData{
		Name:        name,
		NamePascal:  templates.PascalCase(name),
		PackageName: templates.SanitizeName(name),
		ModulePath:  a.opts.Module,
		Description: description,
		License:     license,
		Author:      a.opts.Author,
		Email:       a.opts.Email,
		Year:        time.Now().Year(),
		GoVersion:   a.opts.GoVersion,
	}
	if a.data.ModulePath == "" {
		a.data.ModulePath = templates.DeriveModulePath(name)
	}
	if a.data.License == NoLicense {
		a.data.License = ""
	}
	return nil
}

func (a *App) configuring(ctx context.Context) error {
	if _, err := a.Config().SetAll(map[string]any{
		"name":   a.data.Name,
		"module": a.data.ModulePath,
	}); err != nil {
		return err
	}

	if a.data.License != "" {
		options := map[string]any{"license": a.data.License}
		if a.opts.Author != "" {
			options["author"] = a.opts.Author
		}
		if a.opts.Email != "" {
			options["email"] = a.opts.Email
		}
		if _, err := a.ComposeWith(ctx, LicenseNamespace, generator.ComposeOptions{Options: options}); err != nil {
			return err
		}
	}

	_, err := a.ComposeWith(ctx, GitignoreNamespace, generator.ComposeOptions{})
	return err
}

func (a *App) writing(context.Context) error {
	_, err := a.CopyTemplate(".", ".", a.data)
	return err
}

func (a *App) install(context.Context) error {
	a.ScheduleInstall("go", "mod", "tidy")
	return nil
}

func (a *App) end(context.Context) error {
	output.Println(output.FormatCheckmark("Created " + output.FormatNamespace(a.data.ModulePath)))
	return nil
}
