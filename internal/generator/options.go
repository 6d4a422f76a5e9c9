package generator

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/mod/semver"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/user"
	"github.com/opmodel/scaffold/internal/version"
)

// DecodeOptions decodes the named options into v, a pointer to a struct
// tagged with `option:"name"`. Strings are converted to the field types.
func (b *Base) DecodeOptions(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "option",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return fmt.Errorf("creating options decoder: %w", err)
	}
	if err := dec.Decode(b.options); err != nil {
		return oerrors.NewValidationError(err.Error(), b.namespace, "options", "")
	}
	return nil
}

// User returns the git identity of the destination root.
func (b *Base) User() *user.Git {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.user == nil {
		b.user = user.NewGit(b.destinationRoot, nil)
	}
	return b.user
}

// SetUser replaces the git identity lookup.
func (b *Base) SetUser(g *user.Git) {
	b.mu.Lock()
	b.user = g
	b.mu.Unlock()
}

// CheckEnvironmentVersion fails when the environment, or the named
// generator package, is older than minimum. Unknown, unparsable and
// development versions pass.
func (b *Base) CheckEnvironmentVersion(pkg, minimum string) error {
	current, ok := b.env.Version(pkg)
	if !ok {
		return nil
	}

	have, want := version.Canonical(current), version.Canonical(minimum)
	if want == "" {
		return oerrors.NewConfigurationError(
			fmt.Sprintf("invalid minimum version %q", minimum), "version", "")
	}
	if have == "" || version.IsDevelopment(have) {
		b.log.Debug("skipping version check", "version", current, "minimum", minimum)
		return nil
	}

	if semver.Compare(have, want) < 0 {
		name := pkg
		if name == "" {
			name = "environment"
		}
		return oerrors.NewValidationError(
			fmt.Sprintf("%s %s is older than the required %s", name, current, minimum),
			b.namespace, "version", "Upgrade "+name)
	}
	return nil
}
