package generator

import (
	"github.com/opmodel/scaffold/internal/install"
)

// AddDependencies merges deps into the manifest's "dependencies".
func (b *Base) AddDependencies(deps map[string]string) error {
	return b.mergeManifest("dependencies", deps)
}

// AddDevDependencies merges deps into the manifest's "devDependencies".
func (b *Base) AddDevDependencies(deps map[string]string) error {
	return b.mergeManifest("devDependencies", deps)
}

func (b *Base) mergeManifest(key string, deps map[string]string) error {
	section := make(map[string]any, len(deps))
	for name, version := range deps {
		section[name] = version
	}
	_, err := b.PackageJSON().Merge(map[string]any{key: section})
	return err
}

// ScheduleInstall queues a package-manager run in the destination root. It
// reports false when installs are skipped or the same invocation is already
// scheduled.
func (b *Base) ScheduleInstall(manager string, args ...string) bool {
	if b.BoolOption(OptionSkipInstall) {
		b.log.Debug("install skipped", "manager", manager)
		return false
	}
	return b.env.Installer().Schedule(install.Request{
		Manager: manager,
		Args:    args,
		Dir:     b.DestinationRoot(),
	})
}
