package generator

import (
	"github.com/opmodel/scaffold/internal/output"
	"github.com/opmodel/scaffold/internal/storage"
)

// Well-known file names under the destination root.
const (
	ConfigFile      = ".scaffold-rc.json"
	PackageJSONFile = "package.json"
)

// Config is the generator's slice of the project configuration file, keyed
// by the root of its namespace. The file is always overwritten on commit.
func (b *Base) Config() *storage.Storage {
	if b.config == nil {
		path := b.DestinationPath(ConfigFile)
		b.config = b.openStorage(path, storage.Options{Name: b.rootName()})
		b.env.FS().AlwaysOverwrite(path)
	}
	return b.config
}

// PackageJSON is the whole package manifest under the destination root.
func (b *Base) PackageJSON() *storage.Storage {
	if b.packageJSON == nil {
		b.packageJSON = b.openStorage(b.DestinationPath(PackageJSONFile), storage.Options{})
	}
	return b.packageJSON
}

// InstanceConfig is the slice of the project configuration owned by this
// instance, keyed by its identity.
func (b *Base) InstanceConfig() *storage.Storage {
	if b.instanceConfig == nil {
		b.instanceConfig = b.openStorage(b.DestinationPath(ConfigFile), storage.Options{Name: b.Identity()})
	}
	return b.instanceConfig
}

// GlobalConfig is the per-user store remembered prompt answers live in.
func (b *Base) GlobalConfig() *storage.Storage {
	if b.globalConfig == nil {
		b.globalConfig = b.openStorage(b.env.GlobalConfigPath(), storage.Options{Name: b.rootName()})
	}
	return b.globalConfig
}

// openStorage falls back to the project configuration file when path is
// empty, the only way storage.New can fail here.
func (b *Base) openStorage(path string, opts storage.Options) *storage.Storage {
	s, err := storage.New(b.env.FS(), path, opts)
	if err != nil {
		output.Warn("opening storage", "path", path, "err", err)
		opts.DisableCache = true
		s, _ = storage.New(b.env.FS(), b.DestinationPath(ConfigFile), opts)
	}
	return s
}
