package module

import "curator/internal/platform/config"

// Options holds configuration settings for the catalog module
type Options struct {
	// Fixture is a yaml file seeded into the catalog on startup
	Fixture string
	// Migrate creates missing tables on sql backends
	Migrate bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CURATOR_")
	return Options{
		Fixture: cf.MayString("FIXTURE", ""),
		Migrate: cf.MayBool("MIGRATE", true),
	}
}
