// Package config holds the interpolation settings shared by the library
// packages and the jsoi command.
//
// Settings come from Default, then an optional file (TOML, YAML or JSON by
// extension), then JSOI_ environment variables:
//
//	cfg, err := config.Load("jsoi.toml")
//	cfg.LoadFromEnv()
//	if err := cfg.Validate(); err != nil { ... }
//	res, err := tree.Interpolate(ctx, root, values, cfg.TreeOptions()...)
//
// Every loader funnels through FromMap, so durations may be written as
// strings such as "5s" in any format.
package config
