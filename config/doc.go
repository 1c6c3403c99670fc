// Package config loads decorator option presets from maps, files,
// environment variables, command line flags and structs, and turns them
// into curried appliers.
//
//	reg := registry.New()
//	reg.Add(repeat)
//
//	presets := config.New(reg).WithProvider(
//		config.OptionalProvider(config.FileProvider("decorators.yaml")),
//		config.EnvProvider(config.DefaultEnvPrefix, config.DefaultEnvDelimiter),
//	)
//	if err := presets.Load(ctx); err != nil {
//		return err
//	}
//	w, err := presets.Apply("repeat", target)
package config
