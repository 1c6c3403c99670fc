package config

import (
	"context"
	goerrors "errors"
	"os"
	"syscall"

	"github.com/goliatone/go-decorator/koanf/providers/env"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ProviderBuilder creates a Provider once the container is configured.
type ProviderBuilder func(*Container) (Provider, error)

type ProviderType string

func (p ProviderType) String() string {
	return string(p)
}

const (
	ProviderTypeMap    ProviderType = "map"
	ProviderTypePreset ProviderType = "preset"
	ProviderTypeFile   ProviderType = "file"
	ProviderTypeEnv    ProviderType = "env"
	ProviderTypeFlag   ProviderType = "pflag"
	ProviderTypeStruct ProviderType = "struct"
)

var providerTypes = []ProviderType{
	ProviderTypeMap,
	ProviderTypePreset,
	ProviderTypeFile,
	ProviderTypeEnv,
	ProviderTypeFlag,
	ProviderTypeStruct,
}

func (p ProviderType) validate() error {
	for _, known := range providerTypes {
		if p == known {
			return nil
		}
	}
	valid := make([]string, 0, len(providerTypes))
	for _, known := range providerTypes {
		valid = append(valid, string(known))
	}
	return errors.New("invalid provider type", errors.CategoryValidation).
		WithTextCode("INVALID_PROVIDER_TYPE").
		WithMetadata(map[string]any{
			"provider_type": string(p),
			"valid_types":   valid,
		})
}

// Provider loads presets into the container's koanf instance. Providers
// load in ascending Priority, later ones win.
type Provider interface {
	Type() ProviderType
	Priority() int
	Validate() error
	Load(context.Context, *koanf.Koanf) error
}

// Loader is the Provider every builder in this package returns.
type Loader struct {
	order        int
	providerType ProviderType
	load         func(context.Context, *koanf.Koanf) error
}

func (l *Loader) Priority() int      { return l.order }
func (l *Loader) Type() ProviderType { return l.providerType }
func (l *Loader) Validate() error    { return l.providerType.validate() }

func (l *Loader) Load(ctx context.Context, k *koanf.Koanf) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.load(ctx, k)
}

type Priority int

// WithOffset shifts a priority, e.g. PriorityFile.WithOffset(5) loads a
// local override file after the shared one.
func (p Priority) WithOffset(offset int) Priority {
	return Priority(int(p) + offset)
}

var (
	PriorityMap    Priority = 0
	PriorityStruct Priority = 10
	PriorityFile   Priority = 20
	PriorityPreset Priority = 25
	PriorityEnv    Priority = 30
	PriorityFlags  Priority = 40
)

// MapProvider loads values as-is. Presets go under the container root,
// other keys are free for ${...} references.
func MapProvider(values map[string]any, order ...int) ProviderBuilder {
	return func(c *Container) (Provider, error) {
		return &Loader{
			providerType: ProviderTypeMap,
			order:        getOrder(PriorityMap, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				if err := k.Load(confmap.Provider(values, c.delimiter), nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load map values").
						WithTextCode("MAP_LOAD_FAILED").
						WithMetadata(map[string]any{"values_count": len(values)})
				}
				return nil
			},
		}, nil
	}
}

// PresetProvider loads overrides for a single decorator.
func PresetProvider(decorator string, overrides map[string]any, order ...int) ProviderBuilder {
	return func(c *Container) (Provider, error) {
		if decorator == "" {
			return &Loader{}, errors.New("preset decorator name cannot be empty", errors.CategoryBadInput).
				WithTextCode("EMPTY_PRESET_NAME")
		}
		return &Loader{
			providerType: ProviderTypePreset,
			order:        getOrder(PriorityPreset, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				values := map[string]any{c.root: map[string]any{decorator: overrides}}
				if err := k.Load(confmap.Provider(values, c.delimiter), nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load preset").
						WithTextCode("PRESET_LOAD_FAILED").
						WithMetadata(map[string]any{"decorator": decorator})
				}
				return nil
			},
		}, nil
	}
}

// FileProvider loads a JSON, YAML or TOML file, format picked by extension.
func FileProvider(path string, order ...int) ProviderBuilder {
	filetype := FileTypeOf(path)

	return func(c *Container) (Provider, error) {
		parser, err := filetype.Parser()
		if err != nil {
			return &Loader{}, err
		}
		kprovider := file.Provider(path)

		return &Loader{
			providerType: ProviderTypeFile,
			order:        getOrder(PriorityFile, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				c.logger.Debug("file provider: %s", path)
				if err := k.Load(kprovider, parser); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load presets from file").
						WithTextCode("FILE_LOAD_FAILED").
						WithMetadata(map[string]any{
							"filepath":  path,
							"file_type": string(filetype),
						})
				}
				return nil
			},
		}, nil
	}
}

// EnvProvider reads presets from variables such as DECO_REPEAT__COUNT=5.
// Keys land under the container root.
func EnvProvider(prefix, delim string, order ...int) ProviderBuilder {
	return func(c *Container) (Provider, error) {
		return &Loader{
			providerType: ProviderTypeEnv,
			order:        getOrder(PriorityEnv, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				// keys are sjson paths, always dot separated
				kprov := env.Provider(prefix, delim, env.WithTransform(func(key, value string) (string, any) {
					return c.root + "." + key, value
				}))
				kprov.SetLogger(c.logger)

				c.logger.Debug("env provider: %s*", prefix)
				if err := k.Load(kprov, json.Parser()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load environment variables").
						WithTextCode("ENV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"prefix":    prefix,
							"delimiter": delim,
						})
				}
				return nil
			},
		}, nil
	}
}

// FlagsProvider loads the preset flags declared by RegisterFlags that were
// set on the command line. Other flags in flagset are ignored.
func FlagsProvider(flagset *pflag.FlagSet, order ...int) ProviderBuilder {
	return func(c *Container) (Provider, error) {
		if flagset == nil {
			return &Loader{}, errors.New("flagset cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_FLAGSET")
		}

		return &Loader{
			providerType: ProviderTypeFlag,
			order:        getOrder(PriorityFlags, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				c.logger.Debug("flags provider")
				prv := posflag.ProviderWithFlag(flagset, c.delimiter, k, func(f *pflag.Flag) (string, any) {
					if !f.Changed || !isPresetFlag(f) {
						return "", nil
					}
					return c.root + c.delimiter + f.Name, f.Value.String()
				})
				if err := k.Load(prv, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load presets from flags").
						WithTextCode("FLAGS_LOAD_FAILED").
						WithMetadata(map[string]any{"delimiter": c.delimiter})
				}
				return nil
			},
		}, nil
	}
}

// StructProvider loads a struct tagged with koanf.
func StructProvider(v any, order ...int) ProviderBuilder {
	return func(c *Container) (Provider, error) {
		if v == nil {
			return &Loader{}, errors.New("struct cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_STRUCT")
		}
		kprv := structs.Provider(v, "koanf")

		return &Loader{
			providerType: ProviderTypeStruct,
			order:        getOrder(PriorityStruct, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				c.logger.Debug("struct provider: %T", v)
				if err := k.Load(kprv, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load presets from struct").
						WithTextCode("STRUCT_LOAD_FAILED")
				}
				return nil
			},
		}, nil
	}
}

type ErrorFilter func(err error) bool

// DefaultErrorFilter ignores missing files, or only allowedErrors when given.
func DefaultErrorFilter(allowedErrors ...error) ErrorFilter {
	return func(err error) bool {
		if err == nil {
			return false
		}
		if len(allowedErrors) == 0 {
			return os.IsNotExist(err) || goerrors.Is(err, syscall.ENOENT) || goerrors.Is(err, os.ErrNotExist)
		}
		for _, allowed := range allowedErrors {
			if goerrors.Is(err, allowed) {
				return true
			}
		}
		return false
	}
}

// OptionalProvider ignores the load errors accepted by filter, by default a
// missing file.
func OptionalProvider(f ProviderBuilder, filter ...ErrorFilter) ProviderBuilder {
	ignore := DefaultErrorFilter()
	if len(filter) > 0 && filter[0] != nil {
		ignore = filter[0]
	}

	return func(c *Container) (Provider, error) {
		base, err := f(c)
		if err != nil {
			return &Loader{}, err
		}
		return &Loader{
			providerType: base.Type(),
			order:        base.Priority(),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				if err := base.Load(ctx, k); err != nil && !ignore(err) {
					return err
				}
				return nil
			},
		}, nil
	}
}

func getOrder(defaultOrder Priority, orders ...int) int {
	if len(orders) > 0 {
		return orders[0]
	}
	return int(defaultOrder)
}
