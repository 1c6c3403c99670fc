package config

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-decorator/decorator"
	"github.com/goliatone/go-decorator/koanf/solvers"
	"github.com/goliatone/go-decorator/logger"
	"github.com/goliatone/go-decorator/option"
	"github.com/goliatone/go-decorator/registry"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
)

var (
	DefaultDelimiter      = "."
	DefaultRoot           = "decorators"
	DefaultConfigFilepath = "config/decorators.json"
	DefaultLoadTimeout    = 30 * time.Second
	DefaultEnvPrefix      = "DECO_"
	DefaultEnvDelimiter   = "__"
)

// Container loads option presets for the decorators of a registry. Presets
// live under the root key, one map per decorator:
//
//	{"decorators": {"repeat": {"count": 5}}}
//
// A loaded container hands out curried appliers carrying those presets.
type Container struct {
	K            *koanf.Koanf
	registry     *registry.Registry
	providers    []Provider
	loaders      []ProviderBuilder
	solvers      []solvers.Solver
	solverPasses int
	strictMerge  bool
	strictNames  bool
	loadTimeout  time.Duration
	delimiter    string
	root         string
	configPath   string
	logger       logger.Logger
}

func New(reg *registry.Registry) *Container {
	c := &Container{
		registry:     reg,
		strictNames:  true,
		delimiter:    DefaultDelimiter,
		root:         DefaultRoot,
		loadTimeout:  DefaultLoadTimeout,
		configPath:   DefaultConfigFilepath,
		logger:       logger.NewDefaultLogger("config"),
		solverPasses: 1,
		solvers: []solvers.Solver{
			solvers.NewVariablesSolver("${", "}"),
			solvers.NewURISolver("@", "://", nil),
			solvers.NewExpressionSolver("{{", "}}"),
		},
	}
	c.newConfig()
	return c
}

// WithStrictMerge rejects providers that disagree on the type of a key.
func (c *Container) WithStrictMerge() *Container {
	c.strictMerge = true
	return c
}

// WithStrictNames makes Load fail on presets naming an unknown decorator or
// option. On by default.
func (c *Container) WithStrictNames(enabled bool) *Container {
	c.strictNames = enabled
	return c
}

func (c *Container) WithTimeout(timeout time.Duration) *Container {
	c.loadTimeout = timeout
	return c
}

// WithConfigPath sets the file loaded when no provider is configured. An
// empty path disables it.
func (c *Container) WithConfigPath(p string) *Container {
	c.configPath = p
	return c
}

// WithRoot moves presets under another key.
func (c *Container) WithRoot(root string) *Container {
	if root != "" {
		c.root = root
	}
	return c
}

func (c *Container) WithSolver(slvrs ...solvers.Solver) *Container {
	c.solvers = append(c.solvers, slvrs...)
	return c
}

// WithSolvers replaces the solver list, allowing explicit ordering.
func (c *Container) WithSolvers(slvrs ...solvers.Solver) *Container {
	c.solvers = append([]solvers.Solver{}, slvrs...)
	return c
}

// WithSolverPasses sets the maximum number of solver passes (minimum 1).
func (c *Container) WithSolverPasses(passes int) *Container {
	if passes < 1 {
		passes = 1
	}
	c.solverPasses = passes
	return c
}

func (c *Container) WithLogger(l logger.Logger) *Container {
	if l != nil {
		c.logger = l
	}
	return c
}

func (c *Container) WithProvider(factories ...ProviderBuilder) *Container {
	for _, factory := range factories {
		if factory != nil {
			c.loaders = append(c.loaders, factory)
		}
	}
	return c
}

func (c *Container) Registry() *registry.Registry { return c.registry }
func (c *Container) Root() string                 { return c.root }

func (c *Container) newConfig() {
	c.K = koanf.NewWithConf(koanf.Conf{
		Delim:       c.delimiter,
		StrictMerge: c.strictMerge,
	})
}

func (c *Container) MustLoad(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		panic(fmt.Sprintf("failed to load decorator presets: %v", err))
	}
}

// Load reads every provider, runs the solvers and, with strict names,
// validates the presets against the registry. Each call starts from an
// empty state.
func (c *Container) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	c.newConfig()

	c.providers = nil
	for i, factory := range c.loaders {
		provider, err := factory(c)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create provider").
				WithTextCode("PROVIDER_CREATION_FAILED").
				WithMetadata(map[string]any{
					"factory_index":   i,
					"total_factories": len(c.loaders),
				})
		}
		c.providers = append(c.providers, provider)
	}

	if len(c.providers) == 0 && c.configPath != "" {
		c.logger.Debug("no providers specified, loading %s", c.configPath)
		p, err := OptionalProvider(FileProvider(c.configPath))(c)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create default file provider").
				WithTextCode("DEFAULT_PROVIDER_FAILED").
				WithMetadata(map[string]any{"config_path": c.configPath})
		}
		c.providers = append(c.providers, p)
	}

	for i, src := range c.providers {
		if err := src.Validate(); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid provider source type").
				WithTextCode("INVALID_PROVIDER_TYPE").
				WithMetadata(map[string]any{
					"source_type":    string(src.Type()),
					"provider_index": i,
				})
		}
	}

	sort.SliceStable(c.providers, func(i, j int) bool {
		return c.providers[i].Priority() < c.providers[j].Priority()
	})

	for i, source := range c.providers {
		c.logger.Debug("loading source %s", source.Type())
		if err := source.Load(ctx, c.K); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to load presets from source").
				WithTextCode("PRESET_LOAD_FAILED").
				WithMetadata(map[string]any{
					"source_type":   string(source.Type()),
					"source_index":  i,
					"total_sources": len(c.providers),
				})
		}
	}

	if err := c.solve(); err != nil {
		return err
	}

	if c.strictNames {
		return c.Validate()
	}
	return nil
}

func (c *Container) solve() error {
	for pass := 0; pass < c.solverPasses; pass++ {
		before, ok := snapshot(c.K)
		changed := 0
		for _, solver := range c.solvers {
			n, err := solver.Solve(c.K)
			if err != nil {
				return errors.Wrap(err, errors.CategoryOperation, "failed to solve preset values").
					WithTextCode("PRESET_SOLVE_FAILED").
					WithMetadata(map[string]any{"pass": pass})
			}
			changed += n
		}
		if changed == 0 || (ok && reflect.DeepEqual(before, c.K.Raw())) {
			break
		}
	}
	return nil
}

func snapshot(k *koanf.Koanf) (any, bool) {
	cloned, err := copystructure.Copy(k.Raw())
	if err != nil {
		return nil, false
	}
	return cloned, true
}

// Presets returns the names of the decorators with a preset, sorted.
func (c *Container) Presets() []string {
	names := c.K.MapKeys(c.root)
	sort.Strings(names)
	return names
}

// Overrides returns the preset of the named decorator keyed by option
// external name. Values are converted to the option type when they are not
// already of it, so strings from env and flags feed typed options. Preset
// keys match option names case insensitively, with - and _ equivalent; two
// keys naming the same option are a conflict.
func (c *Container) Overrides(name string) (map[string]any, error) {
	d, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}

	raw := c.K.Cut(c.root + c.delimiter + name).Raw()
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(raw))
	sources := make(map[string]string, len(raw))
	for _, key := range keys {
		value := raw[key]
		desc, ok := lookupOption(d, key)
		if !ok {
			if d.Passthrough() {
				out[key] = value
				continue
			}
			return nil, errors.Wrap(decorator.ErrUnknownOption, errors.CategoryValidation, "preset names an unknown option").
				WithTextCode("PRESET_UNKNOWN_OPTION").
				WithMetadata(map[string]any{
					"decorator": name,
					"option":    key,
					"known":     d.Options().Names(),
				})
		}
		if prev, seen := sources[desc.External()]; seen {
			return nil, errors.Wrap(decorator.ErrNameConflict, errors.CategoryValidation, "preset sets an option twice").
				WithTextCode("PRESET_OPTION_CONFLICT").
				WithMetadata(map[string]any{
					"decorator": name,
					"option":    desc.External(),
					"keys":      []string{prev, key},
				})
		}
		sources[desc.External()] = key
		out[desc.External()] = convert(desc, value)
	}
	return out, nil
}

// Applier returns the named decorator curried with its preset.
func (c *Container) Applier(name string) (*decorator.Applier, error) {
	overrides, err := c.Overrides(name)
	if err != nil {
		return nil, err
	}
	d, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return d.With(overrides), nil
}

// Apply decorates target with the named decorator and its preset.
func (c *Container) Apply(name string, target decorator.Target) (*decorator.Wrapper, error) {
	a, err := c.Applier(name)
	if err != nil {
		return nil, err
	}
	return a.Apply(target)
}

// Validate checks that every preset names a registered decorator and that
// its values pass the option checks.
func (c *Container) Validate() error {
	for _, name := range c.Presets() {
		if !c.registry.Has(name) {
			return errors.Wrap(registry.ErrNotFound, errors.CategoryValidation, "preset names an unknown decorator").
				WithTextCode("PRESET_UNKNOWN_DECORATOR").
				WithMetadata(map[string]any{
					"decorator": name,
					"available": c.registry.Names(),
				})
		}
		a, err := c.Applier(name)
		if err != nil {
			return err
		}
		if err := a.Check(); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid preset").
				WithTextCode("PRESET_INVALID").
				WithMetadata(map[string]any{"decorator": name})
		}
	}
	return nil
}

func lookupOption(d *decorator.Decorator, key string) (*option.Descriptor, bool) {
	if desc, ok := d.Options().Lookup(key); ok {
		return desc, true
	}
	want := normalizeName(key)
	for _, desc := range d.Options().Descriptors() {
		if normalizeName(desc.External()) == want {
			return desc, true
		}
	}
	return nil, false
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

func convert(desc *option.Descriptor, value any) any {
	if value == nil || option.SameType(reflect.TypeOf(value), desc.Type()) {
		return value
	}
	converted, err := option.Convert(value, desc.Type())
	if err != nil {
		return value
	}
	return converted
}
