package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-decorator/decorator"
	"github.com/goliatone/go-decorator/registry"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestContainerMapPresetFeedsApplier(t *testing.T) {
	c := newContainer(t).WithProvider(MapProvider(map[string]any{
		"decorators": map[string]any{
			"repeat": map[string]any{"count": 5, "text": "five"},
		},
	}))
	require.NoError(t, c.Load(context.Background()))

	target := &counter{}
	w, err := c.Apply("repeat", target)
	require.NoError(t, err)

	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, "five", out)
	assert.Equal(t, 5, target.calls)
}

func TestContainerFileFormats(t *testing.T) {
	files := map[string]string{
		"presets.json": `{"decorators": {"repeat": {"count": 2}}}`,
		"presets.yaml": "decorators:\n  repeat:\n    count: 2\n",
		"presets.toml": "[decorators.repeat]\ncount = 2\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			c := newContainer(t).WithProvider(FileProvider(writeFile(t, name, content)))
			if err := c.Load(context.Background()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			overrides, err := c.Overrides("repeat")
			if err != nil {
				t.Fatalf("Overrides failed: %v", err)
			}
			if overrides["count"] != 2 {
				t.Fatalf("expected count 2 as int, got %#v", overrides["count"])
			}
		})
	}
}

func TestContainerDefaultConfigPath(t *testing.T) {
	path := writeFile(t, "decorators.json", `{"decorators": {"repeat": {"count": 7}}}`)

	c := New(testRegistry(t)).WithConfigPath(path)
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, 7, overrides["count"])

	missing := New(testRegistry(t)).WithConfigPath(filepath.Join(t.TempDir(), "missing.json"))
	assert.NoError(t, missing.Load(context.Background()), "a missing default file is optional")
}

func TestContainerEnvCoercesStrings(t *testing.T) {
	t.Setenv("DECOTEST_REPEAT__COUNT", "4")
	t.Setenv("DECOTEST_REPEAT__TEXT", "from env")

	c := newContainer(t).WithProvider(EnvProvider("DECOTEST_", "__"))
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 4, "text": "from env"}, overrides)
}

func TestContainerProviderPriority(t *testing.T) {
	t.Setenv("DECOPRIO_REPEAT__COUNT", "9")
	path := writeFile(t, "p.json", `{"decorators": {"repeat": {"count": 2, "text": "file"}}}`)

	c := newContainer(t).WithProvider(
		EnvProvider("DECOPRIO_", "__"),
		FileProvider(path),
		PresetProvider("repeat", map[string]any{"text": "preset"}),
	)
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, 9, overrides["count"], "env loads after file")
	assert.Equal(t, "preset", overrides["text"], "preset loads after file")
}

func TestContainerFlags(t *testing.T) {
	reg := testRegistry(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("unrelated", "", "")
	require.NoError(t, RegisterFlags(fs, reg))

	require.NotNil(t, fs.Lookup("repeat.count"))
	require.NotNil(t, fs.Lookup("repeat.text"))
	assert.Contains(t, fs.Lookup("repeat.text").Usage, "returned label")

	require.NoError(t, fs.Parse([]string{"--repeat.count=6", "--unrelated=x"}))

	c := New(reg).WithConfigPath("").WithProvider(FlagsProvider(fs))
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 6}, overrides, "unset flags do not override defaults")
	assert.False(t, c.K.Exists("unrelated"))

	assert.Error(t, RegisterFlags(fs, reg), "flags are declared once")
}

func TestContainerStruct(t *testing.T) {
	type repeatPreset struct {
		Count int `koanf:"count"`
	}
	type presets struct {
		Decorators struct {
			Repeat repeatPreset `koanf:"repeat"`
		} `koanf:"decorators"`
	}

	var p presets
	p.Decorators.Repeat.Count = 8

	c := newContainer(t).WithProvider(StructProvider(p))
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, 8, overrides["count"])
}

func TestContainerSolvers(t *testing.T) {
	c := newContainer(t).WithSolverPasses(2).WithProvider(MapProvider(map[string]any{
		"base": map[string]any{"count": 2, "name": "base"},
		"decorators": map[string]any{
			"repeat": map[string]any{
				"count": "{{ base.count * 2 }}",
				"text":  "${base.name}-label",
			},
		},
	}))
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, 4, overrides["count"])
	assert.Equal(t, "base-label", overrides["text"])
}

func TestContainerValidation(t *testing.T) {
	tests := []struct {
		name    string
		presets map[string]any
		target  error
	}{
		{
			name:    "unknown decorator",
			presets: map[string]any{"missing": map[string]any{"x": 1}},
			target:  registry.ErrNotFound,
		},
		{
			name:    "unknown option",
			presets: map[string]any{"repeat": map[string]any{"times": 1}},
			target:  decorator.ErrUnknownOption,
		},
		{
			name:    "type mismatch",
			presets: map[string]any{"repeat": map[string]any{"count": "many"}},
			target:  decorator.ErrTypeMismatch,
		},
		{
			name:    "rule",
			presets: map[string]any{"repeat": map[string]any{"count": -1}},
			target:  decorator.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer(t).WithProvider(MapProvider(map[string]any{"decorators": tt.presets}))
			err := c.Load(context.Background())
			if err == nil {
				t.Fatalf("expected load to fail")
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			lenient := newContainer(t).WithStrictNames(false).
				WithProvider(MapProvider(map[string]any{"decorators": tt.presets}))
			if err := lenient.Load(context.Background()); err != nil {
				t.Fatalf("lenient load failed: %v", err)
			}
		})
	}
}

func TestContainerPassthroughPresets(t *testing.T) {
	c := newContainer(t).WithProvider(PresetProvider("tag", map[string]any{"team": "core"}))
	require.NoError(t, c.Load(context.Background()))

	w, err := c.Apply("tag", &counter{})
	require.NoError(t, err)
	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"team": "core"}, out)
	assert.Equal(t, []string{"tag"}, c.Presets())
}

func TestContainerNormalizesOptionNames(t *testing.T) {
	c := newContainer(t).WithProvider(PresetProvider("repeat", map[string]any{"COUNT": "3"}))
	require.NoError(t, c.Load(context.Background()))

	overrides, err := c.Overrides("repeat")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 3}, overrides)
}

func TestContainerRejectsDuplicateOptionKeys(t *testing.T) {
	c := newContainer(t).
		WithProvider(PresetProvider("repeat", map[string]any{"count": 1})).
		WithProvider(PresetProvider("repeat", map[string]any{"COUNT": "2"}))
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Overrides("repeat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, decorator.ErrNameConflict))

	_, err = c.Applier("repeat")
	assert.True(t, errors.Is(err, decorator.ErrNameConflict))
}

func TestContainerReloadStartsClean(t *testing.T) {
	values := map[string]any{"decorators": map[string]any{"repeat": map[string]any{"count": 1}}}
	c := newContainer(t).WithProvider(MapProvider(values))
	require.NoError(t, c.Load(context.Background()))

	delete(values["decorators"].(map[string]any), "repeat")
	require.NoError(t, c.Load(context.Background()))
	assert.Empty(t, c.Presets())
}

func TestContainerProviderErrors(t *testing.T) {
	c := newContainer(t).WithProvider(FlagsProvider(nil))
	assert.Error(t, c.Load(context.Background()))

	c = newContainer(t).WithProvider(StructProvider(nil))
	assert.Error(t, c.Load(context.Background()))

	c = newContainer(t).WithProvider(PresetProvider("", nil))
	assert.Error(t, c.Load(context.Background()))

	c = newContainer(t).WithProvider(FileProvider(writeFile(t, "bad.json", "{")))
	assert.Error(t, c.Load(context.Background()))
}

func TestContainerUnknownDecoratorLookup(t *testing.T) {
	c := newContainer(t)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Applier("missing")
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}
