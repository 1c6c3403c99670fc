package config

import (
	"fmt"

	"github.com/goliatone/go-decorator/decorator"
	"github.com/goliatone/go-decorator/option"
	"github.com/goliatone/go-decorator/registry"
	"github.com/goliatone/go-errors"
	"github.com/spf13/pflag"
)

const presetAnnotation = "decorator-preset"

// RegisterFlags declares one string flag per option of every registered
// decorator, named <decorator>.<option>, e.g. --repeat.count=5. Values are
// typed later by Container.Overrides.
func RegisterFlags(fs *pflag.FlagSet, reg *registry.Registry) error {
	if fs == nil || reg == nil {
		return errors.New("flagset and registry are required", errors.CategoryBadInput).
			WithTextCode("NIL_FLAGSET")
	}

	var err error
	reg.Each(func(name string, d *decorator.Decorator) {
		if err != nil {
			return
		}
		for _, desc := range d.Options().Descriptors() {
			flag := name + DefaultDelimiter + desc.External()
			if fs.Lookup(flag) != nil {
				err = errors.New("flag already defined", errors.CategoryValidation).
					WithTextCode("FLAG_CONFLICT").
					WithMetadata(map[string]any{"flag": flag})
				return
			}
			fs.String(flag, "", usage(desc))
			if annErr := fs.SetAnnotation(flag, presetAnnotation, []string{name}); annErr != nil {
				err = annErr
				return
			}
		}
	})
	return err
}

func usage(desc *option.Descriptor) string {
	def := "lazy"
	if !desc.IsLazy() {
		if v, err := desc.Default(); err == nil {
			def = fmt.Sprintf("%v", v)
		}
	}
	doc := desc.Doc()
	if doc == "" {
		doc = desc.Name()
	}
	return fmt.Sprintf("%s (%s, default %s)", doc, desc.Type(), def)
}

func isPresetFlag(f *pflag.Flag) bool {
	_, ok := f.Annotations[presetAnnotation]
	return ok
}
