package bind

import (
	"github.com/go-viper/mapstructure/v2"
)

// Option tweaks Build before decoding.
type Option[T any] func(*builder[T])

// Validator runs after decoding completes.
type Validator[T any] func(*T) error

// Validable is implemented by argument structs that check themselves.
type Validable interface {
	Validate() error
}

// WithDefaults seeds the result with a deep copy of prototype. Only exported
// fields survive the copy.
func WithDefaults[T any](prototype T) Option[T] {
	return func(b *builder[T]) {
		b.prototype = &prototype
	}
}

// WithDecoder lets callers mutate the underlying mapstructure DecoderConfig.
func WithDecoder[T any](fn func(*mapstructure.DecoderConfig)) Option[T] {
	return func(b *builder[T]) {
		if fn == nil {
			return
		}
		fn(&b.decoderConfig)
	}
}

// WithDecodeHooks appends custom decode hooks.
func WithDecodeHooks[T any](hooks ...mapstructure.DecodeHookFunc) Option[T] {
	return func(b *builder[T]) {
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			b.decodeHooks = append(b.decodeHooks, hook)
		}
	}
}

// WithoutDefaultHooks disables DefaultDecodeHooks.
func WithoutDefaultHooks[T any]() Option[T] {
	return func(b *builder[T]) {
		b.useHookSet = false
	}
}

// WithStrictKeys fails the decode when a value has no matching field.
func WithStrictKeys[T any]() Option[T] {
	return func(b *builder[T]) {
		b.decoderConfig.ErrorUnused = true
	}
}

// WithWeakTyping toggles WeaklyTypedInput.
func WithWeakTyping[T any](enabled bool) Option[T] {
	return func(b *builder[T]) {
		b.decoderConfig.WeaklyTypedInput = enabled
	}
}

// WithTagName overrides the struct tag read while decoding.
func WithTagName[T any](tag string) Option[T] {
	return func(b *builder[T]) {
		if tag == "" {
			return
		}
		b.decoderConfig.TagName = tag
	}
}

// WithValidator registers the validator invoked after decoding. Only one is allowed.
func WithValidator[T any](validator Validator[T]) Option[T] {
	return func(b *builder[T]) {
		if validator == nil {
			return
		}
		if b.validator != nil {
			b.setOptionError("validator already registered")
			return
		}
		b.validator = validator
	}
}

// WithSelfValidation calls Validate on the decoded value when T (or *T)
// implements Validable.
func WithSelfValidation[T any]() Option[T] {
	return WithValidator(func(v *T) error {
		if validable, ok := any(v).(Validable); ok {
			return validable.Validate()
		}
		if validable, ok := any(*v).(Validable); ok {
			return validable.Validate()
		}
		return nil
	})
}
