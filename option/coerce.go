package option

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Convert decodes value into a new value of type to using weak typing, so
// strings from flags or environment variables can feed typed options.
func Convert(value any, to reflect.Type) (any, error) {
	if to == nil || to == Any {
		return value, nil
	}
	if value == nil {
		return reflect.Zero(to).Interface(), nil
	}
	if reflect.TypeOf(value) == to {
		return value, nil
	}

	out := reflect.New(to)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(value); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}
