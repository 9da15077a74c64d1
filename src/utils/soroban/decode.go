package soroban

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Decodes a native contract value (see ToNative) into a struct with mapstructure tags.
// Unit enum variants are flattened into their names.
func Decode(native any, out any) (err error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			enumHook,
			bigIntHook,
		),
	})
	if err != nil {
		return
	}
	return decoder.Decode(native)
}

func enumHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	variant, ok := data.([]any)
	if !ok || len(variant) == 0 {
		return data, nil
	}
	name, ok := variant[0].(string)
	if !ok {
		return data, nil
	}
	return name, nil
}

func bigIntHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	b, ok := data.(*big.Int)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int64, reflect.Int:
		if !b.IsInt64() {
			return nil, fmt.Errorf("value %s overflows int64", b.String())
		}
		return b.Int64(), nil
	case reflect.Uint64, reflect.Uint:
		if !b.IsUint64() {
			return nil, fmt.Errorf("value %s overflows uint64", b.String())
		}
		return b.Uint64(), nil
	case reflect.String:
		return b.String(), nil
	}
	return data, nil
}
