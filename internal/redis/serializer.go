package redis

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	cacheerrors "curator-cache/internal/common/errors"
)

// Stored payloads are a tagged variant: plain JSON text, or a msgpack blob
// hex-encoded behind the binary prefix. The tag is written at serialize time
// so deserialization never has to guess between formats.
const binaryPrefix = "bin:"

// JSON carries numbers as float64, which represents integers exactly only up
// to 2^53. Values containing larger integers must take the binary path.
const maxExactJSONInt = int64(1) << 53

// serialize encodes value for storage. JSON is attempted first; values JSON
// cannot carry losslessly (NaN/Inf floats, complex numbers, integers beyond
// 2^53) fall back to msgpack encoded as hex. If both formats fail the
// value's string rendering is stored and a serialization error is returned
// alongside it so the caller can log the degraded-fidelity result.
func serialize(value interface{}) (string, error) {
	if jsonExact(reflect.ValueOf(value)) {
		if data, err := json.Marshal(value); err == nil {
			return string(data), nil
		}
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Sprint(value), cacheerrors.NewSerializationError("value not representable in any storage format", err)
	}
	return binaryPrefix + hex.EncodeToString(data), nil
}

// deserialize decodes a stored payload. Tagged binary payloads are
// hex-decoded and msgpack-unmarshaled; everything else is tried as JSON.
// A payload that decodes as neither is returned as the raw string unchanged.
func deserialize(raw string) interface{} {
	if strings.HasPrefix(raw, binaryPrefix) {
		if data, err := hex.DecodeString(strings.TrimPrefix(raw, binaryPrefix)); err == nil {
			var value interface{}
			if err := msgpack.Unmarshal(data, &value); err == nil {
				return value
			}
		}
		return raw
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

// jsonExact reports whether value survives a JSON round trip without
// precision loss: decoding coerces every number to float64, so any integer
// outside float64's exact range would come back corrupted.
func jsonExact(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return jsonExact(v.Elem())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		return n <= maxExactJSONInt && n >= -maxExactJSONInt

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() <= uint64(maxExactJSONInt)

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !jsonExact(iter.Value()) {
				return false
			}
		}
		return true

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !jsonExact(v.Index(i)) {
				return false
			}
		}
		return true

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() && !jsonExact(v.Field(i)) {
				return false
			}
		}
		return true

	default:
		return true
	}
}
