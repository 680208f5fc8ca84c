package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// defaultKeySerializer builds deterministic keys from a method name plus the
// normalized parameter values the stores pass in (ids, query structs, pointers
// to coordinates). Determinism matters: the same logical request must map to
// the same key across calls so TTL freshness and in-flight coalescing work.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from the method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.encode(reflect.ValueOf(arg)))
	}
	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) encode(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}

	// Times are common in query structs and must not fall through to the
	// struct branch, where monotonic clock bits would break determinism.
	if t, ok := rv.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.encode(rv.Elem())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return s.encodeSeq("slice", rv)

	case reflect.Array:
		return s.encodeSeq("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.encodeMap(rv)

	case reflect.Struct:
		return s.encodeStruct(rv)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", rv.Interface())

	default:
		return s.jsonFallback(rv.Interface())
	}
}

func (s *defaultKeySerializer) encodeSeq(label string, rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.encode(rv.Index(i))
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, rv.Len(), strings.Join(parts, ","))
}

// encodeMap sorts pairs by encoded key so iteration order never leaks into the
// cache key.
func (s *defaultKeySerializer) encodeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.encode(iter.Key())+"="+s.encode(iter.Value()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s *defaultKeySerializer) encodeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+s.encode(rv.Field(i)))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}
