package docstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"reflect"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

func init() {
	// Types held in interface values must be known to gob by name on the
	// reading side too, so the usual document containers are registered up
	// front. Scalars and slices of scalars are registered by gob itself.
	for _, v := range []any{
		map[string]any{},
		Fields{},
		[]any{},
		[]map[string]any{},
		map[string]string{},
		map[string]int{},
		map[string]int64{},
		map[string]float64{},
		map[string]bool{},
		map[string][]string{},
		[]map[string]string{},
		emptySlice{},
	} {
		gob.Register(v)
	}
}

// emptySlice stands in for a non-nil empty slice, which gob would otherwise
// decode as nil. Sample is a one element slice of the original type.
type emptySlice struct {
	Sample any
}

var registered sync.Map

// register makes t decodable when it is found inside an interface value.
// Types first seen here are only known to the current process; a fresh
// process reading them back must have encoded or registered them first.
func register(t reflect.Type) (err error) {
	if _, ok := registered.Load(t); ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Newf(apperrors.ErrInvalidInput, "field type %s: %v", t, r)
		}
	}()
	gob.Register(reflect.Zero(t).Interface())
	registered.Store(t, struct{}{})
	return nil
}

// EncodeFields serializes fields for key-value backends. gob keeps Go types
// intact, so an int stored is an int read back and a map[string]int stays a
// map[string]int. An empty slice held directly in a field or in a []any or
// map[string]any stays empty rather than coming back nil.
func EncodeFields(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	v, err := rewrite(reflect.ValueOf(map[string]any(fields)), encodeHook)
	if err != nil {
		return nil, fmt.Errorf("encoding document fields: %w", err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v.Interface()); err != nil {
		return nil, fmt.Errorf("encoding document fields: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeFields(data []byte) (Fields, error) {
	var m map[string]any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding document fields: %w", err)
	}
	if m == nil {
		return Fields{}, nil
	}
	v, err := rewrite(reflect.ValueOf(m), decodeHook)
	if err != nil {
		return nil, fmt.Errorf("decoding document fields: %w", err)
	}
	return Fields(v.Interface().(map[string]any)), nil
}

func encodeHook(elem reflect.Value) (reflect.Value, bool, error) {
	if err := register(elem.Type()); err != nil {
		return elem, false, err
	}
	if elem.Kind() == reflect.Slice && !elem.IsNil() && elem.Len() == 0 {
		sample := reflect.MakeSlice(elem.Type(), 1, 1)
		if et := elem.Type().Elem(); et.Kind() == reflect.Pointer {
			// gob refuses nil pointers inside slices.
			sample.Index(0).Set(reflect.New(et.Elem()))
		}
		return reflect.ValueOf(emptySlice{Sample: sample.Interface()}), true, nil
	}
	return elem, false, nil
}

func decodeHook(elem reflect.Value) (reflect.Value, bool, error) {
	m, ok := elem.Interface().(emptySlice)
	if !ok {
		return elem, false, nil
	}
	s := reflect.ValueOf(m.Sample)
	if s.Kind() != reflect.Slice {
		return elem, false, fmt.Errorf("empty slice marker holds %T", m.Sample)
	}
	return s.Slice(0, 0), true, nil
}

// hook inspects a value held in an interface. When handled is false the
// value is walked further.
type hook func(elem reflect.Value) (repl reflect.Value, handled bool, err error)

// rewrite returns a copy of v in which every value held in an interface has
// passed through fn. Containers without interfaces are returned as is.
func rewrite(v reflect.Value, fn hook) (reflect.Value, error) {
	if !v.IsValid() || !holdsInterface(v.Type()) {
		return v, nil
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v, nil
		}
		elem := v.Elem()
		repl, handled, err := fn(elem)
		if err != nil {
			return v, err
		}
		if !handled || !repl.Type().AssignableTo(v.Type()) {
			if repl, err = rewrite(elem, fn); err != nil {
				return v, err
			}
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(repl)
		return out, nil

	case reflect.Map:
		if v.IsNil() {
			return v, nil
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k, err := rewrite(iter.Key(), fn)
			if err != nil {
				return v, err
			}
			e, err := rewrite(iter.Value(), fn)
			if err != nil {
				return v, err
			}
			out.SetMapIndex(k, e)
		}
		return out, nil

	case reflect.Slice, reflect.Array:
		var out reflect.Value
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return v, nil
			}
			out = reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		} else {
			out = reflect.New(v.Type()).Elem()
		}
		for i := 0; i < v.Len(); i++ {
			e, err := rewrite(v.Index(i), fn)
			if err != nil {
				return v, err
			}
			out.Index(i).Set(e)
		}
		return out, nil

	case reflect.Pointer:
		if v.IsNil() {
			return v, nil
		}
		e, err := rewrite(v.Elem(), fn)
		if err != nil {
			return v, err
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(e)
		return out, nil

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			e, err := rewrite(v.Field(i), fn)
			if err != nil {
				return v, err
			}
			out.Field(i).Set(e)
		}
		return out, nil
	}
	return v, nil
}

var interfaceTypes sync.Map

// holdsInterface reports whether a value of t can contain an interface value
// anywhere gob would encode it.
func holdsInterface(t reflect.Type) bool {
	if v, ok := interfaceTypes.Load(t); ok {
		return v.(bool)
	}
	r := typeHoldsInterface(t, make(map[reflect.Type]bool))
	interfaceTypes.Store(t, r)
	return r
}

func typeHoldsInterface(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Map:
		return typeHoldsInterface(t.Key(), seen) || typeHoldsInterface(t.Elem(), seen)
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return typeHoldsInterface(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.IsExported() && typeHoldsInterface(f.Type, seen) {
				return true
			}
		}
	}
	return false
}

// Key returns the big-endian encoding of id, which sorts in ID order.
func Key(id ID) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}
