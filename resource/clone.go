package resource

import "reflect"

// Cloner is implemented by resources that know how to copy themselves
// DeepCopy prefers it over reflective copying
type Cloner[T any] interface {
	Clone() T
}

// DeepCopy returns a copy of v that shares no mutable memory reachable through exported fields
// Channels, funcs and unexported struct fields are copied shallowly
func DeepCopy[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}

	src := reflect.ValueOf(&v).Elem()
	out := reflect.New(src.Type()).Elem()
	out.Set(copyValue(src, make(map[pointerKey]reflect.Value)))
	return *out.Addr().Interface().(*T)
}

// pointerKey includes the type since a struct and its first field share an address
type pointerKey struct {
	addr uintptr
	typ  reflect.Type
}

// copyValue recursively copies v; seen maps source pointers to their copies so cycles terminate
func copyValue(v reflect.Value, seen map[pointerKey]reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := pointerKey{addr: v.Pointer(), typ: v.Type()}
		if c, ok := seen[key]; ok {
			return c
		}
		n := reflect.New(v.Type().Elem())
		seen[key] = n
		n.Elem().Set(copyValue(v.Elem(), seen))
		return n

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(copyValue(v.Index(i), seen))
		}
		return n

	case reflect.Array:
		n := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			n.Index(i).Set(copyValue(v.Index(i), seen))
		}
		return n

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		n := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n.SetMapIndex(iter.Key(), copyValue(iter.Value(), seen))
		}
		return n

	case reflect.Struct:
		n := reflect.New(v.Type()).Elem()
		n.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := n.Field(i); f.CanSet() {
				f.Set(copyValue(v.Field(i), seen))
			}
		}
		return n

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		n := reflect.New(v.Type()).Elem()
		n.Set(copyValue(v.Elem(), seen))
		return n

	default:
		return v
	}
}
