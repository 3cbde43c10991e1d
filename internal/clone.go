package internal

import "reflect"

// shallowClone copies current one level deep: positional clone for arrays
// and slices, keyed clone for maps and structs. Anything else panics. The
// panic is recovered only when the derivation runs inside an unsafe compute
// step's tryRun; a derivation reached from a mov step's store resolution
// panics out of the drain.
func shallowClone(current any) any {
	if current == nil {
		return nil
	}

	v := reflect.ValueOf(current)
	switch v.Kind() {
	case reflect.Slice:
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(clone, v)
		return clone.Interface()

	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		reflect.Copy(clone, v)
		return clone.Interface()

	case reflect.Map:
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		for _, key := range v.MapKeys() {
			clone.SetMapIndex(key, v.MapIndex(key))
		}
		return clone.Interface()

	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		return clone.Interface()

	case reflect.Ptr:
		if v.Elem().Kind() == reflect.Struct {
			clone := reflect.New(v.Elem().Type())
			clone.Elem().Set(v.Elem())
			return clone.Interface()
		}
		panic("kernel: field derivation requires an array, map, struct, or struct pointer current value")

	default:
		panic("kernel: field derivation requires an array, map, struct, or struct pointer current value")
	}
}

// setField writes value into target's named field, via a map key for a map
// target or a struct field for a struct-pointer target. A struct value
// target panics: its fields are not settable through the interface value.
func setField(target any, field string, value any) {
	if m, ok := target.(map[string]any); ok {
		m[field] = value
		return
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Map {
		v.SetMapIndex(reflect.ValueOf(field), reflect.ValueOf(value))
		return
	}

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("kernel: field derivation target is not a struct or map")
	}

	fv := v.FieldByName(field)
	if !fv.IsValid() || !fv.CanSet() {
		panic("kernel: field derivation target has no settable field " + field)
	}
	fv.Set(reflect.ValueOf(value))
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return !t
	default:
		return false
	}
}
