package api

import "reflect"

const internalField = "Internal"

// GetInternalStructs returns pointers to the Internal method structs of a
// proxy struct and of the proxy structs it embeds, as expected by the
// jsonrpc client and the permission proxy.
func GetInternalStructs(in interface{}) []interface{} {
	return getInternalStructs(reflect.ValueOf(in).Elem())
}

func getInternalStructs(rv reflect.Value) []interface{} {
	var out []interface{}
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Type().Field(i)
		switch {
		case field.Name == internalField:
			out = append(out, rv.Field(i).Addr().Interface())
		case field.Anonymous && field.Type.Kind() == reflect.Struct:
			out = append(out, getInternalStructs(rv.Field(i))...)
		}
	}
	return out
}
