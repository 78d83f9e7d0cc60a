package binding

import (
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// bindBody produces the argument for a Body binding. A request carrying a
// body decodes into the factory target; a request without one gets a fresh
// target populated from same-named query parameters.
func (b *Binder) bindBody(r *http.Request, bind Binding) (interface{}, error) {
	if bind.Factory == nil {
		return nil, util.NewCoercionError(bind.Name, "body binding has no factory")
	}

	target := bind.Factory()

	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		if err := populateFromQuery(target, r.URL.Query()); err != nil {
			return nil, err
		}
		return target, nil
	}

	if err := b.decoder.Decode(r.Body, target); err != nil {
		return nil, util.NewCoercionErrorWithCause(bind.Name, "cannot decode request body", err)
	}

	return target, nil
}

// populateFromQuery fills exported fields of target from same-named query
// parameters. Field names come from the json tag when present, otherwise
// the lowercased field name. Runtime type inspection is confined to this
// binder boundary.
func populateFromQuery(target interface{}, query url.Values) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return util.NewCoercionError("body", "body factory must produce a non-nil pointer")
	}

	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return nil
	}

	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := queryName(field)
		if name == "-" {
			continue
		}

		values, ok := query[name]
		if !ok || len(values) == 0 {
			continue
		}

		if err := setField(elem.Field(i), values[0], name); err != nil {
			return err
		}
	}

	return nil
}

// queryName returns the query key for a struct field: the json tag name
// when present, otherwise the lowercased field name.
func queryName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag != "" {
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		if tag != "" {
			return tag
		}
	}
	return strings.ToLower(field.Name)
}

// setField converts the raw string and stores it in the field. Supported
// kinds mirror the converter set: strings, integers, floats, and bools;
// fields of any other kind keep their zero value.
func setField(field reflect.Value, value, name string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return util.NewCoercionErrorWithCause(name, "invalid integer", err)
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return util.NewCoercionErrorWithCause(name, "invalid unsigned integer", err)
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return util.NewCoercionErrorWithCause(name, "invalid float", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return util.NewCoercionErrorWithCause(name, "invalid boolean", err)
		}
		field.SetBool(b)
	}

	return nil
}
