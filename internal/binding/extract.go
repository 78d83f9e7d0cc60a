package binding

import (
	"net/http"
	"net/url"

	"github.com/vyrodovalexey/avrouter/internal/encoding"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Binder extracts and coerces handler arguments for declared bindings.
type Binder struct {
	decoder encoding.Decoder
}

// NewBinder creates a Binder that decodes request bodies with the given
// decoder.
func NewBinder(decoder encoding.Decoder) *Binder {
	return &Binder{decoder: decoder}
}

// Bind produces the positional argument list for the declared bindings.
// pathVars carries the named captures of the resolved route. Every failure
// is a *util.CoercionError naming the parameter.
func (b *Binder) Bind(r *http.Request, pathVars map[string]string, bindings []Binding) ([]interface{}, error) {
	if len(bindings) == 0 {
		return nil, nil
	}

	args := make([]interface{}, 0, len(bindings))

	// Parsed once, only when a Query binding or query-populated body needs it.
	var query url.Values

	for _, bind := range bindings {
		var arg interface{}
		var err error

		switch bind.Kind {
		case KindPath:
			arg, err = coercePath(pathVars, bind)
		case KindQuery:
			if query == nil {
				query = r.URL.Query()
			}
			arg, err = coerceQuery(query, bind)
		case KindHeader:
			arg, err = coerceHeader(r, bind)
		case KindCookie:
			arg, err = coerceCookie(r, bind)
		case KindBody:
			arg, err = b.bindBody(r, bind)
		case KindBinary:
			arg = &Stream{Body: r.Body, ContentLength: r.ContentLength}
		default:
			err = util.NewCoercionError(bind.Name, "unknown binding kind")
		}

		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	return args, nil
}

// coercePath extracts a named path capture. Registration validation
// guarantees the capture exists for every declared Path binding, so a miss
// here indicates a resolution defect rather than client input.
func coercePath(pathVars map[string]string, bind Binding) (interface{}, error) {
	value, ok := pathVars[bind.Name]
	if !ok {
		return nil, util.NewCoercionError(bind.Name, "path parameter missing from resolved route")
	}
	return coerce(bind, value)
}

// coerceQuery extracts the first query value by name, falling back to the
// declared default when present.
func coerceQuery(query url.Values, bind Binding) (interface{}, error) {
	values, ok := query[bind.Name]

	var raw string
	switch {
	case ok && len(values) > 0:
		raw = values[0]
	case bind.Default != nil:
		raw = *bind.Default
	default:
		return nil, util.NewCoercionError(bind.Name, "required query parameter missing")
	}

	return coerce(bind, raw)
}

func coerceHeader(r *http.Request, bind Binding) (interface{}, error) {
	values := r.Header.Values(bind.Name)
	if len(values) == 0 {
		return nil, util.NewCoercionError(bind.Name, "required header missing")
	}
	return coerce(bind, values[0])
}

func coerceCookie(r *http.Request, bind Binding) (interface{}, error) {
	cookie, err := r.Cookie(bind.Name)
	if err != nil {
		return nil, util.NewCoercionError(bind.Name, "required cookie missing")
	}
	return coerce(bind, cookie.Value)
}

// coerce applies the binding's converter. A nil converter passes the raw
// string through.
func coerce(bind Binding, raw string) (interface{}, error) {
	if bind.Convert == nil {
		return raw, nil
	}

	value, err := bind.Convert(raw)
	if err != nil {
		return nil, util.NewCoercionErrorWithCause(bind.Name, "cannot coerce value", err)
	}

	return value, nil
}
