package policy

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/cel-go/cel"
)

// celEnv builds the evaluation environment visible to origin policy
// expressions.
func celEnv() (*cel.Env, error) {
	return cel.NewEnv(
		// Full origin as sent, e.g. "https://app.example.com:8443".
		cel.Variable("origin", cel.StringType),

		cel.Variable("scheme", cel.StringType),
		cel.Variable("host", cel.StringType),
		cel.Variable("port", cel.IntType),

		// Request verb and path, so policies can differ per route area.
		cel.Variable("verb", cel.StringType),
		cel.Variable("path", cel.StringType),
	)
}

// NewCELPolicy compiles a CEL expression into an origin policy. The
// expression must evaluate to a boolean; compilation failures are startup
// errors, while evaluation failures and non-boolean results deny the
// request.
func NewCELPolicy(expression string) (Func, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile origin policy: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create origin policy program: %w", err)
	}

	return func(r *http.Request, origin *url.URL) bool {
		result, _, err := program.Eval(map[string]interface{}{
			"origin": origin.String(),
			"scheme": origin.Scheme,
			"host":   origin.Hostname(),
			"port":   originPort(origin),
			"verb":   r.Method,
			"path":   r.URL.Path,
		})
		if err != nil {
			return false
		}

		allowed, ok := result.Value().(bool)
		return ok && allowed
	}, nil
}

// originPort resolves the effective origin port, falling back to the
// scheme default when none is given.
func originPort(origin *url.URL) int {
	if p := origin.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
		return 0
	}

	switch origin.Scheme {
	case "https":
		return 443
	case "http":
		return 80
	}
	return 0
}
