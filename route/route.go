package route

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonwraymond/routeops/schema"
)

// RouteSchema groups the compiled validators for one route. Response is
// required; the others apply only when declared.
type RouteSchema struct {
	Response *schema.Schema
	Body     *schema.Schema
	Query    *schema.Schema
	Params   *schema.Schema
}

// Route is the immutable descriptor of one callable endpoint.
type Route struct {
	// Method is the HTTP method, e.g. "GET".
	Method string

	// Path is the path template. Segments starting with a colon are
	// placeholders filled from call params, e.g. "/users/:id".
	Path string

	// Schema holds the compiled validators for this route.
	Schema RouteSchema
}

// Validate checks the descriptor is well formed. Called once at client
// construction.
func (r Route) Validate() error {
	if strings.TrimSpace(r.Method) == "" {
		return ErrEmptyMethod
	}
	if strings.TrimSpace(r.Path) == "" {
		return ErrEmptyPath
	}
	return nil
}

// BuildPath substitutes :name placeholders in the template with values from
// params. A placeholder without a value fails with *MissingParamError;
// params without a matching placeholder are ignored. Values are
// path-escaped.
func BuildPath(template string, params map[string]string) (string, error) {
	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") || len(seg) == 1 {
			continue
		}
		name := seg[1:]
		val, ok := params[name]
		if !ok {
			return "", &MissingParamError{Name: name, Template: template}
		}
		segments[i] = url.PathEscape(val)
	}
	return strings.Join(segments, "/"), nil
}

// PlaceholderNames returns the placeholder names in the template, in order
// of appearance.
func PlaceholderNames(template string) []string {
	var names []string
	for _, seg := range strings.Split(template, "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			names = append(names, seg[1:])
		}
	}
	return names
}

// BuildQuery encodes query values as a URL query string. Nil values are
// omitted; everything else is stringified. Keys are encoded in sorted
// order, so the result is deterministic.
func BuildQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range query {
		if v == nil {
			continue
		}
		values.Set(k, stringify(v))
	}
	return values.Encode()
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
