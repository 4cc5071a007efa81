package router

import (
	"context"
	"net/http"
	"strings"

	"invoice-api/pkg/lambda"
)

// Route is a single (pattern, method) registration.
type Route struct {
	Method  string
	Pattern string
	Handler lambda.HandlerFunc
}

type routeKey struct {
	pattern string
	method  string
}

type route struct {
	method    string
	pattern   string
	segments  []string
	hasParams bool
	handler   lambda.HandlerFunc
}

// Router maps (path, method) pairs to handlers. Patterns may contain
// placeholder segments like {reference_id} which bind the corresponding
// request segment into Request.PathParams. The table is built once during
// startup and must not be mutated while serving.
type Router struct {
	exact  map[routeKey]lambda.HandlerFunc
	routes []route
}

// New creates an empty router.
func New() *Router {
	return &Router{
		exact: make(map[routeKey]lambda.HandlerFunc),
	}
}

// Handle registers a handler for the given method and path pattern.
// Registering the same (pattern, method) pair again replaces the handler
// but keeps the original position in the match order.
func (r *Router) Handle(method, pattern string, h lambda.HandlerFunc) {
	key := routeKey{pattern: pattern, method: method}
	if _, ok := r.exact[key]; ok {
		r.exact[key] = h
		for i := range r.routes {
			if r.routes[i].method == method && r.routes[i].pattern == pattern {
				r.routes[i].handler = h
				break
			}
		}
		return
	}

	r.exact[key] = h
	r.routes = append(r.routes, route{
		method:    method,
		pattern:   pattern,
		segments:  splitPath(pattern),
		hasParams: strings.Contains(pattern, "{"),
		handler:   h,
	})
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, Route{Method: rt.method, Pattern: rt.pattern, Handler: rt.handler})
	}
	return out
}

// Dispatch resolves the request against the route table and invokes the
// matching handler. Resolution is a two-step process: an exact (path, method)
// lookup first, then a scan of placeholder patterns in registration order
// where the first full match wins. Placeholder segments match any value,
// literal segments compare case-sensitively, and the segment counts must be
// equal after trimming surrounding slashes. When nothing matches, Dispatch
// answers 404 "Not Found" itself and no handler runs.
func (r *Router) Dispatch(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	if h, ok := r.exact[routeKey{pattern: req.Path, method: req.Method}]; ok {
		req.PathParams = map[string]string{}
		return h(ctx, req)
	}

	reqSegments := splitPath(req.Path)
	for _, rt := range r.routes {
		if rt.method != req.Method || !rt.hasParams {
			continue
		}
		params, ok := matchSegments(rt.segments, reqSegments)
		if !ok {
			continue
		}
		req.PathParams = params
		return rt.handler(ctx, req)
	}

	return &lambda.Response{
		StatusCode: http.StatusNotFound,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte("Not Found"),
	}, nil
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			params[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}
