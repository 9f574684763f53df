// Package router wires route registrars onto the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. API registrars mount under the
// versioned prefix; root registrars (webhook receivers, health) mount on the
// bare engine so external callers see stable unversioned paths.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	api        []registration
	root       []registration
}

type registration struct {
	registrar  RouteRegistrar
	prefix     string
	middleware []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAPI mounts a registrar under /api/<version>, guarded by the given
// middleware
func (r *Router) RegisterAPI(registrar RouteRegistrar, middleware ...gin.HandlerFunc) *Router {
	r.api = append(r.api, registration{registrar: registrar, middleware: middleware})
	return r
}

// RegisterRoot mounts a registrar under prefix on the bare engine
func (r *Router) RegisterRoot(prefix string, registrar RouteRegistrar, middleware ...gin.HandlerFunc) *Router {
	r.root = append(r.root, registration{registrar: registrar, prefix: prefix, middleware: middleware})
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	for _, reg := range r.api {
		group := r.engine.Group("/api/"+r.apiVersion, reg.middleware...)
		reg.registrar.RegisterRoutes(group)
	}
	for _, reg := range r.root {
		group := r.engine.Group(reg.prefix, reg.middleware...)
		reg.registrar.RegisterRoutes(group)
	}
}
