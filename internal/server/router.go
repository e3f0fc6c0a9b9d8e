package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gregcorwin/Email/internal/repository"
)

// RouterOptions controls the construction of the HTTP router. The zero value
// is valid; routes whose collaborators are not set are simply not mounted.
type RouterOptions struct {
	Templates     repository.TemplateRepository
	Variables     repository.TemplateVariableRepository
	Introspection http.Handler
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the CORS policy for the browser-facing API. The
// allowed headers mirror what the hosted-auth JS client sends.
func DefaultCORSOptions(allowedOrigin string) cors.Options {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Authorization",
			"X-Client-Info",
			"Apikey",
			"Content-Type",
		},
		MaxAge: 300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles the chi router: baseline middleware, the CORS'd
// template API, and the introspection endpoint. The introspection handler is
// mounted outside the CORS middleware because it must stamp its own headers
// on every response, including failures.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	if opts.Templates != nil {
		corsCfg := DefaultCORSOptions("*")
		if opts.CORSOptions != nil {
			corsCfg = *opts.CORSOptions
		}
		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(corsCfg))
			mountTemplateRoutes(r, opts.Templates, opts.Variables)
		})
	}

	if opts.Introspection != nil {
		r.Handle("/functions/v1/get-rls-policies", opts.Introspection)
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	return r
}
