package server

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/playperu/echochat/internal/config"
)

var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// corsOptions translates the policy into go-chi/cors options. A "*" origin is
// expressed as an origin func so that the request origin is echoed back;
// browsers refuse a literal "*" on credentialed requests.
func corsOptions(c config.CORS) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           600,
	}
	if slices.Contains(c.AllowedOrigins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	if slices.Contains(c.AllowedMethods, "*") {
		opts.AllowedMethods = allMethods
	}
	return opts
}
