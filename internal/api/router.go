package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the GraphQL endpoint with its dependencies and returns an
// http.Handler. This is the API composition root; resolvers stay unaware of
// concrete adapters.
func NewRouter(r *Resolver, authSecret string) (http.Handler, error) {
	schema, err := NewSchema(r)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", &graphqlHandler{schema: schema})
	mux.HandleFunc("/health", health)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(authMiddleware(authSecret, mux)), nil
}
