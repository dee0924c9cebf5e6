package http

import (
	"context"
	"net/http"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// AuthMiddleware verifies the bearer token of incoming API requests
// against the JWKS endpoint. Keys are cached and refreshed in the
// background for the lifetime of ctx.
func AuthMiddleware(ctx context.Context, jwksURL, issuer string) (func(http.Handler) http.Handler, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS endpoint", goerr.V("url", jwksURL))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keySet, err := cache.Get(r.Context(), jwksURL)
			if err != nil {
				ctxlog.From(r.Context()).Error("Failed to fetch JWKS", "error", err)
				writeError(w, goerr.New("authentication unavailable"), http.StatusServiceUnavailable)
				return
			}

			opts := []jwt.ParseOption{
				jwt.WithKeySet(keySet),
				jwt.WithValidate(true),
			}
			if issuer != "" {
				opts = append(opts, jwt.WithIssuer(issuer))
			}

			if _, err := jwt.ParseRequest(r, opts...); err != nil {
				ctxlog.From(r.Context()).Warn("Rejected API request", "error", err)
				writeError(w, goerr.New("invalid token"), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
