package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/2beens/formcheck/internal/telemetry/tracing"
	"github.com/2beens/formcheck/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=middleware_test

const TokenHeader = "X-FORMCHECK-TOKEN"

type tokenChecker interface {
	IsValid(ctx context.Context, token string) (bool, error)
}

// AuthMiddlewareHandler guards the mutating and expensive endpoints with an API token.
// Streaming analysis and all reads stay open.
type AuthMiddlewareHandler struct {
	tokenChecker          tokenChecker
	protectedPaths        map[string]bool
	protectedPathPrefixes []string
}

func NewAuthMiddlewareHandler(tokenChecker tokenChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokenChecker: tokenChecker,
		protectedPaths: map[string]bool{
			"/batch/analyze": true,
		},
		protectedPathPrefixes: []string{
			"/mcp",
		},
	}
}

func (h *AuthMiddlewareHandler) isProtected(r *http.Request) bool {
	if r.Method == http.MethodDelete {
		return true
	}
	if h.protectedPaths[r.URL.Path] {
		return true
	}
	for _, prefix := range h.protectedPathPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

func requestToken(r *http.Request) string {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return r.Header.Get(TokenHeader)
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if !h.isProtected(r) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := requestToken(r)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			valid, err := h.tokenChecker.IsValid(ctx, authToken)
			if err != nil {
				// the token was verified, only caching it failed
				log.Errorf("[token check] => %s: %s", r.URL.Path, err)
				span.RecordError(err)
			}
			if !valid {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid token] [auth middleware] unauthorized %s %s from %s", r.Method, r.URL.Path, reqIp)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
