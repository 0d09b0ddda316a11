package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	request "fusebot/pkg/platform/middleware/request"
)

// The webhook surface is called by the chat runtime, not by end users.
// Callers authenticate with a bearer JWT signed with the shared service key;
// the subject claim identifies the calling service for audit logs.

type contextKey string

const callerKey contextKey = "caller"

// GetCaller returns the authenticated caller subject from the context,
// or an empty string when the request was not authenticated.
func GetCaller(ctx context.Context) string {
	if c, ok := ctx.Value(callerKey).(string); ok {
		return c
	}
	return ""
}

// Verifier validates service tokens for the webhook surface.
type Verifier struct {
	signingKey []byte
	logger     *slog.Logger
}

// NewVerifier creates a Verifier with the shared HS256 signing key.
func NewVerifier(signingKey string, logger *slog.Logger) *Verifier {
	return &Verifier{signingKey: []byte(signingKey), logger: logger}
}

// ValidateToken parses and validates a service JWT, returning the subject.
func (v *Verifier) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}

// Middleware enforces bearer authentication on the wrapped handler.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			v.unauthorized(w, r, "missing bearer token")
			return
		}

		caller, err := v.ValidateToken(tokenString)
		if err != nil {
			v.logger.WarnContext(ctx, "rejected service token",
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
			v.unauthorized(w, r, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, callerKey, caller)))
	})
}

func (v *Verifier) unauthorized(w http.ResponseWriter, _ *http.Request, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"unauthorized","error_description":"%s"}`, desc))
}

// MintToken issues a service token for the given subject. Used by cmd/tokengen
// and by tests; the server itself only verifies.
func MintToken(signingKey, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(signingKey))
}
