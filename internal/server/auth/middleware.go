package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

type contextKey string

func (k contextKey) String() string {
	return string(k)
}

var (
	ckPrincipal = contextKey("principal")
	ckIsAdmin   = contextKey("is_admin")
)

// Session is the authenticated subject extracted from a bearer token:
// the principal for permission checks plus the administrative flag
type Session struct {
	Principal accesspolicy.Principal
	IsAdmin   bool
}

// NewMiddleware validates the Authorization header against a shared
// HMAC secret and stores the resulting principal in the request
// context. Group memberships travel inside the token; the server never
// re-resolves them per request.
func NewMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, secret)
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ckPrincipal, session.Principal)
			ctx = context.WithValue(ctx, ckIsAdmin, session.IsAdmin)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, secret []byte) (s Session, err error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return s, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return secret, nil
	})

	if err != nil {
		return s, errors.Wrap(err, "failed to parse bearer token")
	}

	if !token.Valid {
		return s, errors.New("invalid bearer token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return s, errors.New("unexpected token claims")
	}

	userID, _ := claims["sub"].(string)
	if strings.TrimSpace(userID) == "" {
		return s, errors.New("token carries no subject")
	}

	var groupIDs []string
	if raw, ok := claims["groups"].([]interface{}); ok {
		for _, v := range raw {
			if gid, ok := v.(string); ok {
				groupIDs = append(groupIDs, gid)
			}
		}
	}

	s.Principal = accesspolicy.NewPrincipal(userID, groupIDs...)
	s.IsAdmin, _ = claims["admin"].(bool)

	return s, nil
}

// PrincipalFromContext returns the authenticated principal, if any
func PrincipalFromContext(ctx context.Context) (accesspolicy.Principal, bool) {
	p, ok := ctx.Value(ckPrincipal).(accesspolicy.Principal)
	return p, ok && p.UserID != ""
}

// IsAdmin reports whether the authenticated principal holds the
// administrative flag
func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(ckIsAdmin).(bool)
	return isAdmin
}
