package api

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/naebak/naebak/pkg/models"
)

type ctxKey string

const CtxIdentity ctxKey = "identity"

// Identity is the resolved caller, built once by the JWT middleware so
// handlers never re-parse claims.
type Identity struct {
	AccountID int64
	Role      string
}

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// identityFrom returns the caller identity, or nil for anonymous
// requests.
func identityFrom(ctx context.Context) *Identity {
	if id, ok := ctx.Value(CtxIdentity).(*Identity); ok {
		return id
	}
	return nil
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				apiError(w, http.StatusInternalServerError, "حدث خطأ في الخادم")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// parseIdentity extracts and verifies the bearer token, returning the
// resolved identity or an error.
func parseIdentity(r *http.Request, secret string) (*Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}

	var tokenString string
	if _, err := fmt.Sscanf(authHeader, "Bearer %s", &tokenString); err != nil || tokenString == "" {
		return nil, fmt.Errorf("invalid authorization header")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}

	id := &Identity{}
	if v, found := claims["account_id"]; found {
		if f, ok := v.(float64); ok {
			id.AccountID = int64(f)
		}
	}
	if v, found := claims["role"]; found {
		if s, ok := v.(string); ok {
			id.Role = s
		}
	}
	if id.AccountID == 0 {
		return nil, fmt.Errorf("token missing account id")
	}
	switch id.Role {
	case models.RoleCitizen, models.RoleCandidate, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("token carries unknown role %q", id.Role)
	}
	return id, nil
}

func JWTAuthMiddlewareWithSecret(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := parseIdentity(r, secret)
			if err != nil {
				apiError(w, http.StatusUnauthorized, "يجب تسجيل الدخول أولاً")
				return
			}

			ctx := context.WithValue(r.Context(), CtxIdentity, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves the identity when a token is present
// but lets anonymous requests through. Public endpoints that
// personalize for logged-in callers use this.
func OptionalAuthMiddleware(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if id, err := parseIdentity(r, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), CtxIdentity, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a subtree to one role. It runs after the JWT
// middleware, so a missing identity means a wiring error and still
// reads as unauthorized.
func RequireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identityFrom(r.Context())
			if id == nil {
				apiError(w, http.StatusUnauthorized, "يجب تسجيل الدخول أولاً")
				return
			}
			if id.Role != role {
				apiError(w, http.StatusForbidden, "غير مصرح لك بالوصول")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
