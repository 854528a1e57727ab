package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/cwrk-planet/dm-service/internal/domain"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

type IdentityVerifier interface {
	Identity(token string) (*domain.Identity, error)
}

// Auth требует Bearer access-токен и кладет Identity в контекст запроса.
func Auth(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				http.Error(w, `{"error":{"message":"missing bearer token"}}`, http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Identity(strings.TrimSpace(parts[1]))
			if err != nil {
				http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromCtx(ctx context.Context) *domain.Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}
