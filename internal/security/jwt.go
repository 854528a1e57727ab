package security

import (
	"fmt"
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/errs"

	"github.com/golang-jwt/jwt"
)

// Используется SigningMethodHS256; секрет приходит из конфига.
type JWTSigner struct {
	secret    []byte
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
}

func NewJWTSigner(secret []byte, issuer string, ttl, clockSkew time.Duration) *JWTSigner {
	return &JWTSigner{
		secret:    secret,
		issuer:    issuer,
		ttl:       ttl,
		clockSkew: clockSkew,
	}
}

func (s *JWTSigner) TTL() time.Duration {
	return s.ttl
}

// AccessClaims несет в себе всё, что нужно для Identity:
// sub=username, user_id, email, role, telegram_link.
type AccessClaims struct {
	jwt.StandardClaims
	UserID      int64   `json:"user_id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	TelegramURL *string `json:"telegram_link,omitempty"`
}

// SignAccessToken выпускает JWT с exp=now+ttl
func (s *JWTSigner) SignAccessToken(u *domain.User, now time.Time) (string, error) {
	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   u.Username,
			Issuer:    s.issuer,
			IssuedAt:  now.Unix(),
			NotBefore: now.Add(-s.clockSkew).Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		UserID:      int64(u.ID),
		Email:       u.Email,
		Role:        string(u.Role),
		TelegramURL: u.TelegramURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

// ParseAndValidate проверяет подпись и временные клеймы.
// Никакого I/O: решение принимается только по содержимому токена.
func (s *JWTSigner) ParseAndValidate(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errs.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, errs.ErrInvalidToken
	}

	now := time.Now()

	// issuer
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, errs.ErrInvalidToken
	}

	// временные клеймы с допуском clockSkew
	nbf := time.Unix(claims.NotBefore, 0).Add(-s.clockSkew)
	exp := time.Unix(claims.ExpiresAt, 0).Add(s.clockSkew) // даём люфт на «часы»
	if now.Before(nbf) || now.After(exp) {
		return nil, errs.ErrTokenExpired
	}

	return claims, nil
}

// IdentityFromClaims собирает domain.Identity из клеймов access-токена.
func IdentityFromClaims(claims *AccessClaims) (*domain.Identity, error) {
	if claims == nil || claims.Subject == "" || claims.UserID <= 0 {
		return nil, errs.ErrInvalidSubject
	}

	return &domain.Identity{
		ID:          domain.UserID(claims.UserID),
		Username:    claims.Subject,
		Email:       claims.Email,
		Role:        domain.ParseRole(claims.Role),
		TelegramURL: claims.TelegramURL,
	}, nil
}
