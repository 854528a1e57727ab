package security

import (
	"testing"
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/errs"

	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	tg := "https://t.me/alice_tg"
	return &domain.User{
		ID:          1,
		Username:    "alice",
		Email:       "alice@example.com",
		TelegramURL: &tg,
		Role:        domain.RoleUser,
	}
}

func TestJWT_SignAndParseRoundtrip(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "dm-service", 30*time.Minute, 30*time.Second)

	token, err := s.SignAccessToken(testUser(), time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ParseAndValidate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, int64(1), claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "user", claims.Role)
	require.NotNil(t, claims.TelegramURL)
	require.Equal(t, "https://t.me/alice_tg", *claims.TelegramURL)

	id, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	require.Equal(t, domain.UserID(1), id.ID)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, domain.RoleUser, id.Role)
}

func TestJWT_WrongSecret(t *testing.T) {
	s1 := NewJWTSigner([]byte("secret-one"), "dm-service", time.Minute, 0)
	s2 := NewJWTSigner([]byte("secret-two"), "dm-service", time.Minute, 0)

	token, err := s1.SignAccessToken(testUser(), time.Now())
	require.NoError(t, err)

	_, err = s2.ParseAndValidate(token)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "dm-service", time.Minute, 0)

	// токен выпущен час назад с TTL в минуту
	token, err := s.SignAccessToken(testUser(), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = s.ParseAndValidate(token)
	require.Error(t, err)
}

func TestJWT_WrongIssuer(t *testing.T) {
	issued := NewJWTSigner([]byte("secret"), "other-service", time.Minute, 30*time.Second)
	checked := NewJWTSigner([]byte("secret"), "dm-service", time.Minute, 30*time.Second)

	token, err := issued.SignAccessToken(testUser(), time.Now())
	require.NoError(t, err)

	_, err = checked.ParseAndValidate(token)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestJWT_Garbage(t *testing.T) {
	s := NewJWTSigner([]byte("secret"), "dm-service", time.Minute, 0)

	_, err := s.ParseAndValidate("not.a.jwt")
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestIdentityFromClaims_BadSubject(t *testing.T) {
	_, err := IdentityFromClaims(nil)
	require.ErrorIs(t, err, errs.ErrInvalidSubject)

	_, err = IdentityFromClaims(&AccessClaims{UserID: 5})
	require.ErrorIs(t, err, errs.ErrInvalidSubject)
}
