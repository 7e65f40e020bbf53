package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/recipebox/internal/domain/entity"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeSessionStore, *entity.User) {
	t.Helper()
	repo := newFakeUserRepo()
	users := newUserService(repo, &fakePublisher{})
	u, err := users.Register(context.Background(), RegisterInput{Email: "user@example.com", Password: "testpass"})
	require.NoError(t, err)

	sessions := newFakeSessionStore()
	svc := NewAuthService(repo, sessions, newFakeTokenStore(), nil, 24*time.Hour, 0)
	return svc, sessions, u
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, u := newAuthFixture(t)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "user@example.com", "testpass")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "USER@Example.com", "testpass")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "user@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "testpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blank email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "", "testpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("session-only cookie by default", func(t *testing.T) {
		svc, sessions, u := newAuthFixture(t)
		sid, maxAge, err := svc.Login(ctx, u, false)
		require.NoError(t, err)
		assert.NotEmpty(t, sid)
		assert.Equal(t, 0, maxAge)
		assert.Equal(t, 24*time.Hour, sessions.ttls[sid])
	})

	t.Run("remember me extends to two weeks by default", func(t *testing.T) {
		svc, sessions, u := newAuthFixture(t)
		sid, maxAge, err := svc.Login(ctx, u, true)
		require.NoError(t, err)
		assert.Equal(t, 1209600, maxAge)
		assert.Equal(t, DefaultRememberMeTTL, sessions.ttls[sid])
	})

	t.Run("configured remember ttl drives cookie and store", func(t *testing.T) {
		repo := newFakeUserRepo()
		users := newUserService(repo, &fakePublisher{})
		u, err := users.Register(ctx, RegisterInput{Email: "other@example.com", Password: "testpass"})
		require.NoError(t, err)

		sessions := newFakeSessionStore()
		svc := NewAuthService(repo, sessions, newFakeTokenStore(), nil, 24*time.Hour, 48*time.Hour)

		sid, maxAge, err := svc.Login(ctx, u, true)
		require.NoError(t, err)
		assert.Equal(t, int((48 * time.Hour).Seconds()), maxAge)
		assert.Equal(t, 48*time.Hour, sessions.ttls[sid])
	})

	t.Run("logout deletes the session", func(t *testing.T) {
		svc, sessions, u := newAuthFixture(t)
		sid, _, err := svc.Login(ctx, u, false)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, sid))
		_, err = sessions.Get(ctx, sid)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestMintToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	t.Run("mints for valid credentials", func(t *testing.T) {
		tok, err := svc.MintToken(ctx, "user@example.com", "testpass")
		require.NoError(t, err)
		assert.NotEmpty(t, tok)
	})

	t.Run("repeated mint returns the same token", func(t *testing.T) {
		first, err := svc.MintToken(ctx, "user@example.com", "testpass")
		require.NoError(t, err)
		second, err := svc.MintToken(ctx, "user@example.com", "testpass")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		_, err := svc.MintToken(ctx, "user@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
