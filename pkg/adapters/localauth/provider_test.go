package localauth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasksage/tasksage/pkg/adapters/localauth"
	"github.com/tasksage/tasksage/pkg/adapters/mem"
	"github.com/tasksage/tasksage/pkg/core"
)

var secret = []byte("test-signing-secret")

func setupProvider(t *testing.T) *localauth.Provider {
	t.Helper()
	store := mem.New()
	p, err := localauth.New(context.Background(), store, secret)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func authCode(t *testing.T, err error) core.AuthCode {
	t.Helper()
	var authErr *core.AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
	return authErr.Code
}

func waitSignIn(t *testing.T, p *localauth.Provider, email, password string) core.User {
	t.Helper()
	// The email index follows the users subscription asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		user, err := p.SignIn(context.Background(), email, password)
		if err == nil {
			return user
		}
		if time.Now().After(deadline) {
			t.Fatalf("sign-in never succeeded: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProvider_SignUpOpensSession(t *testing.T) {
	p := setupProvider(t)

	user, err := p.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.DisplayName)

	current, ok := p.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.ID, current.ID)

	session, ok := p.CurrentSession()
	require.True(t, ok)
	assert.NotEmpty(t, session.Token)
}

func TestProvider_SignUpValidation(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "bad-email", "secret1", "X")
	assert.Equal(t, core.AuthInvalidEmail, authCode(t, err))

	_, err = p.SignUp(ctx, "ok@example.com", "tiny", "X")
	assert.Equal(t, core.AuthWeakPassword, authCode(t, err))

	_, err = p.SignUp(ctx, "ok@example.com", "with space", "X")
	assert.Equal(t, core.AuthWeakPassword, authCode(t, err))
}

func TestProvider_SignInFlow(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx))

	user := waitSignIn(t, p, "ada@example.com", "secret1")
	assert.Equal(t, "Ada", user.DisplayName)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestProvider_WrongPassword(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	waitSignIn(t, p, "ada@example.com", "secret1")

	_, err = p.SignIn(ctx, "ada@example.com", "wrong99")
	assert.Equal(t, core.AuthWrongPassword, authCode(t, err))
}

func TestProvider_UnknownUser(t *testing.T) {
	p := setupProvider(t)
	_, err := p.SignIn(context.Background(), "nobody@example.com", "secret1")
	assert.Equal(t, core.AuthUserNotFound, authCode(t, err))
}

func TestProvider_EmailInUse(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	waitSignIn(t, p, "ada@example.com", "secret1")

	_, err = p.SignUp(ctx, "ada@example.com", "secret2", "Imposter")
	assert.Equal(t, core.AuthEmailInUse, authCode(t, err))
}

func TestProvider_SessionListeners(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	type event struct {
		user     core.User
		signedIn bool
	}
	events := make(chan event, 4)
	unsubscribe := p.OnSessionChanged(func(u core.User, signedIn bool) {
		events <- event{u, signedIn}
	})

	_, err := p.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	e := <-events
	assert.True(t, e.signedIn)
	assert.Equal(t, "Ada", e.user.DisplayName)

	require.NoError(t, p.SignOut(ctx))
	e = <-events
	assert.False(t, e.signedIn)
	assert.Equal(t, core.User{}, e.user)

	unsubscribe()
	waitSignIn(t, p, "ada@example.com", "secret1")
	select {
	case e := <-events:
		t.Fatalf("listener fired after unsubscribe: %+v", e)
	default:
	}
}

func TestProvider_TokenVerification(t *testing.T) {
	p := setupProvider(t)

	user, err := p.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	session, ok := p.CurrentSession()
	require.True(t, ok)

	sub, err := p.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	_, err = p.VerifyToken(session.Token + "tampered")
	assert.Equal(t, core.AuthInvalidCredentials, authCode(t, err))
}

func TestProvider_SessionExpiry(t *testing.T) {
	store := mem.New()
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	p, err := localauth.New(context.Background(), store, secret,
		localauth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(p.Close)

	_, err = p.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	_, ok := p.CurrentUser()
	assert.True(t, ok)

	now = now.Add(25 * time.Hour)
	_, ok = p.CurrentUser()
	assert.False(t, ok, "sessions lapse after their TTL")
}
