// file: identity/service_test.go
package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athproof/apperrors"
)

func openTestService(t *testing.T) *Service {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateUserAndSignIn(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "Coach@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, "coach@example.com", created.Email, "emails are normalised")

	signedIn, err := s.SignIn(ctx, "coach@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.UID, signedIn.UID)
}

func TestCreateUser_Validation(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "not-an-email", "secret123")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = s.CreateUser(ctx, "a@b.com", "short")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "a@b.com", "different456")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Equal(t, "An account with that email already exists.", apperrors.UserMessage(err))
}

// Test: bad credentials are distinguishable from every other failure
func TestSignIn_InvalidCredential(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "a@b.com", "wrongpass")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredential))

	_, err = s.SignIn(ctx, "ghost@b.com", "whatever")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredential))
}

// Test: repeated failures flip the classification to rate-limited
func TestSignIn_LockoutAfterRepeatedFailures(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	for i := 0; i < maxFailedAttempts; i++ {
		_, err = s.SignIn(ctx, "a@b.com", "wrongpass")
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredential))
	}

	// even the correct password is refused while locked
	_, err = s.SignIn(ctx, "a@b.com", "secret123")
	assert.True(t, apperrors.IsKind(err, apperrors.KindRateLimited))
}

func TestSignIn_SuccessClearsFailureCount(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	for i := 0; i < maxFailedAttempts-1; i++ {
		_, _ = s.SignIn(ctx, "a@b.com", "wrongpass")
	}
	_, err = s.SignIn(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	// the counter restarted, so one more bad attempt does not lock
	_, err = s.SignIn(ctx, "a@b.com", "wrongpass")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCredential))
}

// Test: handlers observe sign-in and sign-out events synchronously
func TestSubscribe_EventsAndUnsubscribe(t *testing.T) {
	s := openTestService(t)
	ctx := context.Background()

	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })

	p, err := s.CreateUser(ctx, "a@b.com", "secret123")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventSignedIn, events[0].Type)
	require.NotNil(t, events[0].Principal)
	assert.Equal(t, p.UID, events[0].Principal.UID)

	s.SignOut(p.UID)
	require.Len(t, events, 2)
	assert.Equal(t, EventSignedOut, events[1].Type)
	assert.Nil(t, events[1].Principal)

	unsubscribe()
	unsubscribe() // safe to call twice
	_, _ = s.SignIn(ctx, "a@b.com", "secret123")
	assert.Len(t, events, 2, "no events after unsubscribe")
}
