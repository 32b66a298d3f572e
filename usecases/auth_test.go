package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecotracker/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "correct horse", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, errs.ErrUserAlreadyExists)

	token, logged, err := f.auth.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	subject, err := f.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	me, err := f.auth.GetUser(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.FirstName)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]RegisterInput{
		"email":    {Email: "not-an-email", Password: "long enough"},
		"password": {Email: "bob@example.com", Password: "short"},
	}
	for field, in := range cases {
		_, err := f.auth.Register(context.Background(), in)
		var verr *errs.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.auth.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "long enough"})
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, "bob@example.com", "wrong password")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, _, err = f.auth.Login(ctx, "nobody@example.com", "long enough")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestParseTokenRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.ParseToken("garbage")
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	other := NewAuthUseCase(f.users, "other-secret", time.Hour, testLogger())
	foreign, err := other.issueToken("user-1")
	require.NoError(t, err)
	_, err = f.auth.ParseToken(foreign)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)

	expired := NewAuthUseCase(f.users, "test-secret", -time.Minute, testLogger())
	stale, err := expired.issueToken("user-1")
	require.NoError(t, err)
	_, err = f.auth.ParseToken(stale)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}
