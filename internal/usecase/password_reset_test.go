package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naruebet/portal-auth-api/internal/model"
	"github.com/naruebet/portal-auth-api/internal/security"
)

type resetFixture struct {
	users  *fakeUserRepo
	resets *fakeResetRepo
	sender *fakeSender
	uc     PasswordResetUsecase
}

func newResetFixture() *resetFixture {
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	sender := &fakeSender{}

	return &resetFixture{
		users:  users,
		resets: resets,
		sender: sender,
		uc:     NewPasswordResetUsecase(users, resets, fakeTransactor{}, sender),
	}
}

func (f *resetFixture) seedUser(t *testing.T, email, password string) *model.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	user, err := f.users.CreateUser(context.Background(), &model.User{
		Email:        email,
		Username:     "ann",
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	require.NoError(t, err)
	return user
}

func (f *resetFixture) currentCode(t *testing.T, userID string) string {
	t.Helper()

	for _, reset := range f.resets.resets {
		if reset.UserID.Hex() == userID && !reset.Used {
			return reset.Code
		}
	}
	t.Fatal("no live reset code found")
	return ""
}

func TestRequestPasswordReset(t *testing.T) {
	f := newResetFixture()
	user := f.seedUser(t, "a@b.com", "password1")

	err := f.uc.RequestPasswordReset(context.Background(), "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, 1, f.resets.liveCount(user.ID))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []string{"a@b.com"}, f.sender.sent[0].to)
	assert.Contains(t, f.sender.sent[0].body, f.currentCode(t, user.ID.Hex()))
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newResetFixture()

	err := f.uc.RequestPasswordReset(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.sender.sent)
}

func TestRequestPasswordReset_SingleLiveCode(t *testing.T) {
	f := newResetFixture()
	user := f.seedUser(t, "a@b.com", "password1")

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "a@b.com"))
	first := f.currentCode(t, user.ID.Hex())

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "a@b.com"))
	second := f.currentCode(t, user.ID.Hex())

	assert.Equal(t, 1, f.resets.liveCount(user.ID))

	// The superseded code is dead even before it expires.
	if first != second {
		err := f.uc.ResetPassword(context.Background(), first, "password2")
		assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
	}
}

func TestRequestPasswordReset_SendFailureRemovesCode(t *testing.T) {
	f := newResetFixture()
	user := f.seedUser(t, "a@b.com", "password1")
	f.sender.failErr = errors.New("smtp down")

	err := f.uc.RequestPasswordReset(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, ErrResetSendFailed)
	assert.Zero(t, f.resets.liveCount(user.ID))
}

func TestResetPassword(t *testing.T) {
	f := newResetFixture()
	user := f.seedUser(t, "a@b.com", "password1")

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "a@b.com"))
	code := f.currentCode(t, user.ID.Hex())

	err := f.uc.ResetPassword(context.Background(), code, "password2")
	require.NoError(t, err)

	// The hash changed to the new password.
	stored, err := f.users.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	ok, err := security.VerifyPassword("password2", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// The code is consumed and cannot be redeemed again.
	err = f.uc.ResetPassword(context.Background(), code, "password3")
	assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
}

func TestResetPassword_IndistinguishableFailures(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		prepare func(f *resetFixture) string
	}{
		{
			name: "unknown code",
			prepare: func(f *resetFixture) string {
				return "123456"
			},
		},
		{
			name: "expired code",
			prepare: func(f *resetFixture) string {
				user := f.seedUser(t, "a@b.com", "password1")
				require.NoError(t, f.uc.RequestPasswordReset(ctx, "a@b.com"))
				code := f.currentCode(t, user.ID.Hex())
				for _, reset := range f.resets.resets {
					reset.ExpiresAt = time.Now().Add(-time.Minute)
				}
				return code
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newResetFixture()
			code := tc.prepare(f)

			err := f.uc.ResetPassword(ctx, code, "password2")
			assert.ErrorIs(t, err, ErrCodeInvalidOrExpired)
		})
	}
}
