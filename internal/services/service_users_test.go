package services

import (
	"context"
	"testing"
	"time"

	"devconnector/dto"
	"devconnector/internal/auth"
	"devconnector/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService() *UserService {
	return NewUserService(repository.NewMemoryUserStore(), auth.NewSigner("secret", time.Hour), bcrypt.MinCost)
}

func validRegistration() dto.RegisterReq {
	return dto.RegisterReq{Name: "Jane Doe", Email: "Jane@Example.com", Password: "secret1", Password2: "secret1"}
}

func TestRegister_CreatesUserWithGravatar(t *testing.T) {
	svc := newUserService()

	u, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, GravatarURL("jane@example.com"), u.Avatar)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email already exists", verr.Fields["email"])
}

func TestLogin(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	u, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	token, err := svc.Login(ctx, dto.LoginReq{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := auth.Parse(token, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID())
	assert.Equal(t, "Jane Doe", claims.Name)

	_, err = svc.Login(ctx, dto.LoginReq{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(ctx, dto.LoginReq{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGravatarURL(t *testing.T) {
	assert.Equal(t,
		"//www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm",
		GravatarURL(" MyEmailAddress@example.com "))
}
