package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnector/dto"
	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	store      UserStore
	signer     *auth.Signer
	bcryptCost int
	now        func() time.Time
}

func NewUserService(store UserStore, signer *auth.Signer, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, signer: signer, bcryptCost: bcryptCost, now: time.Now}
}

// Register creates a user whose avatar is the Gravatar of their email.
func (s *UserService) Register(ctx context.Context, body dto.RegisterReq) (*models.User, error) {
	if errs, ok := validation.Validate(&body); !ok {
		return nil, &ValidationError{Fields: errs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           bson.NewObjectID(),
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hash),
		Avatar:       GravatarURL(body.Email),
		Date:         s.now().UTC(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Fields: map[string]string{"email": "Email already exists"}}
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *UserService) Login(ctx context.Context, body dto.LoginReq) (string, error) {
	if errs, ok := validation.Validate(&body); !ok {
		return "", &ValidationError{Fields: errs}
	}

	u, err := s.store.FindByEmail(ctx, body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)); err != nil {
		return "", ErrPasswordIncorrect
	}

	token, err := s.signer.Sign(u.ID.Hex(), u.Name, u.Avatar)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *UserService) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// GravatarURL uses size 200, rating pg and the mystery-man default.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
