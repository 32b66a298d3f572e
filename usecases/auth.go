package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecotracker/entities"
	"ecotracker/errs"
	"ecotracker/repositories"

	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type AuthUseCase struct {
	UserRepo repositories.UserRepository

	secret     []byte
	ttl        time.Duration
	bcryptCost int
	log        *logrus.Entry
}

func NewAuthUseCase(userRepo repositories.UserRepository, secret string, ttl time.Duration, log *logrus.Entry) *AuthUseCase {
	return &AuthUseCase{
		UserRepo:   userRepo,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		log:        log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt-hashed password.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
	}
	if err := uc.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.log.Infof("registered user %s", user.ID)
	return user, nil
}

// Login checks the credentials and returns a signed session token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, *entities.User, error) {
	user, err := uc.UserRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errs.ErrInvalidCredentials
	}

	token, err := uc.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (uc *AuthUseCase) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(uc.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}

// ParseToken verifies a token and returns the user id it was issued for.
func (uc *AuthUseCase) ParseToken(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrInvalidToken
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", errs.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (uc *AuthUseCase) GetUser(ctx context.Context, id string) (*entities.User, error) {
	return uc.UserRepo.GetByID(ctx, id)
}
