package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

func ValidateUsername(username string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength {
		return fmt.Errorf("%w: your user name is too short", models.ErrInvalid)
	}
	return nil
}

// ValidatePassword requires [MinPasswordLength] characters including an upper case letter,
// a lower case letter and a digit.
func ValidatePassword(password string) error {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength || !upper || !lower || !digit {
		return fmt.Errorf("%w: your password must be at least %d characters, and contain an upper case letter, a lower case letter and a digit",
			models.ErrInvalid, MinPasswordLength)
	}
	return nil
}

// RegisterUser validates the credentials, hashes the password and stores a user with a generated id.
func RegisterUser(ctx context.Context, repo repositories.Repository, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := repo.GetUser(ctx, username); err == nil {
		return nil, ErrNameNotUnique
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := models.NewUser(shared.GenerateNumericID(), username, string(hash))
	if err != nil {
		return nil, err
	}

	if err := repo.AddUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrNameNotUnique
		}
		return nil, err
	}
	return user, nil
}

// AuthenticateUser checks the password against the stored hash.
// An unknown user and a wrong password both return [ErrAuthentication].
func AuthenticateUser(ctx context.Context, repo repositories.Repository, username, password string) (*models.User, error) {
	user, err := repo.GetUser(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, ErrAuthentication
	}
	return user, nil
}

func GetUser(ctx context.Context, repo repositories.Repository, username string) (UserView, error) {
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return UserView{}, translate(err, ErrUnknownUser)
	}
	return NewUserView(user), nil
}
