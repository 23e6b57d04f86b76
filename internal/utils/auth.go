package utils

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/normalization"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/types"
)

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, user *types.User) error {
	if user == nil {
		return apperr.New(apperr.KindValidation, "no user given, cannot proceed with registration")
	}
	if user.Username == "" {
		return apperr.New(apperr.KindValidation, "a username is required to register")
	}
	if user.Email == "" {
		return apperr.New(apperr.KindValidation, "an email is required to register")
	}
	if user.Password == "" {
		return apperr.New(apperr.KindValidation, "a password is required to register")
	}
	emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "failed to check user email", err)
	}
	if emailExists {
		return apperr.New(apperr.KindConflict, "email is already in use")
	}
	usernameExists, err := userRepo.UsernameExists(ctx, nil, user.Username)
	if err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "failed to check username", err)
	}
	if usernameExists {
		return apperr.New(apperr.KindConflict, "username is already in use")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if email == "" {
		return apperr.New(apperr.KindValidation, "email is required to login")
	}
	if password == "" {
		return apperr.New(apperr.KindValidation, "password is required to login")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "failed to hash password", err)
	}
	user.Password = string(hashedPassword)
	return nil
}

func NormalizeUserFields(user *types.User) {
	user.Email = normalization.ParseInputString(user.Email)
	user.Username = normalization.ParseInputString(user.Username)
}
