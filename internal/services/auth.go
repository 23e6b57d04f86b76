package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/normalization"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/requestdata"
	"github.com/yungbote/wishlink-backend/internal/types"
	"github.com/yungbote/wishlink-backend/internal/utils"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type ProfileUpdate struct {
	Username  *string
	Email     *string
	AvatarURL *string
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	Me(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	bucketService BucketService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	bucketService BucketService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		bucketService: bucketService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(user)
	if vErr := utils.ValidateRegistration(ctx, as.userRepo, user); vErr != nil {
		return vErr
	}
	if hErr := utils.HashPassword(user); hErr != nil {
		return hErr
	}
	user.ID = uuid.New()
	// Avatar generation is optional plumbing: a missing font or bucket
	// should not block registration.
	if as.avatarService != nil && as.bucketService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, user); err != nil {
			as.log.Warn("Failed to create initial user avatar", "error", err, "user_id", user.ID)
		}
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to create user", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)

	if vErr := utils.ValidateLogin(email, password); vErr != nil {
		return "", "", vErr
	}

	users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if usErr != nil {
		return "", "", apperr.Wrap(apperr.KindUnexpected, "error retrieving user by email", usErr)
	}
	if len(users) == 0 {
		return "", "", apperr.New(apperr.KindAuthentication, "invalid email or password")
	}

	user := users[0]
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", "", apperr.New(apperr.KindAuthentication, "invalid email or password")
	}

	var accessToken string
	var refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if ftErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to check user tokens", ftErr)
		}
		// Clean out expired sessions; concurrent valid sessions stay.
		var expiredIDs []uuid.UUID
		for _, t := range foundTokens {
			if t.ExpiresAt.Before(time.Now()) {
				expiredIDs = append(expiredIDs, t.ID)
			}
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, expiredIDs); dErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to delete expired user tokens", dErr)
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to generate access token", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to create user token", ctErr)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", apperr.New(apperr.KindAuthentication, "no refresh token in request context")
	}

	var accessToken string
	var newRefreshTokenStr string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if ftErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "error fetching refresh token", ftErr)
		}
		if len(foundTokens) == 0 {
			return apperr.New(apperr.KindAuthentication, "unknown refresh token")
		}
		existingToken := foundTokens[0]
		if existingToken.ExpiresAt.Before(time.Now()) {
			if dtErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dtErr != nil {
				return apperr.Wrap(apperr.KindUnexpected, "refresh token expired, error deleting", dtErr)
			}
			return apperr.New(apperr.KindAuthentication, "refresh token expired")
		}
		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
		if uErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to load user for refresh", uErr)
		}
		if len(users) == 0 {
			return apperr.New(apperr.KindAuthentication, "no user found for the given refresh token")
		}
		user := users[0]
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to generate new access token", genErr)
		}
		accessToken = tok
		newRefreshTokenStr = uuid.New().String()
		newUserToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  tok,
			RefreshToken: newRefreshTokenStr,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken}); cErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to create new user token", cErr)
		}
		if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to remove old refresh token", dErr)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshTokenStr, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apperr.New(apperr.KindAuthentication, "no token in request context")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if ftErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "error finding user token", ftErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if tdErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID}); tdErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "error deleting user token", tdErr)
		}
		return nil
	})
}

func (as *authService) Me(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.New(apperr.KindAuthentication, "not authenticated")
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to load user", err)
	}
	if len(users) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	return users[0], nil
}

func (as *authService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error) {
	user, err := as.Me(ctx)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := normalization.ParseInputString(*update.Username)
		if username == "" {
			return nil, apperr.New(apperr.KindValidation, "username cannot be empty")
		}
		if username != user.Username {
			exists, exErr := as.userRepo.UsernameExists(ctx, nil, username)
			if exErr != nil {
				return nil, apperr.Wrap(apperr.KindUnexpected, "failed to check username", exErr)
			}
			if exists {
				return nil, apperr.New(apperr.KindConflict, "username is already in use")
			}
			user.Username = username
		}
	}
	if update.Email != nil {
		email := normalization.ParseInputString(*update.Email)
		if email == "" {
			return nil, apperr.New(apperr.KindValidation, "email cannot be empty")
		}
		if email != user.Email {
			exists, exErr := as.userRepo.EmailExists(ctx, nil, email)
			if exErr != nil {
				return nil, apperr.Wrap(apperr.KindUnexpected, "failed to check email", exErr)
			}
			if exists {
				return nil, apperr.New(apperr.KindConflict, "email is already in use")
			}
			user.Email = email
		}
	}
	if update.AvatarURL != nil {
		oldKey := user.AvatarBucketKey
		user.AvatarURL = *update.AvatarURL
		user.AvatarBucketKey = ""
		if as.bucketService != nil {
			user.AvatarBucketKey = as.bucketService.DeriveKeyFromURL(*update.AvatarURL)
			// Best-effort cleanup of the replaced avatar object.
			if oldKey != "" && oldKey != user.AvatarBucketKey {
				if dErr := as.bucketService.DeleteFile(ctx, oldKey); dErr != nil {
					as.log.Warn("Failed to delete old avatar object", "key", oldKey, "error", dErr)
				}
			}
		}
	}

	if err := as.userRepo.Update(ctx, nil, user); err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to update profile", err)
	}
	return user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apperr.New(apperr.KindAuthentication, "missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apperr.Wrap(apperr.KindAuthentication, "failed to parse token", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apperr.New(apperr.KindAuthentication, "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apperr.Wrap(apperr.KindAuthentication, "invalid user id in token", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if ftErr != nil {
		return ctx, apperr.Wrap(apperr.KindUnexpected, "failed to fetch session for token", ftErr)
	}
	if len(foundTokens) > 0 {
		rd.RefreshToken = foundTokens[0].RefreshToken
		rd.SessionID = foundTokens[0].ID
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
