package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/repos"
)

const (
	maxAvatarDim       = 512
	maxProductImageDim = 1600
)

// UploadService fronts the bucket for user-submitted images: avatars and
// product photos. Images are decoded and downscaled before storage.
type UploadService interface {
	UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (string, error)
	UploadProductImage(ctx context.Context, userID uuid.UUID, raw []byte) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

type uploadService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	bucketService BucketService
	avatarService AvatarService
}

func NewUploadService(log *logger.Logger, userRepo repos.UserRepo, bucketService BucketService, avatarService AvatarService) UploadService {
	serviceLog := log.With("service", "UploadService")
	return &uploadService{
		log:           serviceLog,
		userRepo:      userRepo,
		bucketService: bucketService,
		avatarService: avatarService,
	}
}

func (us *uploadService) UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (string, error) {
	if us.bucketService == nil {
		return "", apperr.New(apperr.KindUpstream, "image storage is not configured")
	}
	buf, err := us.normalize(raw, maxAvatarDim)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("user_avatar/%s/%d.png", userID.String(), time.Now().UnixNano())
	if err := us.bucketService.UploadFile(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to store avatar image", err)
	}

	url := us.bucketService.GetPublicURL(key)

	// Point the user record at the new object and clean up the old one.
	users, uErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if uErr == nil && len(users) > 0 {
		user := users[0]
		oldKey := user.AvatarBucketKey
		user.AvatarBucketKey = key
		user.AvatarURL = url
		if upErr := us.userRepo.Update(ctx, nil, user); upErr != nil {
			us.log.Warn("Failed to persist avatar reference", "user_id", userID, "error", upErr)
		} else if oldKey != "" && oldKey != key {
			if dErr := us.bucketService.DeleteFile(ctx, oldKey); dErr != nil {
				us.log.Warn("Failed to delete replaced avatar object", "key", oldKey, "error", dErr)
			}
		}
	}
	return url, nil
}

func (us *uploadService) UploadProductImage(ctx context.Context, userID uuid.UUID, raw []byte) (string, error) {
	if us.bucketService == nil {
		return "", apperr.New(apperr.KindUpstream, "image storage is not configured")
	}
	buf, err := us.normalize(raw, maxProductImageDim)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("product_image/%s/%d.png", userID.String(), time.Now().UnixNano())
	if err := us.bucketService.UploadFile(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to store product image", err)
	}
	return us.bucketService.GetPublicURL(key), nil
}

func (us *uploadService) DeleteImage(ctx context.Context, url string) error {
	if us.bucketService == nil {
		return apperr.New(apperr.KindUpstream, "image storage is not configured")
	}
	key := us.bucketService.DeriveKeyFromURL(url)
	if key == "" {
		return apperr.New(apperr.KindValidation, "url does not reference a stored image")
	}
	if err := us.bucketService.DeleteFile(ctx, key); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to delete image", err)
	}
	return nil
}

func (us *uploadService) normalize(raw []byte, maxDim int) (*bytes.Buffer, error) {
	if len(raw) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty image upload")
	}
	if us.avatarService == nil {
		return bytes.NewBuffer(raw), nil
	}
	buf, err := us.avatarService.NormalizeImage(raw, maxDim)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "could not decode uploaded image", err)
	}
	return buf, nil
}
