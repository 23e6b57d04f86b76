package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/types"
)

const avatarSize = 512

var avatarPalette = []color.NRGBA{
	{R: 0x4C, G: 0x6E, B: 0xF5, A: 0xFF},
	{R: 0xF5, G: 0x6A, B: 0x4C, A: 0xFF},
	{R: 0x2E, G: 0xA4, B: 0x6B, A: 0xFF},
	{R: 0x9B, G: 0x59, B: 0xB6, A: 0xFF},
	{R: 0xE6, G: 0x7E, B: 0x22, A: 0xFF},
	{R: 0x16, G: 0xA0, B: 0x85, A: 0xFF},
	{R: 0xC0, G: 0x39, B: 0x2B, A: 0xFF},
	{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF},
}

// AvatarService renders a deterministic initials avatar at registration and
// normalizes uploaded avatar images before they reach the bucket.
type AvatarService interface {
	GenerateInitialsAvatar(ctx context.Context, user *types.User) (*bytes.Buffer, error)
	CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error
	NormalizeImage(raw []byte, maxDim int) (*bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService BucketService
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, bucketService BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("env var AVATAR_FONT is empty")
	}
	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		fontFace:      face,
	}, nil
}

func loadFontFace(path string, points float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

func (as *avatarService) GenerateInitialsAvatar(ctx context.Context, user *types.User) (*bytes.Buffer, error) {
	initials := avatarInitials(user.Username)
	bg := avatarPalette[avatarColorIndex(user.ID.String())]

	dc := gg.NewContext(avatarSize, avatarSize)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials, avatarSize/2, avatarSize/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode avatar png: %w", err)
	}
	return &buf, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error {
	buf, err := as.GenerateInitialsAvatar(ctx, user)
	if err != nil {
		return err
	}

	// Versioned key: CDNs may ignore query params, so the key itself changes.
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())
	if err := as.bucketService.UploadFile(ctx, newKey, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(newKey)
	return nil
}

// NormalizeImage decodes raw, downscales it so neither dimension exceeds
// maxDim, and re-encodes as PNG.
func (as *avatarService) NormalizeImage(raw []byte, maxDim int) (*bytes.Buffer, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDim || h > maxDim {
		scale := float64(maxDim) / float64(w)
		if h > w {
			scale = float64(maxDim) / float64(h)
		}
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &buf, nil
}

func avatarInitials(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "?"
	}
	parts := strings.FieldsFunc(username, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	})
	if len(parts) >= 2 {
		return strings.ToUpper(string([]rune(parts[0])[0]) + string([]rune(parts[1])[0]))
	}
	runes := []rune(username)
	if len(runes) >= 2 {
		return strings.ToUpper(string(runes[0:2]))
	}
	return strings.ToUpper(string(runes[0]))
}

func avatarColorIndex(seed string) int {
	var sum int
	for _, b := range []byte(seed) {
		sum += int(b)
	}
	return sum % len(avatarPalette)
}
