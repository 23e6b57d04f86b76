package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/services"
	"github.com/yungbote/wishlink-backend/internal/types"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log, authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	user := types.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
		RespondError(c, ah.log, err)
		return
	}
	RespondCreated(c, gin.H{"user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		RespondError(c, ah.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "logged out successfully"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (ah *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ah.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	user, err := ah.authService.UpdateProfile(c.Request.Context(), services.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		RespondError(c, ah.log, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}
