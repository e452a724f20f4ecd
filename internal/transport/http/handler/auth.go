package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aichat-backend/internal/app"
	"aichat-backend/internal/pkg/logger"
	"aichat-backend/internal/transport/http/middleware"
	"aichat-backend/internal/transport/http/response"
)

// CookieConfig describes the session cookie written on login.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

type AuthHandler struct {
	authService *app.AuthService
	cookie      CookieConfig
	log         *zap.Logger
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EmailID   string `json:"emailId"`
	Password  string `json:"password"`
	Age       *int   `json:"age"`
}

type LoginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

func NewAuthHandler(authService *app.AuthService, cookie CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgBadRequest)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		EmailID:   req.EmailID,
		Password:  req.Password,
		Age:       req.Age,
	})
	if err != nil {
		var verr *app.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Error(c, http.StatusBadRequest, verr.Message)
		case errors.Is(err, app.ErrConflict):
			response.Error(c, http.StatusBadRequest, "Email already registered")
		default:
			logger.FromContext(c.Request.Context(), h.log).Error("register failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.MsgServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    result.User.Public(),
		"message": "Registered successfully",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgBadRequest)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		EmailID:  req.EmailID,
		Password: req.Password,
	})
	if err != nil {
		var verr *app.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Error(c, http.StatusBadRequest, verr.Message)
		case errors.Is(err, app.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			logger.FromContext(c.Request.Context(), h.log).Error("login failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.MsgServerError)
		}
		return
	}

	h.writeCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()), time.Time{})
	c.JSON(http.StatusOK, gin.H{
		"user":    result.User.Public(),
		"message": "Login successful",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), middleware.TokenFromRequest(c, h.cookie.Name))
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			response.Error(c, http.StatusBadRequest, verr.Message)
			return
		}
		logger.FromContext(c.Request.Context(), h.log).Error("logout failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.MsgServerError)
		return
	}

	h.writeCookie(c, "", -1, time.Unix(0, 0))
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), current.ID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "User not found")
			return
		}
		logger.FromContext(c.Request.Context(), h.log).Error("profile failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.MsgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Me echoes the user the session middleware attached.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user.Public(),
		"message": "Valid User",
	})
}

func (h *AuthHandler) writeCookie(c *gin.Context, value string, maxAge int, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.sameSite(),
	})
}
