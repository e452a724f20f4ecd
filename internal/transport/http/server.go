package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"aichat-backend/internal/bootstrap"
	"aichat-backend/internal/transport/http/handler"
	"aichat-backend/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(app.Logger),
		middleware.AccessLog(app.Logger),
		middleware.Metrics(app.Metrics),
	)

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, app.HealthChecks)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	cookie := handler.CookieConfig{
		Name:   app.Config.Auth.CookieName,
		MaxAge: time.Duration(app.Config.Auth.JWTExpireMinute) * time.Minute,
		Secure: app.Config.IsProduction(),
	}
	authHandler := handler.NewAuthHandler(app.AuthService, cookie, app.Logger)
	chatHandler := handler.NewChatHandler(app.ChatService, app.Logger)

	credentials := []gin.HandlerFunc{}
	if app.RateLimiter != nil {
		credentials = append(credentials, middleware.AuthRateLimit(app.RateLimiter, app.Logger))
	}
	router.POST("/register", append(credentials, authHandler.Register)...)
	router.POST("/login", append(credentials, authHandler.Login)...)
	router.POST("/logout", authHandler.Logout)

	secured := router.Group("/")
	secured.Use(middleware.Session(app.AuthService, app.Config.Auth.CookieName, app.Logger))
	secured.GET("/profile", authHandler.Profile)
	secured.GET("/me", authHandler.Me)
	secured.POST("/chat", chatHandler.SendMessage)
	secured.POST("/chat/:chatId", chatHandler.SendMessage)
	secured.GET("/chats", chatHandler.ListChats)
	secured.GET("/chat/:chatId", chatHandler.GetChat)

	return router
}
