package v1

import (
	"github.com/gin-gonic/gin"

	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	auth     *auth.Validator
}

func NewRoutes(provider *handlers.Provider, authValidator *auth.Validator) *Routes {
	return &Routes{handlers: provider, auth: authValidator}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	// Catalog and streaming
	group.GET("/videos", r.handlers.Video.List)
	group.GET("/videos/search", r.handlers.Video.Search)
	group.GET("/videos/genres", r.handlers.Video.Genres)
	group.GET("/videos/tag/:tagName", r.handlers.Video.ByTag)
	group.GET("/videos/:id", r.handlers.Video.Get)
	group.GET("/videos/:id/stream", r.handlers.Video.Stream)
	group.GET("/videos/:id/stream-url", r.handlers.Video.StreamURL)
	group.POST("/videos", r.auth.RequireRole(auth.RoleUploader), r.handlers.Video.Upload)
	group.PATCH("/videos/:id", r.auth.RequireRole(auth.RoleUploader), r.handlers.Video.Update)
	group.PATCH("/videos/:id/status", r.auth.RequireRole(auth.RoleAdmin), r.handlers.Video.UpdateStatus)
	group.DELETE("/videos/:id", r.handlers.Video.Delete)

	// Local file serving; the key may contain slashes
	group.GET("/files/*key", r.handlers.File.Serve)

	// Comments
	group.GET("/videos/:id/comments", r.handlers.Comment.Thread)
	group.POST("/videos/:id/comments", r.handlers.Comment.Add)
	group.DELETE("/comments/:commentId", r.handlers.Comment.Delete)

	// Ratings
	group.GET("/videos/:id/rating", r.handlers.Rating.Summary)
	group.PUT("/videos/:id/rating", r.handlers.Rating.Rate)

	// Watch history
	group.GET("/history", r.handlers.History.List)
	group.PUT("/history/:videoId", r.handlers.History.Record)

	// Plans and simulated payments
	group.GET("/plans", r.handlers.Payment.Plans)
	group.POST("/payments/checkout", r.handlers.Payment.Checkout)
	group.GET("/payments/transactions", r.handlers.Payment.Transactions)
	group.GET("/payments/subscription", r.handlers.Payment.Subscription)
}
