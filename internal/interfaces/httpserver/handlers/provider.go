package handlers

import (
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
)

// Provider wires HTTP handlers.
type Provider struct {
	Video   *VideoHandler
	File    *FileHandler
	Comment *CommentHandler
	Rating  *RatingHandler
	History *HistoryHandler
	Payment *PaymentHandler
}

// Services bundles the domain services the HTTP layer depends on.
type Services struct {
	Video   VideoService
	Comment CommentService
	Rating  RatingService
	History HistoryService
	Payment PaymentService
}

func NewProvider(cfg *config.Config, services Services, backend storage.Backend, log zerolog.Logger) *Provider {
	return &Provider{
		Video:   NewVideoHandler(cfg, services.Video, log),
		File:    NewFileHandler(backend, log),
		Comment: NewCommentHandler(services.Comment, log),
		Rating:  NewRatingHandler(services.Rating, log),
		History: NewHistoryHandler(services.History, log),
		Payment: NewPaymentHandler(services.Payment, log),
	}
}
