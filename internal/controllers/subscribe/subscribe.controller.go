package subscribeController

import (
	"context"
	"errors"
	"strings"

	"linkpage/internal/metrics"
	"linkpage/internal/repositories"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
)

const SubscribedMessage = "Thanks for subscribing!"

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

type SubscribeResponse struct {
	Message string `json:"message"`
}

type SubscribeControllerInterface interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error)
}

type SubscribeController struct {
	subscribers repositories.SubscriberRepository
	validate    *validator.Validate
	log         logger.Logger
}

func New(repos repositories.Repository) SubscribeControllerInterface {
	return &SubscribeController{
		subscribers: repos.Subscriber,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         logger.New("subscribeController"),
	}
}

// Subscribe adds an address to the newsletter list. Repeat addresses are a
// conflict, not a silent success.
func (c *SubscribeController) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("Subscribe")

	req.Email = strings.TrimSpace(req.Email)
	if err := c.validate.Struct(req); err != nil {
		metrics.NewsletterSubscribes.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, log.ErrorWithType(types.ErrValidation, "a valid email address is required")
	}

	if _, err := c.subscribers.Create(ctx, req.Email); err != nil {
		if errors.Is(err, types.ErrConflict) {
			metrics.NewsletterSubscribes.WithLabelValues(metrics.ResultDuplicate).Inc()
			return nil, log.ErrorWithType(types.ErrConflict, "already subscribed")
		}
		metrics.NewsletterSubscribes.WithLabelValues(metrics.ResultError).Inc()
		return nil, log.Err("failed to store subscriber", err)
	}

	metrics.NewsletterSubscribes.WithLabelValues(metrics.ResultSuccess).Inc()
	return &SubscribeResponse{Message: SubscribedMessage}, nil
}
