package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

// Config holds sender identity and guard settings
type Config struct {
	From       string
	FromName   string
	AdminEmail string
	ShopName   string
	BaseURL    string
	DedupTTL   time.Duration
}

// Notifier wraps a raw sender with validation, duplicate suppression and per-recipient rate limiting
type Notifier struct {
	sender       gateway.EmailSender
	dedup        persistence.DeduplicationStore
	limiter      persistence.RateLimiter
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewNotifier creates a notifier
func NewNotifier(
	sender gateway.EmailSender,
	dedup persistence.DeduplicationStore,
	limiter persistence.RateLimiter,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Notifier {
	if config.DedupTTL <= 0 {
		config.DedupTTL = entity.DefaultDedupTTL
	}
	if config.ShopName == "" {
		config.ShopName = "Farm Storefront"
	}
	return &Notifier{
		sender:       sender,
		dedup:        dedup,
		limiter:      limiter,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Send delivers email once per order and type. E-mails without an order ID are never deduplicated.
// A failed delivery forgets the mark so the e-mail can be retried.
func (n *Notifier) Send(ctx context.Context, email *entity.Email) (*entity.NotificationResult, error) {
	if email.From == "" {
		email.From = n.config.From
		email.FromName = n.config.FromName
	}
	if err := email.Validate(); err != nil {
		return nil, err
	}

	dedupKey := ""
	if email.OrderID != "" {
		dedupKey = entity.DedupKey(email.OrderID, email.Type)
		fresh, err := n.dedup.MarkIfAbsent(ctx, dedupKey, n.config.DedupTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			n.logger.Warn("Duplicate notification suppressed", map[string]any{
				"orderId": email.OrderID,
				"type":    string(email.Type),
			})
			return &entity.NotificationResult{Success: false, Duplicate: true}, nil
		}
	}

	allowed, err := n.limiter.Allow(ctx, strings.ToLower(email.To))
	if err != nil {
		n.forget(ctx, dedupKey)
		return nil, err
	}
	if !allowed {
		n.forget(ctx, dedupKey)
		n.logger.Warn("Notification rate limit exceeded", map[string]any{
			"to":      email.To,
			"type":    string(email.Type),
			"orderId": email.OrderID,
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrNotificationRateLimited, email.To)
	}

	receipt, err := n.sender.Send(ctx, email)
	if err != nil {
		n.forget(ctx, dedupKey)
		n.logger.Error("Failed to send notification", map[string]any{
			"to":      email.To,
			"type":    string(email.Type),
			"orderId": email.OrderID,
			"error":   err.Error(),
		})
		return nil, err
	}

	n.logger.Info("Notification sent", map[string]any{
		"type":      string(email.Type),
		"orderId":   email.OrderID,
		"messageId": receipt.MessageID,
		"provider":  receipt.Provider,
	})
	return &entity.NotificationResult{Success: true, Receipt: receipt}, nil
}

func (n *Notifier) forget(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := n.dedup.Forget(ctx, key); err != nil {
		n.logger.Warn("Failed to reset duplicate mark", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}
