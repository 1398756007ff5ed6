package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/eventra/entrypass/internal/config"
	"github.com/eventra/entrypass/internal/events"
)

// Publisher is the outbound message channel for participant notifications.
// persistence.Redis satisfies it; tests substitute a recorder.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService forwards domain events to participants over pub/sub.
// It runs strictly after the durable transition; a delivery failure is
// logged and dropped, never propagated back into the core.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketIssued)
	n.dispatcher.Subscribe(events.EventTicketRedeemed, n.handleTicketRedeemed)
}

func (n *NotificationService) handleTicketIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketIssuedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketIssued",
		zap.String("ticket_id", event.TicketID),
		zap.String("participant_id", payload.ParticipantID))
	n.notify(ctx, payload.ParticipantID, event)
	return nil
}

func (n *NotificationService) handleTicketRedeemed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRedeemedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketRedeemed",
		zap.String("ticket_id", event.TicketID),
		zap.String("participant_id", payload.ParticipantID))
	n.notify(ctx, payload.ParticipantID, event)
	return nil
}

func (n *NotificationService) notify(ctx context.Context, participantID string, event events.Event) {
	if !n.cfg.Enabled || n.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := n.cfg.ChannelPrefix + ":" + participantID
	if err := n.publisher.Publish(ctx, channel, body); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("channel", channel),
			zap.Error(err))
	}
}
