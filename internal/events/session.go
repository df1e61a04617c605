package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/pkg/logger"
	"OrderDeskPlatform/pkg/rabbitmq"
)

// Типы событий сессии
const (
	TypeLogin  = "session.login"
	TypeLogout = "session.logout"
)

// SessionEvent аудит входа и выхода клиента
type SessionEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CustomerID string    `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher публикует события сессий
type Publisher interface {
	LoggedIn(ctx context.Context, customerID domain.CustomerID)
	LoggedOut(ctx context.Context, customerID domain.CustomerID)
}

// Producer то, что нужно от rabbitmq.Producer
type Producer interface {
	Publish(ctx context.Context, body []byte, options ...rabbitmq.PublishOption) error
}

// SessionPublisher отправляет события в брокер. Ошибки публикации
// только логируются и не влияют на ответ клиенту.
type SessionPublisher struct {
	producer Producer
	log      logger.Logger
	now      func() time.Time
}

// NewSessionPublisher создает публикатор поверх продюсера RabbitMQ
func NewSessionPublisher(producer Producer, log logger.Logger) *SessionPublisher {
	return &SessionPublisher{producer: producer, log: log, now: time.Now}
}

// LoggedIn публикует session.login
func (p *SessionPublisher) LoggedIn(ctx context.Context, customerID domain.CustomerID) {
	p.publish(ctx, TypeLogin, customerID)
}

// LoggedOut публикует session.logout
func (p *SessionPublisher) LoggedOut(ctx context.Context, customerID domain.CustomerID) {
	p.publish(ctx, TypeLogout, customerID)
}

func (p *SessionPublisher) publish(ctx context.Context, eventType string, customerID domain.CustomerID) {
	event := SessionEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID.String(),
		Timestamp:  p.now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to encode session event", logger.CtxField(ctx), logger.Error(err))
		return
	}

	err = p.producer.Publish(ctx, body,
		rabbitmq.WithMessageID(event.ID),
		rabbitmq.WithType(eventType),
	)
	if err != nil {
		p.log.Warn("Failed to publish session event",
			logger.CtxField(ctx),
			logger.String("type", eventType),
			logger.String("customer_id", event.CustomerID),
			logger.Error(err))
		return
	}

	p.log.Debug("Session event published",
		logger.CtxField(ctx),
		logger.String("type", eventType),
		logger.String("event_id", event.ID))
}

// Noop ничего не публикует (RabbitMQ выключен)
type Noop struct{}

func (Noop) LoggedIn(context.Context, domain.CustomerID)  {}
func (Noop) LoggedOut(context.Context, domain.CustomerID) {}
