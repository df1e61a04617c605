package chat

import (
	"context"
	"strings"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

const (
	// NotFoundReply ответ, когда заказ не найден или принадлежит другому клиенту
	NotFoundReply = "Sorry, I couldn't find that order. Could you please confirm the order number?"

	assistantUnavailable = "AI service unavailable. Please try again later."
)

// Assistant генерирует ответ по сообщению, контексту заказов и истории
type Assistant interface {
	Reply(ctx context.Context, message string, orderContext interface{}, history []domain.ConversationTurn) (string, error)
}

// Request сообщение клиента
type Request struct {
	Message string
	OrderID string
	History []domain.ConversationTurn
}

// Response ответ ассистента и, возможно, сводка заказа для UI
type Response struct {
	Reply        string               `json:"reply"`
	OrderSummary *domain.OrderSummary `json:"order_summary"`
}

// Service обрабатывает одно сообщение чата
type Service struct {
	selector  *Selector
	assistant Assistant
	log       logger.Logger
}

// NewService создает сервис чата
func NewService(selector *Selector, assistant Assistant, log logger.Logger) *Service {
	return &Service{selector: selector, assistant: assistant, log: log}
}

// Respond выбирает контекст и запрашивает ответ ассистента.
// Детали ошибок ERP и ассистента остаются в логах.
func (s *Service) Respond(ctx context.Context, customerID domain.CustomerID, req Request) (Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, pkgerrors.New(pkgerrors.ErrValidation, "message is required")
	}

	selection, err := s.selector.Select(ctx, customerID, req.Message, req.OrderID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.ErrUpstreamUnavailable) {
			return Response{}, err
		}
		s.log.Error("Failed to load recent orders for chat",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()),
			logger.Error(err))
		return Response{}, pkgerrors.Wrap(err, pkgerrors.ErrUpstreamUnavailable, "Order service unavailable. Please try again later.")
	}

	if selection.Path == PathOrderNotFound {
		return Response{Reply: NotFoundReply}, nil
	}

	reply, err := s.assistant.Reply(ctx, req.Message, selection.Context, domain.FilterTurns(req.History))
	if err != nil {
		s.log.Error("Assistant call failed",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()),
			logger.Error(err))
		return Response{}, pkgerrors.Wrap(err, pkgerrors.ErrUpstreamUnavailable, assistantUnavailable)
	}

	return Response{Reply: reply, OrderSummary: selection.Summary}, nil
}
