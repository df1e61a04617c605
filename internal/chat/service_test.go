package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/internal/orders"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Reply(ctx context.Context, message string, orderContext interface{}, history []domain.ConversationTurn) (string, error) {
	args := m.Called(ctx, message, orderContext, history)
	return args.String(0), args.Error(1)
}

func newService(recent *mockRecent, lookup *mockLookup, assistant *mockAssistant) *Service {
	return NewService(newSelector(recent, lookup), assistant, logger.NewNop())
}

func TestRespond_SingleOrder(t *testing.T) {
	recent, lookup, assistant := &mockRecent{}, &mockLookup{}, &mockAssistant{}
	ctx := context.Background()
	list := acmeOrders()

	recent.On("GetRecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(list, nil)
	lookup.On("OrderDetailsForCustomer", ctx, domain.CustomerID("ACME01"), "1023").Return(found(list[1]))

	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: "robot", Content: "dropped"},
		{Role: domain.RoleAssistant, Content: " "},
	}
	assistant.On("Reply", ctx, "where is my order 1023?", SingleOrderContext{Order: list[1].Summary()},
		[]domain.ConversationTurn{{Role: domain.RoleUser, Content: "hi"}}).
		Return("Order 1023 has shipped.", nil)

	resp, err := newService(recent, lookup, assistant).Respond(ctx, "ACME01", Request{
		Message: "where is my order 1023?",
		History: history,
	})
	require.NoError(t, err)

	assert.Equal(t, "Order 1023 has shipped.", resp.Reply)
	require.NotNil(t, resp.OrderSummary)
	assert.Equal(t, "1023", resp.OrderSummary.SalesOrderNumber)
	assistant.AssertExpectations(t)
}

func TestRespond_NotFoundSkipsAssistant(t *testing.T) {
	recent, lookup, assistant := &mockRecent{}, &mockLookup{}, &mockAssistant{}
	ctx := context.Background()
	lookup.On("OrderDetailsForCustomer", ctx, domain.CustomerID("ACME01"), "2001").
		Return(orders.Lookup{Outcome: orders.OutcomeNotOwned})

	resp, err := newService(recent, lookup, assistant).Respond(ctx, "ACME01", Request{Message: "status?", OrderID: "2001"})
	require.NoError(t, err)

	assert.Equal(t, Response{Reply: NotFoundReply}, resp)
	assistant.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_AssistantFailure(t *testing.T) {
	recent, lookup, assistant := &mockRecent{}, &mockLookup{}, &mockAssistant{}
	ctx := context.Background()
	assistant.On("Reply", ctx, "hello", mock.Anything, mock.Anything).
		Return("", errors.New("anthropic: 529 overloaded_error"))

	_, err := newService(recent, lookup, assistant).Respond(ctx, "ACME01", Request{Message: "hello"})

	require.True(t, pkgerrors.HasCode(err, pkgerrors.ErrUpstreamUnavailable))
	customErr, _ := pkgerrors.As(err)
	assert.Equal(t, "AI service unavailable. Please try again later.", customErr.GetUserMessage())
	assert.Equal(t, 500, customErr.HTTPStatus())
}

func TestRespond_ListFailure(t *testing.T) {
	recent, lookup, assistant := &mockRecent{}, &mockLookup{}, &mockAssistant{}
	ctx := context.Background()
	recent.On("GetRecentOrders", ctx, domain.CustomerID("ACME01"), 15).Return(nil, errors.New("connection reset"))

	_, err := newService(recent, lookup, assistant).Respond(ctx, "ACME01", Request{Message: "order status"})

	require.True(t, pkgerrors.HasCode(err, pkgerrors.ErrUpstreamUnavailable))
	customErr, _ := pkgerrors.As(err)
	assert.NotContains(t, customErr.GetUserMessage(), "connection reset")
	assistant.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_EmptyMessage(t *testing.T) {
	_, err := newService(&mockRecent{}, &mockLookup{}, &mockAssistant{}).Respond(context.Background(), "ACME01", Request{Message: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrValidation))
}

func TestRespond_GeneralWithoutOrderData(t *testing.T) {
	recent, lookup, assistant := &mockRecent{}, &mockLookup{}, &mockAssistant{}
	ctx := context.Background()
	assistant.On("Reply", ctx, "hello", GeneralContext{RecentOrders: []domain.Order{}, CustomerID: "ACME01"}, []domain.ConversationTurn{}).
		Return("Hi! How can I help?", nil)

	resp, err := newService(recent, lookup, assistant).Respond(ctx, "ACME01", Request{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hi! How can I help?", resp.Reply)
	assert.Nil(t, resp.OrderSummary)
	recent.AssertNotCalled(t, "GetRecentOrders", mock.Anything, mock.Anything, mock.Anything)
}
