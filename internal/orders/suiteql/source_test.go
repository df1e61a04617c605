package suiteql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Query(ctx context.Context, query string, limit, offset int) ([]Row, error) {
	args := m.Called(ctx, query, limit, offset)
	rows, _ := args.Get(0).([]Row)
	return rows, args.Error(1)
}

func TestSource_SalesOrders(t *testing.T) {
	q := &mockQuerier{}
	source := NewSource(q, logger.NewNop())

	rows := []Row{
		{"sales_order_number": "1024", "order_date": "2024-05-03", "customer_id": "ACME01", "customer_name": "Acme Corp", "status": "Sales Order:Billed", "order_total": json.Number("99.90")},
		{"order_date": "2024-05-02"},
		{"sales_order_number": "1023", "customer_id": "ACME01", "order_total": "not-a-number"},
		{"sales_order_number": "1022", "customer_id": "ACME01"},
	}
	q.On("Query", mock.Anything, mock.AnythingOfType("string"), 10, 20).Return(rows, nil)

	orders, err := source.SalesOrders(context.Background(), "ACME01", "", 10, 20)
	require.NoError(t, err)

	require.Len(t, orders, 2, "invalid rows are skipped")
	assert.Equal(t, "1024", orders[0].SalesOrderNumber)
	assert.Equal(t, "Shipped", orders[0].DisplayStatus())
	require.NotNil(t, orders[0].OrderTotal)
	assert.Equal(t, 99.90, *orders[0].OrderTotal)
	assert.Equal(t, "1022", orders[1].SalesOrderNumber)
	assert.Nil(t, orders[1].OrderTotal)
}

func TestSource_SalesOrders_UnsafeFilter(t *testing.T) {
	q := &mockQuerier{}
	source := NewSource(q, logger.NewNop())

	_, err := source.SalesOrders(context.Background(), "ACME01", "1' OR 1=1 --", 10, 0)

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrValidation))
	q.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSource_SalesOrders_UpstreamError(t *testing.T) {
	q := &mockQuerier{}
	q.On("Query", mock.Anything, mock.Anything, 15, 0).Return(nil, errors.New("timeout"))

	_, err := NewSource(q, logger.NewNop()).SalesOrders(context.Background(), "ACME01", "", 15, 0)
	assert.EqualError(t, err, "timeout")
}

func TestSource_OrderDetails(t *testing.T) {
	q := &mockQuerier{}
	source := NewSource(q, logger.NewNop())

	header := Row{
		"sales_order_number": "1023",
		"order_date":         "2024-05-02",
		"customer_id":        "ACME01",
		"status":             "Sales Order:Pending Fulfillment",
		"order_total":        "125.5",
	}
	line := func(item string, qty, amount interface{}) Row {
		r := Row{}
		for k, v := range header {
			r[k] = v
		}
		r["item_number"] = item
		r["item_description"] = "Widget " + item
		r["item_unit"] = "ea"
		r["line_quantity"] = qty
		r["line_net_amount"] = amount
		return r
	}
	rows := []Row{
		line("W-1", "2", "100"),
		line("W-2", json.Number("1"), json.Number("25.5")),
		line("W-3", nil, "1"),
		line("W-4", "1.5", "1"),
	}
	q.On("Query", mock.Anything, mock.AnythingOfType("string"), 0, 0).Return(rows, nil)

	order, err := source.OrderDetails(context.Background(), "1023")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "Processing", order.DisplayStatus())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "W-1", order.Items[0].ItemNumber)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 100.0, order.Items[0].NetAmount)
	assert.Equal(t, 25.5, order.Items[1].NetAmount)
}

func TestSource_OrderDetails_NotFound(t *testing.T) {
	q := &mockQuerier{}
	q.On("Query", mock.Anything, mock.Anything, 0, 0).Return([]Row{}, nil)

	order, err := NewSource(q, logger.NewNop()).OrderDetails(context.Background(), "9999")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestSource_OrderDetails_UnsafeNumber(t *testing.T) {
	q := &mockQuerier{}

	_, err := NewSource(q, logger.NewNop()).OrderDetails(context.Background(), "1023' OR '1'='1")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrValidation))
	q.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
