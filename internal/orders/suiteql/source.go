package suiteql

import (
	"context"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

// Querier выполняет SuiteQL запрос (реализуется *Client)
type Querier interface {
	Query(ctx context.Context, query string, limit, offset int) ([]Row, error)
}

// Source источник заказов поверх SuiteQL
type Source struct {
	client Querier
	log    logger.Logger
}

// NewSource создает источник заказов
func NewSource(client Querier, log logger.Logger) *Source {
	return &Source{client: client, log: log}
}

// SalesOrders возвращает заказы клиента, новые первыми.
// Невалидные строки пропускаются с предупреждением.
func (s *Source) SalesOrders(ctx context.Context, customerID domain.CustomerID, tranID string, limit, offset int) ([]domain.Order, error) {
	if customerID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.ErrValidation, "Customer ID is required")
	}

	query, err := SalesOrdersQuery(customerID.String(), tranID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation, "Invalid order filter")
	}

	rows, err := s.client.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for i, row := range rows {
		order, err := decodeOrder(row)
		if err != nil {
			s.log.Warn("Skipping invalid order row",
				logger.CtxField(ctx),
				logger.Int("row", i),
				logger.Error(err))
			continue
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// OrderDetails возвращает заказ со строками или nil, если заказа нет.
// Владение здесь не проверяется.
func (s *Source) OrderDetails(ctx context.Context, salesOrderNumber string) (*domain.Order, error) {
	query, err := OrderDetailQuery(salesOrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation, "Invalid order number")
	}

	rows, err := s.client.Query(ctx, query, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	order, err := decodeOrder(rows[0])
	if err != nil {
		s.log.Warn("Invalid order header",
			logger.CtxField(ctx),
			logger.String("sales_order_number", salesOrderNumber),
			logger.Error(err))
		return nil, nil
	}

	for i, row := range rows {
		item, err := decodeItem(row)
		if err != nil {
			s.log.Warn("Skipping invalid order line",
				logger.CtxField(ctx),
				logger.String("sales_order_number", order.SalesOrderNumber),
				logger.Int("row", i),
				logger.Error(err))
			continue
		}
		order.Items = append(order.Items, item)
	}

	return &order, nil
}
