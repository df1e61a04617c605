// Package orders отдает заказы клиента и проверяет, что клиент видит только свои заказы.
package orders

import (
	"context"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Source источник заказов (ERP)
type Source interface {
	SalesOrders(ctx context.Context, customerID domain.CustomerID, tranID string, limit, offset int) ([]domain.Order, error)
	OrderDetails(ctx context.Context, salesOrderNumber string) (*domain.Order, error)
}

// Outcome результат поиска заказа
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeNotOwned
	OutcomeUpstreamError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNotOwned:
		return "not_owned"
	case OutcomeUpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Lookup результат поиска заказа. Order заполнен только для OutcomeFound,
// Err только для OutcomeUpstreamError.
type Lookup struct {
	Outcome Outcome
	Order   *domain.Order
	Err     error
}

// Visible true, если заказ можно показать клиенту
func (l Lookup) Visible() bool {
	return l.Outcome == OutcomeFound && l.Order != nil
}

// ListParams параметры постраничного списка
type ListParams struct {
	Page    int
	PerPage int
	TranID  string
}

// Offset смещение для ERP
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Validate проверяет границы страницы
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return pkgerrors.New(pkgerrors.ErrValidation, "page must be greater than or equal to 1")
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return pkgerrors.New(pkgerrors.ErrValidation, "per_page must be between 1 and 100")
	}
	return nil
}

// Service операции над заказами клиента
type Service struct {
	source Source
	log    logger.Logger
}

// NewService создает сервис заказов
func NewService(source Source, log logger.Logger) *Service {
	return &Service{source: source, log: log}
}

// ListOrders постраничный список заказов клиента. Фильтр по клиенту
// всегда применяется источником, tranID только сужает выборку.
func (s *Service) ListOrders(ctx context.Context, customerID domain.CustomerID, params ListParams) ([]domain.Order, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.source.SalesOrders(ctx, customerID, params.TranID, params.PerPage, params.Offset())
	if err != nil {
		return nil, s.upstreamError(ctx, "list orders", err)
	}

	return s.ownedOnly(ctx, customerID, orders), nil
}

// RecentOrders последние заказы клиента, новые первыми
func (s *Service) RecentOrders(ctx context.Context, customerID domain.CustomerID, limit int) ([]domain.Order, error) {
	orders, err := s.source.SalesOrders(ctx, customerID, "", limit, 0)
	if err != nil {
		return nil, s.upstreamError(ctx, "recent orders", err)
	}
	return s.ownedOnly(ctx, customerID, orders), nil
}

// OrderDetailsForCustomer ищет заказ и проверяет владельца. Чужой заказ
// неотличим для клиента от отсутствующего, различие видно только в Outcome.
func (s *Service) OrderDetailsForCustomer(ctx context.Context, customerID domain.CustomerID, salesOrderNumber string) Lookup {
	order, err := s.source.OrderDetails(ctx, salesOrderNumber)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.ErrValidation) {
			s.log.Debug("Rejected order number",
				logger.CtxField(ctx),
				logger.String("sales_order_number", salesOrderNumber))
			return Lookup{Outcome: OutcomeNotFound}
		}
		s.log.Error("Order detail lookup failed",
			logger.CtxField(ctx),
			logger.String("sales_order_number", salesOrderNumber),
			logger.Error(err))
		return Lookup{Outcome: OutcomeUpstreamError, Err: err}
	}

	if order == nil {
		return Lookup{Outcome: OutcomeNotFound}
	}

	if !order.OwnedBy(customerID) {
		s.log.Warn("Order ownership mismatch",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()),
			logger.String("sales_order_number", salesOrderNumber))
		return Lookup{Outcome: OutcomeNotOwned}
	}

	return Lookup{Outcome: OutcomeFound, Order: order}
}

// ownedOnly отбрасывает заказы других клиентов, даже если источник их вернул
func (s *Service) ownedOnly(ctx context.Context, customerID domain.CustomerID, orders []domain.Order) []domain.Order {
	owned := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.OwnedBy(customerID) {
			owned = append(owned, o)
			continue
		}
		s.log.Warn("Dropping order of another customer",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()),
			logger.String("sales_order_number", o.SalesOrderNumber))
	}
	return owned
}

func (s *Service) upstreamError(ctx context.Context, op string, err error) error {
	if pkgerrors.HasCode(err, pkgerrors.ErrValidation) {
		return err
	}
	s.log.Error("Order source call failed",
		logger.CtxField(ctx),
		logger.String("operation", op),
		logger.Error(err))
	return pkgerrors.Wrap(err, pkgerrors.ErrUpstreamUnavailable, "Order service unavailable. Please try again later.")
}
