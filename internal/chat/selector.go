// Package chat решает, какие заказы показать ассистенту на каждое сообщение клиента.
package chat

import (
	"context"
	"strings"
	"unicode"

	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/internal/orders"
	"OrderDeskPlatform/pkg/logger"
)

// RecentOrdersPageSize размер списка последних заказов для контекста
const RecentOrdersPageSize = 15

var (
	orderKeywords = []string{
		"order", "status", "latest", "recent", "shipment",
		"shipping", "delivery", "track", "when will", "where is",
		"show", "tell", "about", "details", "what", "info", "information",
	}
	// вопросы про несколько заказов: сводку по последнему не прикладываем
	comparativeKeywords = []string{"compare", "all", "orders", "list", "show me orders"}
)

// RecentOrders кеш последних заказов
type RecentOrders interface {
	GetRecentOrders(ctx context.Context, customerID domain.CustomerID, pageSize int) ([]domain.Order, error)
}

// OrderLookup поиск заказа с проверкой владельца
type OrderLookup interface {
	OrderDetailsForCustomer(ctx context.Context, customerID domain.CustomerID, salesOrderNumber string) orders.Lookup
}

// Path выбранная ветка
type Path int

const (
	// PathGeneral в контекст уходит список последних заказов (возможно пустой)
	PathGeneral Path = iota
	// PathSingleOrder в контекст уходит сводка одного заказа
	PathSingleOrder
	// PathOrderNotFound заказ не найден или чужой, ассистент не вызывается
	PathOrderNotFound
)

// SingleOrderContext контекст ассистента для одного заказа
type SingleOrderContext struct {
	Order domain.OrderSummary `json:"order"`
}

// GeneralContext контекст ассистента со списком заказов
type GeneralContext struct {
	RecentOrders []domain.Order    `json:"recent_orders"`
	CustomerID   domain.CustomerID `json:"customer_id"`
}

// Selection решение селектора
type Selection struct {
	Path    Path
	OrderID string
	// Context сериализуется в JSON и передается ассистенту
	Context interface{}
	// Summary сводка для UI, может отсутствовать
	Summary *domain.OrderSummary
}

// Selector выбирает контекст заказа для сообщения
type Selector struct {
	recent   RecentOrders
	lookup   OrderLookup
	pageSize int
	log      logger.Logger
}

// NewSelector создает селектор
func NewSelector(recent RecentOrders, lookup OrderLookup, pageSize int, log logger.Logger) *Selector {
	if pageSize <= 0 {
		pageSize = RecentOrdersPageSize
	}
	return &Selector{recent: recent, lookup: lookup, pageSize: pageSize, log: log}
}

// NeedsOrders true, если сообщение похоже на вопрос о заказах
// (ключевое слово или хотя бы одна цифра)
func NeedsOrders(message string) bool {
	return containsAny(strings.ToLower(message), orderKeywords) || containsDigit(message)
}

// IsComparative true для вопросов о нескольких заказах
func IsComparative(message string) bool {
	return containsAny(strings.ToLower(message), comparativeKeywords)
}

// ResolveOrderID ищет номер заказа из списка внутри сообщения.
// Побеждает первое совпадение в порядке списка.
func ResolveOrderID(message string, recent []domain.Order) string {
	lower := strings.ToLower(message)
	for _, o := range recent {
		number := strings.TrimSpace(o.SalesOrderNumber)
		if number == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(number)) {
			return number
		}
	}
	return ""
}

// Select принимает решение для одного сообщения. Ошибка возвращается только
// если не удалось загрузить список заказов для общей ветки.
func (s *Selector) Select(ctx context.Context, customerID domain.CustomerID, message, explicitOrderID string) (Selection, error) {
	orderID := strings.TrimSpace(explicitOrderID)

	recent := []domain.Order{}
	if orderID == "" && NeedsOrders(message) {
		fetched, err := s.recent.GetRecentOrders(ctx, customerID, s.pageSize)
		if err != nil {
			return Selection{}, err
		}
		recent = ownedBy(customerID, fetched)
		orderID = ResolveOrderID(message, recent)
	}

	if orderID != "" {
		return s.singleOrder(ctx, customerID, orderID), nil
	}

	selection := Selection{
		Path: PathGeneral,
		Context: GeneralContext{
			RecentOrders: recent,
			CustomerID:   customerID,
		},
	}
	lower := strings.ToLower(message)
	if len(recent) > 0 && containsAny(lower, orderKeywords) && !containsAny(lower, comparativeKeywords) {
		summary := recent[0].Summary()
		selection.Summary = &summary
	}

	s.log.Debug("Chat context selected",
		logger.CtxField(ctx),
		logger.String("path", "general"),
		logger.Int("recent_orders", len(recent)),
		logger.Bool("default_summary", selection.Summary != nil))

	return selection, nil
}

func (s *Selector) singleOrder(ctx context.Context, customerID domain.CustomerID, orderID string) Selection {
	lookup := s.lookup.OrderDetailsForCustomer(ctx, customerID, orderID)

	s.log.Debug("Chat context selected",
		logger.CtxField(ctx),
		logger.String("path", "single_order"),
		logger.String("order_id", orderID),
		logger.String("outcome", lookup.Outcome.String()))

	if !lookup.Visible() {
		return Selection{Path: PathOrderNotFound, OrderID: orderID}
	}

	summary := lookup.Order.Summary()
	if summary.SalesOrderNumber == "" {
		summary.SalesOrderNumber = orderID
	}

	return Selection{
		Path:    PathSingleOrder,
		OrderID: orderID,
		Context: SingleOrderContext{Order: summary},
		Summary: &summary,
	}
}

func ownedBy(customerID domain.CustomerID, list []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(list))
	for _, o := range list {
		if o.OwnedBy(customerID) {
			out = append(out, o)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
