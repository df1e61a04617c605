package suiteql

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"OrderDeskPlatform/internal/domain"
)

// SuiteQL отдает числа то строками, то числами, а пустые поля опускает.

func (r Row) text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (r Row) number(key string) (float64, bool, error) {
	raw := r.text(key)
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("field %s: %q is not a number", key, raw)
	}
	return f, true, nil
}

func (r Row) flag(key string) bool {
	switch strings.ToUpper(r.text(key)) {
	case "T", "TRUE", "Y", "1":
		return true
	default:
		return false
	}
}

func decodeOrder(r Row) (domain.Order, error) {
	order := domain.Order{
		SalesOrderNumber:  r.text("sales_order_number"),
		OrderDate:         r.text("order_date"),
		RequestedShipDate: r.text("requested_ship_date"),
		CustomerID:        domain.NewCustomerID(r.text("customer_id")),
		CustomerName:      r.text("customer_name"),
		RawStatus:         r.text("status"),
		IsPartial:         r.flag("is_partial"),
		Items:             []domain.OrderItem{},
	}
	if order.SalesOrderNumber == "" {
		return domain.Order{}, fmt.Errorf("sales_order_number is missing")
	}

	total, ok, err := r.number("order_total")
	if err != nil {
		return domain.Order{}, err
	}
	if ok {
		order.OrderTotal = &total
	}

	return order, nil
}

func decodeItem(r Row) (domain.OrderItem, error) {
	item := domain.OrderItem{
		ItemNumber:  r.text("item_number"),
		Description: r.text("item_description"),
		Unit:        r.text("item_unit"),
	}
	if item.ItemNumber == "" {
		return domain.OrderItem{}, fmt.Errorf("item_number is missing")
	}

	quantity, ok, err := r.number("line_quantity")
	if err != nil {
		return domain.OrderItem{}, err
	}
	if !ok {
		return domain.OrderItem{}, fmt.Errorf("line_quantity is missing")
	}
	if quantity < 0 || quantity != math.Trunc(quantity) {
		return domain.OrderItem{}, fmt.Errorf("line_quantity %v is not a non-negative integer", quantity)
	}
	item.Quantity = int(quantity)

	amount, ok, err := r.number("line_net_amount")
	if err != nil {
		return domain.OrderItem{}, err
	}
	if !ok {
		return domain.OrderItem{}, fmt.Errorf("line_net_amount is missing")
	}
	item.NetAmount = amount

	return item, nil
}
