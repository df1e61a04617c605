package domain

import "encoding/json"

// OrderItem строка заказа
type OrderItem struct {
	ItemNumber  string  `json:"item_number"`
	Description string  `json:"item_description,omitempty"`
	Unit        string  `json:"item_unit,omitempty"`
	Quantity    int     `json:"line_quantity"`
	NetAmount   float64 `json:"line_net_amount"`
}

// Order снимок заказа из ERP. Только для чтения, display_status вычисляется
// при сериализации и нигде не хранится.
type Order struct {
	SalesOrderNumber  string      `json:"sales_order_number"`
	OrderDate         string      `json:"order_date,omitempty"`
	RequestedShipDate string      `json:"requested_ship_date,omitempty"`
	CustomerID        CustomerID  `json:"customer_id,omitempty"`
	CustomerName      string      `json:"customer_name,omitempty"`
	RawStatus         string      `json:"status,omitempty"`
	IsPartial         bool        `json:"is_partial"`
	OrderTotal        *float64    `json:"order_total"`
	Items             []OrderItem `json:"items"`
}

// DisplayStatus возвращает статус для клиента
func (o Order) DisplayStatus() string {
	return DisplayStatusOf(o.RawStatus, o.IsPartial)
}

// OwnedBy проверяет принадлежность заказа клиенту
func (o Order) OwnedBy(customer CustomerID) bool {
	return !customer.IsZero() && o.CustomerID.Equal(customer)
}

// MarshalJSON добавляет вычисляемое поле display_status
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	items := o.Items
	if items == nil {
		items = []OrderItem{}
	}
	p := plain(o)
	p.Items = items

	return json.Marshal(struct {
		plain
		DisplayStatus string `json:"display_status"`
	}{
		plain:         p,
		DisplayStatus: o.DisplayStatus(),
	})
}

// OrderSummary короткая сводка заказа для контекста ассистента и UI
type OrderSummary struct {
	SalesOrderNumber string   `json:"sales_order_number"`
	DisplayStatus    string   `json:"display_status"`
	OrderDate        string   `json:"order_date"`
	OrderTotal       *float64 `json:"order_total"`
}

// Summary строит сводку заказа
func (o Order) Summary() OrderSummary {
	return OrderSummary{
		SalesOrderNumber: o.SalesOrderNumber,
		DisplayStatus:    o.DisplayStatus(),
		OrderDate:        o.OrderDate,
		OrderTotal:       o.OrderTotal,
	}
}
