package domain

import "strings"

// Статусы, которые видит клиент
const (
	DisplayStatusOrderReceived    = "Order Received"
	DisplayStatusProcessing       = "Processing"
	DisplayStatusPartiallyShipped = "Partially Shipped"
	DisplayStatusShipped          = "Shipped"
	DisplayStatusCompleted        = "Completed"
	DisplayStatusCancelled        = "Cancelled"
)

// ExtractStatus убирает префикс категории ("Sales Order:Pending Billing" -> "Pending Billing").
// Делит строку по первому двоеточию.
func ExtractStatus(uiStatus string) string {
	if _, after, found := strings.Cut(uiStatus, ":"); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(uiStatus)
}

// MapDisplayStatus переводит статус ERP в клиентский. Порядок проверок важен:
// "pending billing" с частичной отгрузкой должен стать Partially Shipped раньше Shipped.
func MapDisplayStatus(status string, isPartial bool) string {
	s := strings.ToLower(status)

	switch {
	case s == "pending approval":
		return DisplayStatusOrderReceived
	case s == "pending fulfillment":
		return DisplayStatusProcessing
	case strings.Contains(s, "partially fulfilled"), strings.Contains(s, "pending billing") && isPartial:
		return DisplayStatusPartiallyShipped
	case s == "pending billing", s == "billed":
		return DisplayStatusShipped
	case s == "closed":
		return DisplayStatusCompleted
	case s == "cancelled", s == "canceled":
		return DisplayStatusCancelled
	default:
		return DisplayStatusProcessing
	}
}

// DisplayStatusOf выводит клиентский статус из сырого статуса ERP
func DisplayStatusOf(rawStatus string, isPartial bool) string {
	return MapDisplayStatus(ExtractStatus(rawStatus), isPartial)
}
