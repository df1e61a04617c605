package domain

import "strings"

// CustomerID идентификатор клиента. Сравнение регистронезависимое,
// пробелы по краям не учитываются.
type CustomerID string

// NewCustomerID создает идентификатор, убирая пробелы по краям
func NewCustomerID(raw string) CustomerID {
	return CustomerID(strings.TrimSpace(raw))
}

// Key возвращает нормализованную форму для сравнения и ключей кеша
func (c CustomerID) Key() string {
	return strings.ToUpper(strings.TrimSpace(string(c)))
}

// Equal сравнивает идентификаторы без учета регистра
func (c CustomerID) Equal(other CustomerID) bool {
	return c.Key() == other.Key()
}

// IsZero true для пустого идентификатора
func (c CustomerID) IsZero() bool {
	return c.Key() == ""
}

func (c CustomerID) String() string {
	return string(c)
}
