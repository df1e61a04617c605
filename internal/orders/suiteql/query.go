package suiteql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SuiteQL REST не поддерживает связанные параметры, поэтому каждое значение
// от пользователя проходит белый список и только потом попадает в текст запроса.
var safeValue = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ErrUnsafeValue значение не прошло белый список
var ErrUnsafeValue = errors.New("value contains characters not allowed in a query")

// Literal проверяет значение и возвращает строковый литерал SuiteQL в кавычках
func Literal(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !safeValue.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeValue, value)
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'", nil
}

// Идентификатор клиента в ERP хранится как первое слово отображаемого имени
// контрагента ("ACME01 Acme Corp").
const (
	customerIDExpr   = "TRIM(SUBSTR(BUILTIN.DF(%[1]s), 1, INSTR(BUILTIN.DF(%[1]s) || ' ', ' ') - 1))"
	customerNameExpr = "TRIM(SUBSTR(BUILTIN.DF(%[1]s), INSTR(BUILTIN.DF(%[1]s), ' ') + 1))"
)

// SalesOrdersQuery запрос списка заказов клиента. Фильтр по клиенту всегда
// объединяется через AND, фильтр по номеру заказа только сужает выборку.
func SalesOrdersQuery(customerID, tranID string) (string, error) {
	customer, err := Literal(strings.ToUpper(customerID))
	if err != nil {
		return "", err
	}

	where := []string{"type = 'SalesOrd'"}
	if tranID = strings.TrimSpace(tranID); tranID != "" {
		number, err := Literal(tranID)
		if err != nil {
			return "", err
		}
		where = append(where, "tranid = "+number)
	}
	where = append(where, fmt.Sprintf("UPPER("+customerIDExpr+") = %[2]s", "entity", customer))

	return fmt.Sprintf(`SELECT
	tranid AS sales_order_number,
	to_char(trandate, 'YYYY-MM-DD') AS order_date,
	to_char(shipdate, 'YYYY-MM-DD') AS requested_ship_date,
	%s AS customer_id,
	%s AS customer_name,
	BUILTIN.DF(status) AS status,
	foreigntotal AS order_total
FROM transaction
WHERE %s
ORDER BY trandate DESC, tranid`,
		fmt.Sprintf(customerIDExpr, "entity"),
		fmt.Sprintf(customerNameExpr, "entity"),
		strings.Join(where, " AND "),
	), nil
}

// OrderDetailQuery запрос заказа со строками. Количества и суммы берутся по модулю,
// строки без суммы (налоги, итоги) исключаются.
func OrderDetailQuery(salesOrderNumber string) (string, error) {
	number, err := Literal(salesOrderNumber)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`SELECT
	t.tranid AS sales_order_number,
	to_char(t.trandate, 'YYYY-MM-DD') AS order_date,
	to_char(t.shipdate, 'YYYY-MM-DD') AS requested_ship_date,
	%s AS customer_id,
	%s AS customer_name,
	BUILTIN.DF(t.status) AS status,
	i.itemid AS item_number,
	COALESCE(i.description, i.displayname) AS item_description,
	BUILTIN.DF(i.stockunit) AS item_unit,
	ABS(tl.quantity) AS line_quantity,
	ABS(tl.netamount) AS line_net_amount,
	ABS(t.foreigntotal) AS order_total
FROM transaction t
JOIN transactionLine tl ON t.id = tl.transaction
JOIN item i ON tl.item = i.id
WHERE t.type = 'SalesOrd' AND t.tranid = %s AND tl.netamount IS NOT NULL
ORDER BY t.trandate DESC, t.tranid`,
		fmt.Sprintf(customerIDExpr, "t.entity"),
		fmt.Sprintf(customerNameExpr, "t.entity"),
		number,
	), nil
}
