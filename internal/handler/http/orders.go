package http

import (
	"net/http"
	"strings"

	"OrderDeskPlatform/internal/orders"
	pkgerrors "OrderDeskPlatform/pkg/errors"
)

const orderNotFound = "Order not found or does not belong to the authenticated customer"

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.validator.QueryInt(query, "page", orders.DefaultPage)
	if err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}
	perPage, err := h.validator.QueryInt(query, "per_page", orders.DefaultPerPage)
	if err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}

	id := currentCustomer(r)
	list, err := h.orders.ListOrders(r.Context(), id, orders.ListParams{
		Page:    page,
		PerPage: perPage,
		TranID:  strings.TrimSpace(query.Get("tranid")),
	})
	if err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": id.String(),
		"orders":      list,
	})
}

// handleOrderDetails чужой заказ и отсутствующий заказ дают одинаковый 404
func (h *Handler) handleOrderDetails(w http.ResponseWriter, r *http.Request) {
	lookup := h.orders.OrderDetailsForCustomer(r.Context(), currentCustomer(r), r.PathValue("order_id"))

	switch lookup.Outcome {
	case orders.OutcomeFound:
		writeJSON(w, http.StatusOK, lookup.Order)
	case orders.OutcomeUpstreamError:
		pkgerrors.WriteJSON(w, pkgerrors.Wrap(lookup.Err, pkgerrors.ErrUpstreamUnavailable, "Order service unavailable. Please try again later."))
	default:
		pkgerrors.WriteJSON(w, pkgerrors.New(pkgerrors.ErrNotFound, orderNotFound))
	}
}
