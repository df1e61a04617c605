package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"OrderDeskPlatform/internal/chat"
	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
)

const (
	maxAgentBody     = 1 << 20
	maxMessageLength = 4000
)

// agentRequest тело POST /agent. context.order_id может быть строкой или числом.
type agentRequest struct {
	Message string `json:"message"`
	Context struct {
		OrderID json.RawMessage `json:"order_id"`
	} `json:"context"`
	PreviousMessages []json.RawMessage `json:"previous_messages"`
}

func (h *Handler) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAgentBody)).Decode(&req); err != nil {
		pkgerrors.WriteJSON(w, pkgerrors.New(pkgerrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validator.ValidateRequired(req.Message, "message"); err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}
	if err := h.validator.ValidateStringLength(req.Message, "message", 1, maxMessageLength); err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}

	resp, err := h.chat.Respond(r.Context(), currentCustomer(r), chat.Request{
		Message: req.Message,
		OrderID: orderIDValue(req.Context.OrderID),
		History: domain.ParseTurns(req.PreviousMessages),
	})
	if err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// orderIDValue строка или число из JSON; все остальное считается отсутствием номера
func orderIDValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
