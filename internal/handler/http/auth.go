package http

import (
	"net/http"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

// handleLogin вход по идентификатору клиента. Поле password принимается,
// но не проверяется: доступ определяется только наличием клиента в хранилище.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostFormValue("username")
	if err := h.validator.ValidateRequired(username, "username"); err != nil {
		pkgerrors.WriteJSON(w, err)
		return
	}

	customerID := domain.NewCustomerID(username)
	exists, err := h.credentials.Exists(ctx, customerID)
	if err != nil {
		h.log.Error("Credential store lookup failed",
			logger.CtxField(ctx),
			logger.Error(err))
		pkgerrors.WriteJSON(w, pkgerrors.Wrap(err, pkgerrors.ErrUpstreamUnavailable, "Could not verify customer access"))
		return
	}
	if !exists {
		h.log.Info("Login rejected for unknown customer",
			logger.CtxField(ctx),
			logger.String("customer_id", customerID.String()))
		w.Header().Set("WWW-Authenticate", "Bearer")
		pkgerrors.WriteJSON(w, pkgerrors.New(pkgerrors.ErrUnauthenticated, "Invalid customer ID"))
		return
	}

	token, err := h.sessions.Issue(customerID)
	if err != nil {
		h.log.Error("Failed to issue session token", logger.CtxField(ctx), logger.Error(err))
		pkgerrors.WriteJSON(w, pkgerrors.Wrap(err, pkgerrors.ErrInternal, ""))
		return
	}

	http.SetCookie(w, h.sessionCookie(token.Value, h.cookie.MaxAge))
	h.events.LoggedIn(ctx, customerID)
	h.log.Info("Customer logged in",
		logger.CtxField(ctx),
		logger.String("customer_id", customerID.String()))

	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Login successful",
		"customer_id": customerID.String(),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := currentCustomer(r)

	removed := h.cache.Invalidate(id)
	http.SetCookie(w, h.sessionCookie("", -1))
	h.events.LoggedOut(ctx, id)
	h.log.Info("Customer logged out",
		logger.CtxField(ctx),
		logger.String("customer_id", id.String()),
		logger.Int("cache_entries_removed", removed))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"customer_id": currentCustomer(r).String()})
}

// handleValidate проверка сессии без ошибки в формате API: причина отказа в поле reason
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		token = cookie.Value
	}

	result := h.sessions.TryValidate(r.Context(), token)
	if !result.Valid {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"valid":  false,
			"reason": result.Reason,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":       true,
		"customer_id": result.CustomerID.String(),
	})
}

// sessionCookie cookie с токеном; maxAge < 0 удаляет cookie
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
