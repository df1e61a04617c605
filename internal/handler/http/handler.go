package http

import (
	"context"
	"encoding/json"
	"net/http"

	"OrderDeskPlatform/internal/chat"
	"OrderDeskPlatform/internal/credential"
	"OrderDeskPlatform/internal/domain"
	"OrderDeskPlatform/internal/events"
	"OrderDeskPlatform/internal/middleware"
	"OrderDeskPlatform/internal/orders"
	"OrderDeskPlatform/internal/session"
	"OrderDeskPlatform/pkg/health"
	"OrderDeskPlatform/pkg/logger"
	"OrderDeskPlatform/pkg/validation"
)

// SessionService выдача и проверка сессионных токенов
type SessionService interface {
	Issue(customerID domain.CustomerID) (session.Token, error)
	Verify(ctx context.Context, token string) (domain.CustomerID, error)
	TryValidate(ctx context.Context, token string) session.Validation
}

// OrderService заказы клиента
type OrderService interface {
	ListOrders(ctx context.Context, customerID domain.CustomerID, params orders.ListParams) ([]domain.Order, error)
	OrderDetailsForCustomer(ctx context.Context, customerID domain.CustomerID, salesOrderNumber string) orders.Lookup
}

// CacheInvalidator сброс кеша заказов клиента при выходе
type CacheInvalidator interface {
	Invalidate(customerID domain.CustomerID) int
}

// ChatService один ход диалога с ассистентом
type ChatService interface {
	Respond(ctx context.Context, customerID domain.CustomerID, req chat.Request) (chat.Response, error)
}

// Instrumenter метрики и трассировка маршрута
type Instrumenter interface {
	InstrumentHandler(route string, next http.Handler) http.Handler
}

// CookieConfig параметры cookie с токеном
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge int
}

// Deps зависимости обработчиков
type Deps struct {
	Sessions       SessionService
	Credentials    credential.Store
	Orders         OrderService
	Cache          CacheInvalidator
	Chat           ChatService
	Events         events.Publisher
	Health         health.HealthChecker
	Metrics        Instrumenter
	MetricsHandler http.Handler
	Cookie         CookieConfig
	Log            logger.Logger
}

// Handler REST API шлюза
type Handler struct {
	mux         *http.ServeMux
	sessions    SessionService
	credentials credential.Store
	orders      OrderService
	cache       CacheInvalidator
	chat        ChatService
	events      events.Publisher
	metrics     Instrumenter
	cookie      CookieConfig
	validator   *validation.Validator
	log         logger.Logger
}

// NewHandler создает обработчик и регистрирует маршруты
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		mux:         http.NewServeMux(),
		sessions:    deps.Sessions,
		credentials: deps.Credentials,
		orders:      deps.Orders,
		cache:       deps.Cache,
		chat:        deps.Chat,
		events:      deps.Events,
		metrics:     deps.Metrics,
		cookie:      deps.Cookie,
		validator:   validation.NewValidator(),
		log:         deps.Log,
	}
	if h.events == nil {
		h.events = events.Noop{}
	}
	if h.cookie.Name == "" {
		h.cookie.Name = "access_token"
	}

	h.setupRoutes(deps)
	return h
}

// ServeHTTP реализует интерфейс http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) setupRoutes(deps Deps) {
	h.handle("GET /{$}", "/", http.HandlerFunc(h.handleRoot))

	// Сессия
	h.handle("POST /token", "/token", http.HandlerFunc(h.handleLogin))
	h.handle("POST /logout", "/logout", h.protected(h.handleLogout))
	h.handle("GET /me", "/me", h.protected(h.handleMe))
	h.handle("GET /validate", "/validate", http.HandlerFunc(h.handleValidate))

	// Заказы
	h.handle("GET /orders", "/orders", h.protected(h.handleListOrders))
	h.handle("GET /orders/{$}", "/orders", h.protected(h.handleListOrders))
	h.handle("GET /orders/{order_id}", "/orders/{order_id}", h.protected(h.handleOrderDetails))

	// Ассистент
	h.handle("POST /agent", "/agent", h.protected(h.handleAgent))
	h.handle("POST /agent/{$}", "/agent", h.protected(h.handleAgent))

	// Health check
	if deps.Health != nil {
		h.handle("GET /health", "/health", health.Handler(deps.Health))
		h.handle("GET /ready", "/ready", health.ReadyHandler(deps.Health))
	}
	h.handle("GET /live", "/live", health.LiveHandler())

	if deps.MetricsHandler != nil {
		h.mux.Handle("GET /metrics", deps.MetricsHandler)
	}
}

func (h *Handler) handle(pattern, route string, handler http.Handler) {
	if h.metrics != nil {
		handler = h.metrics.InstrumentHandler(route, handler)
	}
	h.mux.Handle(pattern, handler)
}

// protected пропускает только запросы с действующей сессией
func (h *Handler) protected(next http.HandlerFunc) http.Handler {
	return middleware.SessionAuth(h.sessions, h.cookie.Name, h.log)(next)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Welcome to the Orders & Agent API",
	})
}

// currentCustomer клиент, положенный в контекст SessionAuth
func currentCustomer(r *http.Request) domain.CustomerID {
	id, _ := middleware.CustomerIDFromContext(r.Context())
	return id
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
