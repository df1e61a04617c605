// Package session выпускает и проверяет подписанные сессионные токены клиентов.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"OrderDeskPlatform/internal/credential"
	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
)

// Claims содержимое сессионного токена. Subject хранит идентификатор клиента.
type Claims struct {
	jwt.RegisteredClaims
}

// Token выпущенный токен и его окно действия
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Validation результат проверки без ошибки
type Validation struct {
	Valid      bool              `json:"valid"`
	CustomerID domain.CustomerID `json:"customer_id,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// Manager выпускает и проверяет токены. Состояния на сервере нет: токен
// действителен, пока верны подпись и срок и клиент остается в реестре.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	store  credential.Store
	now    func() time.Time
}

// Option настройка Manager
type Option func(*Manager)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager создает менеджер для HMAC алгоритма (HS256, HS384, HS512)
func NewManager(secret, algorithm string, ttl time.Duration, store credential.Store, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	if store == nil {
		return nil, errors.New("credential store is required")
	}

	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	m := &Manager{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL срок действия токена
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue выпускает токен для клиента. Проверку членства делает вызывающий код.
func (m *Manager) Issue(customerID domain.CustomerID) (Token, error) {
	if customerID.IsZero() {
		return Token{}, pkgerrors.New(pkgerrors.ErrValidation, "Customer ID is required")
	}

	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	value, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal, "Could not create access token")
	}

	return Token{Value: value, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify проверяет подпись, срок и наличие клиента в реестре.
// Возвращает идентификатор только если прошли все три проверки.
func (m *Manager) Verify(ctx context.Context, token string) (domain.CustomerID, error) {
	if token == "" {
		return "", pkgerrors.New(pkgerrors.ErrUnauthenticated, "Not authenticated - no token cookie found")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", pkgerrors.Wrap(err, pkgerrors.ErrTokenExpired, "Token has expired")
		}
		return "", pkgerrors.Wrap(err, pkgerrors.ErrUnauthenticated, "Invalid authentication credentials")
	}

	customerID := domain.NewCustomerID(claims.Subject)
	if customerID.IsZero() {
		return "", pkgerrors.New(pkgerrors.ErrUnauthenticated, "Invalid token - no customer ID")
	}

	exists, err := m.store.Exists(ctx, customerID)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrUpstreamUnavailable, "Could not verify customer access")
	}
	if !exists {
		return "", pkgerrors.New(pkgerrors.ErrAccessRevoked, "Customer access revoked")
	}

	return customerID, nil
}

// TryValidate то же, что Verify, но сообщает причину вместо ошибки
func (m *Manager) TryValidate(ctx context.Context, token string) Validation {
	customerID, err := m.Verify(ctx, token)
	if err != nil {
		reason := "Invalid authentication credentials"
		if customErr, ok := pkgerrors.As(err); ok {
			reason = customErr.GetUserMessage()
		}
		return Validation{Valid: false, Reason: reason}
	}
	return Validation{Valid: true, CustomerID: customerID}
}

func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}
