package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (domain.CustomerID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.CustomerID), args.Error(1)
}

func echoCustomer() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := CustomerIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(customerID.String()))
	})
}

func TestSessionAuth_Valid(t *testing.T) {
	verifier := &mockVerifier{}
	verifier.On("Verify", mock.Anything, "good-token").Return(domain.CustomerID("ACME01"), nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "good-token"})
	w := httptest.NewRecorder()

	SessionAuth(verifier, "access_token", logger.NewNop())(echoCustomer()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ACME01", w.Body.String())
}

func TestSessionAuth_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		cookie   *http.Cookie
		token    string
		err      error
		wantCode pkgerrors.ErrorCode
	}{
		{
			name:     "no cookie",
			token:    "",
			err:      pkgerrors.New(pkgerrors.ErrUnauthenticated, "Not authenticated - no token cookie found"),
			wantCode: pkgerrors.ErrUnauthenticated,
		},
		{
			name:     "cookie with other name",
			cookie:   &http.Cookie{Name: "session", Value: "abc"},
			token:    "",
			err:      pkgerrors.New(pkgerrors.ErrUnauthenticated, "Not authenticated - no token cookie found"),
			wantCode: pkgerrors.ErrUnauthenticated,
		},
		{
			name:     "expired",
			cookie:   &http.Cookie{Name: "access_token", Value: "old"},
			token:    "old",
			err:      pkgerrors.New(pkgerrors.ErrTokenExpired, "Token has expired"),
			wantCode: pkgerrors.ErrTokenExpired,
		},
		{
			name:     "revoked",
			cookie:   &http.Cookie{Name: "access_token", Value: "revoked"},
			token:    "revoked",
			err:      pkgerrors.New(pkgerrors.ErrAccessRevoked, "Customer access revoked"),
			wantCode: pkgerrors.ErrAccessRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{}
			verifier.On("Verify", mock.Anything, tt.token).Return(domain.CustomerID(""), tt.err)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			SessionAuth(verifier, "access_token", logger.NewNop())(echoCustomer()).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tt.wantCode), body.Error.Code)
			verifier.AssertExpectations(t)
		})
	}
}

func TestCustomerIDFromContext(t *testing.T) {
	_, ok := CustomerIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = CustomerIDFromContext(WithCustomerID(context.Background(), ""))
	assert.False(t, ok)

	customerID, ok := CustomerIDFromContext(WithCustomerID(context.Background(), "ACME01"))
	assert.True(t, ok)
	assert.Equal(t, domain.CustomerID("ACME01"), customerID)
}
