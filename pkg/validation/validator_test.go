package validation

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "OrderDeskPlatform/pkg/errors"
)

func TestQueryInt(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "missing uses default", query: "", want: 10},
		{name: "blank uses default", query: "per_page=+", want: 10},
		{name: "value", query: "per_page=25", want: 25},
		{name: "negative", query: "per_page=-1", want: -1},
		{name: "not a number", query: "per_page=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := v.QueryInt(values, "per_page", 10)
			if tt.wantErr {
				assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRange(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateRange(1, "per_page", 1, 100))
	assert.NoError(t, v.ValidateRange(100, "per_page", 1, 100))

	err := v.ValidateRange(101, "per_page", 1, 100)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrValidation))
	assert.Contains(t, err.Error(), "per_page must be between 1 and 100")
}

func TestValidateRequired(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateRequired("ACME01", "username"))
	assert.True(t, pkgerrors.HasCode(v.ValidateRequired(" \t", "username"), pkgerrors.ErrValidation))
}

func TestValidateStringLength(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStringLength("где мой заказ", "message", 1, 13))
	assert.Error(t, v.ValidateStringLength("", "message", 1, 10))
	assert.Error(t, v.ValidateStringLength(strings.Repeat("a", 11), "message", 1, 10))
}
