package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sales Order:Pending Billing", "Pending Billing"},
		{"A: Pending Approval ", "Pending Approval"},
		{"Closed", "Closed"},
		{"  Billed  ", "Billed"},
		{"", ""},
		{"a:b:c", "b:c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractStatus(tt.in), "input %q", tt.in)
	}
}

func TestDisplayStatusOf_Table(t *testing.T) {
	tests := []struct {
		raw     string
		partial bool
		want    string
	}{
		{"A:Pending Approval", false, DisplayStatusOrderReceived},
		{"Pending Fulfillment", false, DisplayStatusProcessing},
		{"B: Partially Fulfilled", false, DisplayStatusPartiallyShipped},
		{"Pending Billing", true, DisplayStatusPartiallyShipped},
		{"Pending Billing", false, DisplayStatusShipped},
		{"Billed", false, DisplayStatusShipped},
		{"Closed", false, DisplayStatusCompleted},
		{"Cancelled", false, DisplayStatusCancelled},
		{"canceled", false, DisplayStatusCancelled},
		{"", false, DisplayStatusProcessing},
		{"Some Unknown Status", false, DisplayStatusProcessing},
		{"Sales Order:Pending Billing/Partially Fulfilled", false, DisplayStatusPartiallyShipped},
		{"Sales Order:CLOSED", true, DisplayStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatusOf(tt.raw, tt.partial))
		})
	}
}
