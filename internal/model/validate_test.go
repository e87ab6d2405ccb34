package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  any
		want string
	}{
		{name: "customer ok", rec: Customer{ID: "cus_1", Name: "Ada", Email: "ada@example.com"}},
		{name: "customer without email", rec: Customer{ID: "cus_1", Name: "Ada"}},
		{name: "customer missing name", rec: Customer{ID: "cus_1"}, want: "name is required"},
		{name: "customer bad email", rec: Customer{Name: "Ada", Email: "ada"}, want: "email must be a valid email"},
		{name: "vendor ok", rec: Vendor{Name: "Acme"}},
		{name: "vendor missing name", rec: Vendor{Email: "x@example.com"}, want: "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rec)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
