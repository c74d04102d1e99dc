package identity

import (
	"testing"

	"pos-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1", false},
		{"2", false},
		{"3", false},
		{"admin", false},
		{"", true},
		{"0", true},
		{"4", true},
		{"01", true},
		{"ADMIN", true},
		{"cashier", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Identity(tt.input), id)
		})
	}
}

func TestStoreID(t *testing.T) {
	id, ok := Identity("2").StoreID()
	assert.True(t, ok)
	assert.Equal(t, model.StoreShopping, id)

	_, ok = Admin.StoreID()
	assert.False(t, ok)
}

func TestHome(t *testing.T) {
	assert.Equal(t, "/dashboard", Admin.Home())
	assert.Equal(t, "/pos", Identity("3").Home())
}

func TestChoices(t *testing.T) {
	choices := Choices()
	require.Len(t, choices, 4)

	assert.Equal(t, Identity("1"), choices[0].Value)
	assert.Equal(t, "Vendedor - Local Centro", choices[0].Label)
	assert.Equal(t, Admin, choices[3].Value)
	assert.Equal(t, "ADMINISTRADOR - (Dashboard Global)", choices[3].Label)
}
