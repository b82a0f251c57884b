package dto_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

const materialID = "8b3c1a52-7a43-4c55-9b4e-2f1d0c9e6a10"

func receiptWith(q decimal.Decimal) dto.CreateReceiptRequest {
	return dto.CreateReceiptRequest{Lines: []dto.ReceiptLineInput{{MaterialID: materialID, Quantity: q}}}
}

func TestValidate_CantidadDecimalPositiva(t *testing.T) {
	tests := []struct {
		name string
		q    decimal.Decimal
		ok   bool
	}{
		{"entera", decimal.NewFromInt(5), true},
		{"fraccion", decimal.RequireFromString("0.001"), true},
		// Fuera del rango de float64: sigue siendo positiva.
		{"diminuta", decimal.New(1, -400), true},
		{"cero", decimal.Zero, false},
		{"negativa", decimal.New(-1, -400), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dto.Validate(receiptWith(tt.q))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "lines[0].quantity", ve.Field)
			assert.Equal(t, "debe ser mayor que 0", ve.Reason)
		})
	}
}

func TestValidate_PrecioNoNegativo(t *testing.T) {
	assert.NoError(t, dto.Validate(dto.CreateMaterialRequest{Name: "Harina", Unit: "kg", UnitPrice: decimal.Zero}))

	err := dto.Validate(dto.CreateProductRequest{Name: "Pan", Unit: "unidad", Price: decimal.New(-1, -400)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)

	// En un patch, el precio ausente no se valida; presente y negativo sí.
	assert.NoError(t, dto.Validate(dto.UpdateMaterialRequest{}))
	neg := decimal.NewFromInt(-3)
	assert.ErrorIs(t, dto.Validate(dto.UpdateMaterialRequest{UnitPrice: &neg}), domain.ErrInvalidInput)
}
