package quote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote_MarshalJSON(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	discount := decimal.NewFromInt(10)

	t.Run("Should render money with two decimals", func(t *testing.T) {
		t.Parallel()

		q := Quote{
			ID:            "q-1",
			Configuration: map[string]string{"cpu": "cpu-a"},
			ContactName:   "Ada",
			ContactEmail:  "ada@example.com",
			TotalPrice:    decimal.NewFromInt(150),
			TotalDiscount: &discount,
			CreatedAt:     created,
		}
		got, err := json.Marshal(q)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"id": "q-1",
			"configuration": {"cpu": "cpu-a"},
			"contact_name": "Ada",
			"contact_email": "ada@example.com",
			"total_price": "150.00",
			"total_discount": "10.00",
			"created_at": "2024-05-01T12:00:00Z"
		}`, string(got))

		var back Quote
		require.NoError(t, json.Unmarshal(got, &back))
		assert.True(t, back.TotalPrice.Equal(q.TotalPrice))
		require.NotNil(t, back.TotalDiscount)
		assert.True(t, back.TotalDiscount.Equal(discount))
	})

	t.Run("Should render the response total with two decimals", func(t *testing.T) {
		t.Parallel()

		got, err := json.Marshal(Response{ID: "q-1", TotalPrice: decimal.RequireFromString("42.5"), CreatedAt: created})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"q-1","total_price":"42.50","created_at":"2024-05-01T12:00:00Z"}`, string(got))
	})
}
