package quote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/configurator"
	"github.com/rafaeljc/cpq/internal/testsupport"
)

// fakePricer returns a fixed configuration or error.
type fakePricer struct {
	result *configurator.ServerConfiguration
	err    error
}

func (f *fakePricer) GetServerConfiguration(sel map[string]string) (*configurator.ServerConfiguration, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.CurrentSelection = sel
	return &res, nil
}

func newTestService(t *testing.T, pricer Pricer) *Service {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "quotes.jsonl"), nil)
	require.NoError(t, err)

	svc := NewService(pricer, store, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "quote-1" }
	return svc
}

func validRequest() Request {
	return Request{
		Configuration: map[string]string{"cpu": "cpu-a"},
		ContactName:   "Ada Lovelace",
		ContactEmail:  "ada@example.com",
	}
}

func TestService_CreateQuote(t *testing.T) {
	ctx := context.Background()
	price := decimal.RequireFromString("140.00")
	discount := decimal.RequireFromString("10.00")
	priced := &fakePricer{result: &configurator.ServerConfiguration{TotalPrice: price, TotalDiscount: &discount, IsValid: true}}

	t.Run("Should price and persist the quote", func(t *testing.T) {
		svc := newTestService(t, priced)

		resp, err := svc.CreateQuote(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "quote-1", resp.ID)
		assert.True(t, resp.TotalPrice.Equal(price))
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), resp.CreatedAt)

		stored, err := svc.GetQuote(ctx, "quote-1")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", stored.ContactEmail)
		require.NotNil(t, stored.TotalDiscount)
		assert.True(t, stored.TotalDiscount.Equal(discount))
		assert.Nil(t, stored.Company)

		all, err := svc.ListQuotes(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Should reject invalid request fields", func(t *testing.T) {
		svc := newTestService(t, priced)

		req := validRequest()
		req.ContactEmail = "not-an-email"
		req.ContactName = ""

		_, err := svc.CreateQuote(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequest)

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr))
		require.Len(t, reqErr.Fields, 2)
		assert.Equal(t, "contact_name", reqErr.Fields[0].Field)
		assert.Equal(t, "contact_email", reqErr.Fields[1].Field)
		assert.Equal(t, "value is not a valid email address", reqErr.Fields[1].Message)
	})

	t.Run("Should require a configuration", func(t *testing.T) {
		svc := newTestService(t, priced)

		req := validRequest()
		req.Configuration = nil

		_, err := svc.CreateQuote(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Should wrap rejected configurations as client errors", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			wantMsg string
		}{
			{
				name:    "validation rules",
				err:     &configurator.ValidationError{Messages: []string{"RAM required"}},
				wantMsg: "invalid configuration: RAM required",
			},
			{
				name:    "unknown option",
				err:     &catalog.UnknownReferenceError{Kind: "option", ID: "cpu-zz"},
				wantMsg: "invalid configuration: Unknown option ID: cpu-zz",
			},
		}
		for _, tt := range tests {
			svc := newTestService(t, &fakePricer{err: tt.err})

			_, err := svc.CreateQuote(ctx, validRequest())
			require.Error(t, err, tt.name)
			assert.ErrorIs(t, err, ErrInvalidConfiguration, tt.name)
			assert.Equal(t, tt.wantMsg, err.Error(), tt.name)

			all, _ := svc.ListQuotes(ctx)
			assert.Empty(t, all, "rejected quotes are not persisted")
		}
	})

	t.Run("Should not classify engine faults as client errors", func(t *testing.T) {
		svc := newTestService(t, &fakePricer{err: errors.New("handler exploded")})

		_, err := svc.CreateQuote(ctx, validRequest())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidConfiguration)
		assert.NotErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Should count created quotes", func(t *testing.T) {
		svc := newTestService(t, priced)

		testsupport.AssertMetricDelta(t, "cpq_quotes_requests_total", map[string]string{"status": "created"}, 1, func() {
			_, err := svc.CreateQuote(ctx, validRequest())
			require.NoError(t, err)
		})
		testsupport.AssertHistogramRecorded(t, "cpq_quotes_store_operation_seconds", map[string]string{"backend": "file", "operation": "append"})
	})
}

func TestService_GetQuote_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakePricer{})
	_, err := svc.GetQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestNewService_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewService(nil, nil, nil) })
	assert.Panics(t, func() { NewService(&fakePricer{}, nil, nil) })
}
