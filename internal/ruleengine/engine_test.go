package ruleengine

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/testsupport"
)

// ruleList is a RuleSource over a fixed, already ordered rule slice.
type ruleList []catalog.Rule

func (l ruleList) RulesByType(ruleType string) []catalog.Rule {
	var out []catalog.Rule
	for _, r := range l {
		if r.Type == ruleType && r.Active {
			out = append(out, r)
		}
	}
	return out
}

// stubHandler returns fixed values so engine behavior can be observed.
type stubHandler struct {
	result Result
	err    error
	panic  any
	got    []catalog.Rule
}

func (s *stubHandler) Supports(string) bool { return true }

func (s *stubHandler) Execute(rules []catalog.Rule, _ RuleContext) (Result, error) {
	s.got = rules
	if s.panic != nil {
		panic(s.panic)
	}
	return s.result, s.err
}

func newTestStore(t *testing.T, rules ...catalog.Rule) *catalog.Store {
	t.Helper()
	store, err := catalog.New(&catalog.Collections{
		Categories: []catalog.Category{
			{ID: "cpu", Name: "CPU", Required: true, Order: 1},
			{ID: "ram", Name: "RAM", Required: true, Order: 2},
		},
		Options: []catalog.Option{
			{ID: "cpu-a", CategoryID: "cpu", Price: decimal.RequireFromString("100.00"), Available: true, Order: 1},
			{ID: "ram-16", CategoryID: "ram", Price: decimal.RequireFromString("40.00"), Available: true, Order: 1},
		},
		Rules: rules,
	})
	require.NoError(t, err)
	return store
}

func TestEngine_Examples(t *testing.T) {
	t.Run("Should discount 10% of the selected CPU", func(t *testing.T) {
		t.Parallel()

		rule := discountRule("cpu-promo", "cpu", "10", "10% off")
		rule.Conditions = catalog.Conditions{{Field: "cpu", Values: []string{"cpu-a"}}}
		store := newTestStore(t, rule)
		engine := New(store, NewRegistry(store, quietLogger()), quietLogger())

		got, err := engine.Discount(map[string]string{"cpu": "cpu-a"})
		require.NoError(t, err)
		assert.True(t, got.Total.Equal(decimal.RequireFromString("10.00")))
		assert.Equal(t, []string{"10% off"}, got.Descriptions)
	})

	t.Run("Should report a missing required category", func(t *testing.T) {
		t.Parallel()

		rule := errorRule("ram-required", "RAM required")
		rule.Conditions = catalog.Conditions{{Field: FieldMissingCategories, Values: []string{"ram"}}}
		store := newTestStore(t, rule)
		engine := New(store, NewRegistry(store, quietLogger()), quietLogger())

		got, err := engine.Validate(map[string]string{"cpu": "cpu-a"})
		require.NoError(t, err)
		assert.False(t, got.Valid)
		assert.Equal(t, []string{"RAM required"}, got.Messages)

		got, err = engine.Validate(map[string]string{"cpu": "cpu-a", "ram": "ram-16"})
		require.NoError(t, err)
		assert.True(t, got.Valid)
	})

	t.Run("Should mark options of a category unavailable", func(t *testing.T) {
		t.Parallel()

		rule := catalog.Rule{
			ID:         "no-cpu-swap",
			Type:       catalog.RuleTypeAvailability,
			Conditions: catalog.Conditions{{Field: FieldOptionCategory, Values: []string{"cpu"}}},
			Actions:    catalog.Action{Kind: catalog.ActionSetUnavailable, Type: catalog.ActionTypeSetUnavailable},
			Active:     true,
		}
		store := newTestStore(t, rule)
		engine := New(store, NewRegistry(store, quietLogger()), quietLogger())
		cfg := map[string]string{"ram": "ram-16"}

		cpu, _ := store.Option("cpu-a")
		got, err := engine.Availability(RuleContext{Configuration: cfg, CurrentOption: &cpu})
		require.NoError(t, err)
		assert.False(t, got.Available)

		ram, _ := store.Option("ram-16")
		got, err = engine.Availability(RuleContext{Configuration: cfg, CurrentOption: &ram})
		require.NoError(t, err)
		assert.True(t, got.Available)
	})

	t.Run("Should keep load order for equal priorities", func(t *testing.T) {
		t.Parallel()

		first := errorRule("first", "first message")
		first.Priority = 3
		second := errorRule("second", "second message")
		second.Priority = 3
		earliest := errorRule("earliest", "earliest message")
		earliest.Priority = 1
		store := newTestStore(t, first, second, earliest)
		engine := New(store, NewRegistry(store, quietLogger()), quietLogger())

		got, err := engine.Validate(map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, []string{"earliest message", "first message", "second message"}, got.Messages)
	})

	t.Run("Should ignore inactive rules", func(t *testing.T) {
		t.Parallel()

		rule := errorRule("inactive", "never")
		rule.Active = false
		store := newTestStore(t, rule)
		engine := New(store, NewRegistry(store, quietLogger()), quietLogger())

		got, err := engine.Validate(map[string]string{})
		require.NoError(t, err)
		assert.True(t, got.Valid)
	})
}

func TestEngine_ProcessRules_Faults(t *testing.T) {
	handlerErr := errors.New("price feed corrupted")

	tests := []struct {
		name       string
		ruleType   string
		handler    *stubHandler
		wantErr    error
		wantLogMsg string
	}{
		{
			name:     "Should fail on a rule type without handler",
			ruleType: "shipping",
			wantErr:  ErrUnsupportedRuleType,
		},
		{
			name:       "Should log and return handler errors unchanged",
			ruleType:   "custom",
			handler:    &stubHandler{err: handlerErr},
			wantErr:    handlerErr,
			wantLogMsg: "rule handler execution failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// 1. Thread-Safe Log Capture
			var logBuffer bytes.Buffer
			localLogger := slog.New(slog.NewTextHandler(&logBuffer, nil))

			// 2. Dependency Injection
			source := ruleList{{ID: "r1", Type: tt.ruleType, Active: true}}
			registry := NewRegistry(priceTable{}, localLogger)
			if tt.handler != nil {
				registry.Register(tt.ruleType, tt.handler)
			}
			engine := New(source, registry, localLogger)

			// 3. Act
			res, err := engine.ProcessRules(tt.ruleType, RuleContext{Configuration: map[string]string{"cpu": "cpu-a"}})

			// 4. Assert
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantLogMsg != "" {
				logs := logBuffer.String()
				assert.Contains(t, logs, tt.wantLogMsg)
				assert.Contains(t, logs, "rule_type=custom")
				assert.Contains(t, logs, "r1")
			}
		})
	}
}

func TestEngine_ProcessRules_Panic(t *testing.T) {
	t.Parallel()

	var logBuffer bytes.Buffer
	localLogger := slog.New(slog.NewTextHandler(&logBuffer, nil))

	registry := NewRegistry(priceTable{}, localLogger)
	registry.Register("explosive", &stubHandler{panic: "boom"})
	engine := New(ruleList{}, registry, localLogger)

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = engine.ProcessRules("explosive", RuleContext{})
	})
	assert.Contains(t, logBuffer.String(), "rule handler panicked")
}

func TestEngine_ProcessRules_FiltersBeforeDispatch(t *testing.T) {
	t.Parallel()

	stub := &stubHandler{result: "ok"}
	registry := NewRegistry(priceTable{}, quietLogger())
	registry.Register("custom", stub)

	source := ruleList{
		{ID: "match", Type: "custom", Active: true, Conditions: catalog.Conditions{{Field: "cpu", Values: []string{"cpu-a"}}}},
		{ID: "miss", Type: "custom", Active: true, Conditions: catalog.Conditions{{Field: "cpu", Values: []string{"cpu-b"}}}},
		{ID: "always", Type: "custom", Active: true},
	}
	engine := New(source, registry, quietLogger())

	res, err := engine.ProcessRules("custom", RuleContext{Configuration: map[string]string{"cpu": "cpu-a"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	require.Len(t, stub.got, 2)
	assert.Equal(t, "match", stub.got[0].ID)
	assert.Equal(t, "always", stub.got[1].ID)
}

func TestEngine_TypedHelper_Mismatch(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(priceTable{}, quietLogger())
	registry.Register(catalog.RuleTypeValidation, &stubHandler{result: AvailabilityResult{Available: true}})
	engine := New(ruleList{}, registry, quietLogger())

	_, err := engine.Validate(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned ruleengine.AvailabilityResult")
}

func TestEngine_New_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New(nil, NewRegistry(priceTable{}, nil), nil) })
	assert.Panics(t, func() { New(ruleList{}, nil, nil) })
}

func TestEngine_Metrics(t *testing.T) {
	// Not parallel: counters are process-global.
	registry := NewRegistry(priceTable{}, quietLogger())
	registry.Register("metrics_check", &stubHandler{result: "ok"})
	source := ruleList{
		{ID: "a", Type: "metrics_check", Active: true},
		{ID: "b", Type: "metrics_check", Active: true},
	}
	engine := New(source, registry, quietLogger())

	labels := map[string]string{"rule_type": "metrics_check", "outcome": "success"}
	testsupport.AssertMetricDelta(t, "cpq_rule_engine_evaluations_total", labels, 1, func() {
		_, err := engine.ProcessRules("metrics_check", RuleContext{})
		require.NoError(t, err)
	})

	testsupport.AssertMetricDelta(t, "cpq_rule_engine_rules_matched_total", map[string]string{"rule_type": "metrics_check"}, 2, func() {
		_, _ = engine.ProcessRules("metrics_check", RuleContext{})
	})

	testsupport.AssertHistogramRecorded(t, "cpq_rule_engine_evaluation_seconds", map[string]string{"rule_type": "metrics_check"})

	testsupport.AssertMetricDelta(t, "cpq_rule_engine_evaluations_total",
		map[string]string{"rule_type": "unregistered_type", "outcome": "unsupported"}, 1, func() {
			_, _ = engine.ProcessRules("unregistered_type", RuleContext{})
		})
}
