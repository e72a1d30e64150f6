package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace defines the global prefix for all metrics (e.g., cpq_...).
const namespace = "cpq"

// ruleEngineBuckets covers in-memory rule evaluation, which runs in
// microseconds. Range: 10µs to 50ms.
var ruleEngineBuckets = []float64{.00001, .000025, .00005, .0001, .00025, .0005, .001, .005, .010, .050}

var (
	// -------------------------------------------------------------------------
	// REST API
	// -------------------------------------------------------------------------

	// HTTPReqDuration measures the latency of HTTP requests.
	// Metric: cpq_api_http_handling_seconds
	HTTPReqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_handling_seconds",
		Help:      "Time taken to handle HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// HTTPReqTotal counts the total number of HTTP requests.
	// Metric: cpq_api_http_requests_total
	HTTPReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "code"})

	// -------------------------------------------------------------------------
	// RULE ENGINE
	// -------------------------------------------------------------------------

	// RuleEvaluationsTotal counts ProcessRules calls.
	// Metric: cpq_rule_engine_evaluations_total
	RuleEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rule_engine",
		Name:      "evaluations_total",
		Help:      "Total rule evaluations by rule type and outcome",
	}, []string{"rule_type", "outcome"}) // success, unsupported, error, panic

	// RuleEvaluationDuration measures a single ProcessRules call.
	// Metric: cpq_rule_engine_evaluation_seconds
	RuleEvaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rule_engine",
		Name:      "evaluation_seconds",
		Help:      "Time taken to filter and execute the rules of one type",
		Buckets:   ruleEngineBuckets,
	}, []string{"rule_type"})

	// RulesMatchedTotal counts rules whose conditions matched.
	// Metric: cpq_rule_engine_rules_matched_total
	RulesMatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rule_engine",
		Name:      "rules_matched_total",
		Help:      "Total rules whose conditions matched the evaluation context",
	}, []string{"rule_type"})

	// -------------------------------------------------------------------------
	// QUOTES
	// -------------------------------------------------------------------------

	// QuotesTotal counts quote creation attempts.
	// Metric: cpq_quotes_requests_total
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quotes",
		Name:      "requests_total",
		Help:      "Total quote requests by status",
	}, []string{"status"}) // created, invalid, failed

	QuoteStoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "quotes",
		Name:      "store_operation_seconds",
		Help:      "Latency of quote repository operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// -------------------------------------------------------------------------
	// CATALOG
	// -------------------------------------------------------------------------

	// CatalogEntities reports the size of the loaded catalog.
	// Metric: cpq_catalog_entities
	CatalogEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "entities",
		Help:      "Number of loaded catalog entities by kind",
	}, []string{"kind"}) // categories, options, rules, active_rules, settings
)

var (
	// -------------------------------------------------------------------------
	// DATABASE (pgx pool, postgres quote backend only)
	// -------------------------------------------------------------------------

	// DBPoolConnections reports pool connections by state.
	// Metric: cpq_database_pool_connections
	DBPoolConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "database",
		Name:      "pool_connections",
		Help:      "Connections in the pgx pool by state",
	}, []string{"state"}) // total, idle, in_use, max

	// DBPoolAcquireCount mirrors the cumulative pgxpool acquire count.
	DBPoolAcquireCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "database",
		Name:      "pool_acquire_count",
		Help:      "Cumulative successful connection acquisitions",
	})

	// DBPoolWaitCount mirrors acquisitions that had to wait for a connection.
	DBPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "database",
		Name:      "pool_wait_count",
		Help:      "Cumulative acquisitions that waited for a free connection",
	})
)
