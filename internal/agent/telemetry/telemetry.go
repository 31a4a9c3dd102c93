package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/wanirfan/atlast/internal/agent/config"
)

// Telemetry records episode, tool, validation and LLM usage metrics.
// Prometheus collectors feed /metrics; the cost tracker keeps running
// totals for the periodic log line.
type Telemetry struct {
	config  config.TelemetryConfig
	logger  *log.Logger
	enabled bool

	episodesTotal      *prometheus.CounterVec
	episodeDuration    *prometheus.HistogramVec
	validationsTotal   *prometheus.CounterVec
	toolInvocations    *prometheus.CounterVec
	llmRequestsTotal   *prometheus.CounterVec
	llmTokensTotal     *prometheus.CounterVec
	swarmRoundsTotal   prometheus.Counter
	swarmFallbackTotal prometheus.Counter

	mu         sync.Mutex
	modelCosts map[string]float64
	totalCost  float64
}

// registerOnce guards against double registration when tests construct
// multiple Telemetry values in one process
var (
	registerOnce sync.Once
	shared       *Telemetry
)

// NewTelemetry creates (or returns) the process-wide telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	registerOnce.Do(func() {
		shared = &Telemetry{
			config:     cfg,
			logger:     log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
			enabled:    cfg.Enabled,
			modelCosts: make(map[string]float64),
			episodesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "atlast_episodes_total",
				Help: "QA episodes by domain and status",
			}, []string{"domain", "status"}),
			episodeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "atlast_episode_duration_seconds",
				Help:    "End-to-end episode latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"domain"}),
			validationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "atlast_validation_results_total",
				Help: "Validator verdicts by domain",
			}, []string{"domain", "verdict"}),
			toolInvocations: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "atlast_tool_invocations_total",
				Help: "Tool calls made by the reasoning loop",
			}, []string{"domain", "tool"}),
			llmRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "atlast_llm_requests_total",
				Help: "Gateway requests by model and status",
			}, []string{"model", "status"}),
			llmTokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "atlast_llm_tokens_total",
				Help: "Tokens consumed by model and direction",
			}, []string{"model", "direction"}),
			swarmRoundsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "atlast_swarm_rounds_total",
				Help: "Coordinator rounds executed by the document swarm",
			}),
			swarmFallbackTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "atlast_swarm_fallbacks_total",
				Help: "Swarm analyses that ended on the expiration path",
			}),
		}
	})
	return shared
}

// RecordEpisode records one finished episode
func (t *Telemetry) RecordEpisode(domain, status string, duration time.Duration) {
	if !t.enabled {
		return
	}
	t.episodesTotal.WithLabelValues(domain, status).Inc()
	t.episodeDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordValidation records a validator verdict
func (t *Telemetry) RecordValidation(domain string, valid bool) {
	if !t.enabled {
		return
	}
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	t.validationsTotal.WithLabelValues(domain, verdict).Inc()
}

// RecordToolInvocation records one tool call
func (t *Telemetry) RecordToolInvocation(domain, tool string) {
	if !t.enabled {
		return
	}
	t.toolInvocations.WithLabelValues(domain, tool).Inc()
}

// RecordLLMUsage records one gateway call's tokens and cost
func (t *Telemetry) RecordLLMUsage(model string, inputTokens, outputTokens int64, cost float64, failed bool) {
	if !t.enabled {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	t.llmRequestsTotal.WithLabelValues(model, status).Inc()
	t.llmTokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	t.llmTokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))

	if t.config.CostTracking && cost > 0 {
		t.mu.Lock()
		t.modelCosts[model] += cost
		t.totalCost += cost
		t.mu.Unlock()
	}
}

// RecordSwarm records one finished swarm analysis
func (t *Telemetry) RecordSwarm(rounds int, fallback bool) {
	if !t.enabled {
		return
	}
	t.swarmRoundsTotal.Add(float64(rounds))
	if fallback {
		t.swarmFallbackTotal.Inc()
	}
}

// TotalCost returns the accumulated gateway cost
func (t *Telemetry) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCost
}

// LogSummary writes the running cost totals to the log
func (t *Telemetry) LogSummary() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger.Printf("total gateway cost: $%.4f across %d models", t.totalCost, len(t.modelCosts))
}
