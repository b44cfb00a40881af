package metrics

import (
	"math/big"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// Fund market metrics collector. It is registered as a keeper listener and
// sees committed notifications only.

const namespace = "fundmarket"

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

var (
	_ types.Listener          = (*Collector)(nil)
	_ types.OperationObserver = (*Collector)(nil)
)

// Collector holds all fund market metrics
type Collector struct {
	// Pool metrics
	PoolsCreated *prometheus.CounterVec
	SubscribeNav *prometheus.GaugeVec

	// Subscription metrics
	SubscriptionsTotal *prometheus.CounterVec
	SubscribedCurrency *prometheus.CounterVec

	// Redemption metrics
	RedemptionsRequested *prometheus.CounterVec
	RedemptionsRevoked   *prometheus.CounterVec
	SlotsClosed          *prometheus.CounterVec

	// Settlement metrics
	SlotPricedNav   *prometheus.GaugeVec
	CarrySettled    *prometheus.CounterVec
	EscrowBalance   *prometheus.GaugeVec
	ClaimsTotal     *prometheus.CounterVec
	ClaimedCurrency *prometheus.CounterVec

	// Operation metrics
	OperationLatency *prometheus.HistogramVec
	OperationErrors  *prometheus.CounterVec

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge
	WSMessagesTotal     *prometheus.CounterVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
}

// GetCollector returns the singleton collector registered with the default
// Prometheus registry
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = NewCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// NewCollector creates a collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	c.PoolsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pools",
			Name:      "created_total",
			Help:      "Number of pools created",
		},
		[]string{"currency"},
	)

	c.SubscribeNav = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pools",
			Name:      "subscribe_nav",
			Help:      "Latest subscribe NAV checkpoint, scaled by 1e6",
		},
		[]string{"pool"},
	)

	c.SubscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_total",
			Help:      "Number of processed subscriptions",
		},
		[]string{"pool"},
	)

	c.SubscribedCurrency = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscribed_currency",
			Help:      "Currency paid into pools, in base units",
		},
		[]string{"pool"},
	)

	c.RedemptionsRequested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_requested_total",
			Help:      "Number of redemption requests",
		},
		[]string{"pool"},
	)

	c.RedemptionsRevoked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_revoked_total",
			Help:      "Number of revoked redemptions",
		},
		[]string{"pool"},
	)

	c.SlotsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_closed_total",
			Help:      "Number of closed redeem slots",
		},
		[]string{"pool"},
	)

	c.SlotPricedNav = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_priced_nav",
			Help:      "Per-unit NAV of the last priced slot, scaled by 1e6",
		},
		[]string{"pool"},
	)

	c.CarrySettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carry_settled",
			Help:      "Carry charged on redeem slots, in currency base units",
		},
		[]string{"pool"},
	)

	c.EscrowBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "escrow_balance",
			Help:      "Currency escrowed for a redeem slot",
		},
		[]string{"slot"},
	)

	c.ClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Number of claims paid",
		},
		[]string{"pool"},
	)

	c.ClaimedCurrency = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claimed_currency",
			Help:      "Currency paid out of slot escrow",
		},
		[]string{"pool"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Keeper operation latency, including rejected operations",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"op"},
	)

	c.OperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Keeper operations that were rejected and rolled back",
		},
		[]string{"op"},
	)

	c.WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "messages_total",
			Help:      "WebSocket messages broadcast",
		},
		[]string{"channel"},
	)

	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "REST API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "REST API latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.registerAll(reg)

	return c
}

// registerAll registers all metrics with reg
func (c *Collector) registerAll(reg prometheus.Registerer) {
	reg.MustRegister(
		c.PoolsCreated,
		c.SubscribeNav,
		c.SubscriptionsTotal,
		c.SubscribedCurrency,
		c.RedemptionsRequested,
		c.RedemptionsRevoked,
		c.SlotsClosed,
		c.SlotPricedNav,
		c.CarrySettled,
		c.EscrowBalance,
		c.ClaimsTotal,
		c.ClaimedCurrency,
		c.OperationLatency,
		c.OperationErrors,
		c.WSConnectionsActive,
		c.WSMessagesTotal,
		c.APIRequestsTotal,
		c.APIRequestLatency,
	)
}

// ============ Keeper Listener ============

// OnNotification updates metrics from a committed keeper notification
func (c *Collector) OnNotification(_ sdk.Context, n types.Notification) {
	switch e := n.(type) {
	case types.PoolCreated:
		c.PoolsCreated.WithLabelValues(e.Currency).Inc()
	case types.SubscribeNavSet:
		c.SubscribeNav.WithLabelValues(e.PoolID).Set(toFloat(e.Nav))
	case types.Subscribed:
		c.SubscriptionsTotal.WithLabelValues(e.PoolID).Inc()
		c.SubscribedCurrency.WithLabelValues(e.PoolID).Add(toFloat(e.Payment))
	case types.RedeemRequested:
		c.RedemptionsRequested.WithLabelValues(e.PoolID).Inc()
	case types.RedeemRevoked:
		c.RedemptionsRevoked.WithLabelValues(e.PoolID).Inc()
	case types.RedeemSlotClosed:
		c.SlotsClosed.WithLabelValues(e.PoolID).Inc()
	case types.CarrySettled:
		c.CarrySettled.WithLabelValues(e.PoolID).Add(toFloat(e.CarryAmount))
	case types.RedeemNavSet:
		c.SlotPricedNav.WithLabelValues(e.PoolID).Set(toFloat(e.Nav))
	case types.Repaid:
		c.EscrowBalance.WithLabelValues(e.SlotID).Set(toFloat(e.EscrowBalance))
	case types.Claimed:
		c.ClaimsTotal.WithLabelValues(e.PoolID).Inc()
		c.ClaimedCurrency.WithLabelValues(e.PoolID).Add(toFloat(e.CurrencyAmount))
		c.EscrowBalance.WithLabelValues(e.SlotID).Set(toFloat(e.EscrowBalance))
	}
}

// ObserveOperation records the latency of every keeper operation and counts
// the rejected ones
func (c *Collector) ObserveOperation(op string, duration time.Duration, err error) {
	c.OperationLatency.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.OperationErrors.WithLabelValues(op).Inc()
	}
}

// ============ Recording Helpers ============

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.Add(float64(delta))
}

// RecordWSMessage records a broadcast WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// toFloat converts an integer amount for a gauge; precision loss above 2^53
// is acceptable for monitoring
func toFloat(i math.Int) float64 {
	if i.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(i.BigInt()).Float64()
	return f
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
