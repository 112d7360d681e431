package metrics

import (
	"context"
	"time"

	rpcmetrics "github.com/filecoin-project/go-jsonrpc/metrics"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Distribution
var defaultMillisecondsDistribution = view.Distribution(0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 3000, 4000, 5000, 7500, 10000, 20000, 50000, 100000)
var stepMillisecondsDistribution = view.Distribution(
	100, 250, 500, 1000, 2000, 5000, 10_000, 30_000, 60_000, // rpc calls, swaps, storage transactions
	2*60_000, 5*60_000, 10*60_000, 15*60_000, 20*60_000, 30*60_000, // bridge attestation
)
var amountDistribution = view.Distribution(0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000, 10000)

// Global Tags
var (
	// common
	Version, _     = tag.NewKey("version")
	Commit, _      = tag.NewKey("commit")
	Network, _     = tag.NewKey("network")
	Endpoint, _    = tag.NewKey("endpoint")
	FailureType, _ = tag.NewKey("failure_type")

	// saga
	Step, _    = tag.NewKey("step")
	Outcome, _ = tag.NewKey("outcome")
	FeeTier, _ = tag.NewKey("fee_tier")
	Swap, _    = tag.NewKey("swap_strategy")
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Measures
var (
	// common
	BridgeInfo         = stats.Int64("info", "Arbitrary counter to tag walrus-bridge info to", stats.UnitDimensionless)
	APIRequestDuration = stats.Float64("api/request_duration_ms", "Duration of gateway API requests", stats.UnitMilliseconds)

	// saga
	UploadsStarted   = stats.Int64("upload/started", "Counter of uploads started or resumed", stats.UnitDimensionless)
	UploadsCompleted = stats.Int64("upload/completed", "Counter of uploads that reached DONE", stats.UnitDimensionless)
	UploadsFailed    = stats.Int64("upload/failed", "Counter of uploads that stopped in FAILED", stats.UnitDimensionless)
	UploadsActive    = stats.Int64("upload/active", "Number of uploads executing", stats.UnitDimensionless)
	StepAttempts     = stats.Int64("step/attempts", "Counter of step attempts", stats.UnitDimensionless)
	StepDuration     = stats.Float64("step/duration_ms", "Duration of a step attempt", stats.UnitMilliseconds)
	Checkpoints      = stats.Int64("step/checkpoints", "Counter of checkpoints reached", stats.UnitDimensionless)
	FeeCollected     = stats.Float64("fee/collected", "Protocol fee collected per upload, in source token units", stats.UnitDimensionless)
	AmountBridged    = stats.Float64("bridge/amount", "Amount sent over the bridge per upload, in source token units", stats.UnitDimensionless)
	SwapFallbacks    = stats.Int64("swap/fallbacks", "Counter of sponsored swaps that fell back to a direct swap", stats.UnitDimensionless)
)

var (
	InfoView = &view.View{
		Name:        "info",
		Description: "walrus-bridge version",
		Measure:     BridgeInfo,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Version, Commit, Network},
	}
	APIRequestDurationView = &view.View{
		Measure:     APIRequestDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Endpoint},
	}
	UploadsStartedView = &view.View{
		Measure:     UploadsStarted,
		Aggregation: view.Count(),
	}
	UploadsCompletedView = &view.View{
		Measure:     UploadsCompleted,
		Aggregation: view.Count(),
	}
	UploadsFailedView = &view.View{
		Measure:     UploadsFailed,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Step, FailureType},
	}
	UploadsActiveView = &view.View{
		Measure:     UploadsActive,
		Aggregation: view.LastValue(),
	}
	StepAttemptsView = &view.View{
		Measure:     StepAttempts,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Step, Outcome},
	}
	StepDurationView = &view.View{
		Measure:     StepDuration,
		Aggregation: stepMillisecondsDistribution,
		TagKeys:     []tag.Key{Step, Outcome},
	}
	CheckpointsView = &view.View{
		Measure:     Checkpoints,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Step},
	}
	FeeCollectedView = &view.View{
		Measure:     FeeCollected,
		Aggregation: amountDistribution,
		TagKeys:     []tag.Key{FeeTier},
	}
	FeeCollectedTotalView = &view.View{
		Name:        "fee/collected_total",
		Measure:     FeeCollected,
		Aggregation: view.Sum(),
	}
	AmountBridgedView = &view.View{
		Measure:     AmountBridged,
		Aggregation: amountDistribution,
	}
	SwapFallbacksView = &view.View{
		Measure:     SwapFallbacks,
		Aggregation: view.Count(),
	}
)

// DefaultViews is an array of OpenCensus views for metric gathering purposes
var DefaultViews = func() []*view.View {
	views := []*view.View{
		InfoView,
		APIRequestDurationView,
		UploadsStartedView,
		UploadsCompletedView,
		UploadsFailedView,
		UploadsActiveView,
		StepAttemptsView,
		StepDurationView,
		CheckpointsView,
		FeeCollectedView,
		FeeCollectedTotalView,
		AmountBridgedView,
		SwapFallbacksView,
	}
	views = append(views, rpcmetrics.DefaultViews...)
	return views
}()

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

// Timer is a function stopwatch, calling it starts the timer,
// calling the returned function will record the duration.
func Timer(ctx context.Context, m *stats.Float64Measure) func() {
	start := time.Now()
	return func() {
		stats.Record(ctx, m.M(SinceInMilliseconds(start)))
	}
}
