// Package metrics exposes gauges describing the redemption monitor.
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/ipfs/go-log"

	"github.com/keep-network/keep-common/pkg/metrics"

	"github.com/keep-network/tbtc-redemption/pkg/redemption"
)

var logger = log.Logger("keep-metrics")

const (
	// DefaultRedemptionMetricsTick is the default duration of the
	// observation tick for redemption metrics.
	DefaultRedemptionMetricsTick = 1 * time.Minute
)

// Initialize enables the metrics server on the given port. Metrics are
// disabled when the port is not set.
func Initialize(port int) (*metrics.Registry, bool) {
	if port == 0 {
		return nil, false
	}

	registry := metrics.NewRegistry()
	registry.EnableServer(port)

	return registry, true
}

// ObserveRedemptionsInProgress triggers an observation process of the
// redemptions_in_progress metric.
func ObserveRedemptionsInProgress(
	ctx context.Context,
	registry *metrics.Registry,
	monitor *redemption.Monitor,
	tick time.Duration,
) {
	input := func() float64 {
		return float64(monitor.InProgressCount())
	}

	observe(
		ctx,
		"redemptions_in_progress",
		input,
		registry,
		validateTick(tick, DefaultRedemptionMetricsTick),
	)
}

// ObserveRedemptionRecords triggers an observation process of the
// redemptions_<state> metric counting stored records in the given state.
func ObserveRedemptionRecords(
	ctx context.Context,
	registry *metrics.Registry,
	monitor *redemption.Monitor,
	state redemption.State,
	tick time.Duration,
) {
	input := func() float64 {
		count, err := monitor.RecordsCount(state)
		if err != nil {
			logger.Warningf(
				"could not count records in state [%v]: [%v]",
				state,
				err,
			)
			return 0
		}
		return float64(count)
	}

	observe(
		ctx,
		recordsMetricName(state),
		input,
		registry,
		validateTick(tick, DefaultRedemptionMetricsTick),
	)
}

func recordsMetricName(state redemption.State) string {
	return "redemptions_" + strings.ToLower(state.String())
}

func observe(
	ctx context.Context,
	name string,
	input metrics.ObserverInput,
	registry *metrics.Registry,
	tick time.Duration,
) {
	observer, err := registry.NewGaugeObserver(name, input)
	if err != nil {
		logger.Warningf("could not create gauge observer [%v]", name)
		return
	}

	observer.Observe(ctx, tick)
}

func validateTick(tick time.Duration, defaultTick time.Duration) time.Duration {
	if tick > 0 {
		return tick
	}

	return defaultTick
}
