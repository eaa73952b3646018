package room

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type roomMetrics struct {
	moves    metric.Int64Counter
	finished metric.Int64Counter
	restarts metric.Int64Counter
}

var (
	metricsOnce sync.Once
	metrics     *roomMetrics
)

// defaultMetrics creates the instruments once. The global meter forwards to
// whatever provider telemetry installs, so rooms created before the provider
// is set still report.
func defaultMetrics() *roomMetrics {
	metricsOnce.Do(func() {
		m, err := newRoomMetrics(meter)
		if err != nil {
			slog.Error("failed to create room metrics", "error", err)
			m, _ = newRoomMetrics(noop.Meter{})
		}
		metrics = m
	})
	return metrics
}

func newRoomMetrics(m metric.Meter) (*roomMetrics, error) {
	moves, err := m.Int64Counter("tictactoe.moves",
		metric.WithDescription("Cell clicks, labelled by whether the move was accepted"))
	if err != nil {
		return nil, err
	}
	finished, err := m.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that ended in a win or a draw"))
	if err != nil {
		return nil, err
	}
	restarts, err := m.Int64Counter("tictactoe.restarts",
		metric.WithDescription("Restart clicks"))
	if err != nil {
		return nil, err
	}
	return &roomMetrics{moves: moves, finished: finished, restarts: restarts}, nil
}
