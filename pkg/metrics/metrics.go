package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	gridEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autohours_grid_events_total",
		Help: "Grid events applied to editing sessions, by event type.",
	}, []string{"type"})

	bulkEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autohours_bulk_edits_total",
		Help: "Bulk-edit sessions ended, by outcome.",
	}, []string{"outcome"})

	bulkEditCells = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autohours_bulk_edit_cells_total",
		Help: "Cells touched by ended bulk-edit sessions, by outcome.",
	}, []string{"outcome"})

	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autohours_grid_sessions_open",
		Help: "Grid editing sessions currently open.",
	})

	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autohours_saves_total",
		Help: "Percent matrix saves, by scope and result.",
	}, []string{"scope", "result"})
)

// GridEvent counts one applied grid event
func GridEvent(eventType string) {
	gridEvents.WithLabelValues(eventType).Inc()
}

// SessionOpened and SessionClosed track the open sessions gauge
func SessionOpened() { openSessions.Inc() }
func SessionClosed() { openSessions.Dec() }

// Save counts a save of a percent matrix
func Save(scope string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	saves.WithLabelValues(scope, result).Inc()
}

// BulkEditObserver reports bulk-edit outcomes from grid engines
type BulkEditObserver struct{}

func (BulkEditObserver) Committed(cells int) {
	bulkEdits.WithLabelValues("commit").Inc()
	bulkEditCells.WithLabelValues("commit").Add(float64(cells))
}

func (BulkEditObserver) Cancelled(cells int) {
	bulkEdits.WithLabelValues("cancel").Inc()
	bulkEditCells.WithLabelValues("cancel").Add(float64(cells))
}

// Handler serves the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
