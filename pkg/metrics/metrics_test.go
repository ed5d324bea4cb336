package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegistry("salon-test", prometheus.NewRegistry())

	m.IncReservation(OutcomeCreated)
	m.IncReservation(OutcomeConflict)
	m.IncReservation(OutcomeConflict)
	m.IncSlotQuery(SlotsEmpty)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/salons/{salonId}/reservations", http.StatusConflict, 15*time.Millisecond)
	m.ObserveDBQuery("insert", time.Millisecond, errors.New("boom"))
	m.ObserveDBQuery("select", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationsTotal.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotQueriesTotal.WithLabelValues(SlotsEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/salons/{salonId}/reservations", "409")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("insert")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("select")))
}

func TestMetrics_SetDBStats(t *testing.T) {
	m := NewWithRegistry("salon-test", prometheus.NewRegistry())

	m.SetDBStats(sql.DBStats{OpenConnections: 5, InUse: 2, Idle: 3, WaitCount: 7})

	assert.Equal(t, 5.0, testutil.ToFloat64(m.DBOpenConnections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DBInUse))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DBIdle))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DBWaitCount))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncReservation(OutcomeFailed)
		m.IncSlotQuery(SlotsError)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Second)
		m.ObserveDBQuery("select", time.Second, nil)
		m.SetDBStats(sql.DBStats{})
	})
}
