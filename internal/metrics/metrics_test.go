package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfamily/internal/ledger"
)

func TestObserveMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveMutation("add_transactions", ledger.OutcomeApplied, 10*time.Millisecond)
	m.ObserveMutation("add_transactions", ledger.OutcomeRolledBack, 20*time.Millisecond)
	m.ObserveMutation("delete_transaction", ledger.OutcomeNoop, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationsTotal.WithLabelValues("add_transactions", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationsTotal.WithLabelValues("add_transactions", "rolled_back")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollbacksTotal.WithLabelValues("add_transactions")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rollbacksTotal.WithLabelValues("delete_transaction")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.mutationDuration))
}

func TestObserveOthers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAdvisorCall("ok", time.Second)
	m.ObserveAdvisorCall("unconfigured", 0)
	m.ObserveExport("event", nil)
	m.ObserveExport("schedule", errors.New("quota"))
	m.ObservePublish("transactions.created", nil)
	m.ObserveHTTPRequest(http.MethodGet, "/api/summary", http.StatusOK, 5*time.Millisecond)
	m.SetSummaryCacheItems(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.advisorRequests.WithLabelValues("unconfigured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportsTotal.WithLabelValues("schedule", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("transactions.created", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/summary", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.summaryCacheItems))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestImplementsLedgerObserver(t *testing.T) {
	var _ ledger.Observer = New(prometheus.NewRegistry())
}
