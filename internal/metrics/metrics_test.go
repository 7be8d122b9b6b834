package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("add_participant", nil)
	m.ObserveOperation("add_participant", nil)
	m.ObserveOperation("add_participant", errors.New("duplicate"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_participant", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_participant", ResultRejected)))
}

func TestSetLedgerSizeAndPlan(t *testing.T) {
	m := New()
	m.SetLedgerSize(3, 7)
	m.ObservePlan(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Participants))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Transactions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PlanSize))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveOperation("settle_up", nil)

	path := filepath.Join(t.TempDir(), "dangidongi.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `dangidongi_operations_total{operation="settle_up",result="ok"} 1`))
}
