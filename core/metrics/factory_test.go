package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetsim/core/factory"
	metrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/model"
	_ "github.com/kilianp07/fleetsim/infra/metrics"
)

/*
TestNewRecorderBuiltins verifies registration via infra/metrics/factory.go.

	Cases:
	- no config yields NopRecorder
	- builtin nop recorder
	- two configs yield a MultiRecorder
	- unknown type returns error
*/
func TestNewRecorderBuiltins(t *testing.T) {
	r, err := metrics.NewRecorder(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopRecorder{}, r)

	r, err = metrics.NewRecorder([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.NotNil(t, r)

	r, err = metrics.NewRecorder([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	multi, ok := r.(*metrics.MultiRecorder)
	require.True(t, ok)
	assert.Len(t, multi.Recorders, 2)

	_, err = metrics.NewRecorder([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}

type countRecorder struct {
	metrics.NopRecorder
	reports int
	err     error
}

func (c *countRecorder) RecordReport(model.Report) error {
	c.reports++
	return c.err
}

func TestMultiRecorderCallsEveryRecorder(t *testing.T) {
	boom := errors.New("boom")
	a := &countRecorder{err: boom}
	b := &countRecorder{}
	m := metrics.NewMultiRecorder(a, b)
	assert.ErrorIs(t, m.RecordReport(model.Report{ID: "v"}), boom)
	assert.Equal(t, 1, a.reports)
	assert.Equal(t, 1, b.reports)
	assert.NoError(t, m.RecordFleetSize(1, 2))
}

type closingRecorder struct {
	metrics.NopRecorder
	closed bool
}

func (c *closingRecorder) Close() { c.closed = true }

func TestMultiRecorderClose(t *testing.T) {
	a := &closingRecorder{}
	m := metrics.NewMultiRecorder(a, metrics.NopRecorder{})
	metrics.Close(m)
	assert.True(t, a.closed)
}
