package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetsim/core/fleet"
	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/infra/logger"
)

func newBridge(t *testing.T, cfg Config) (*mockClient, *fleet.Manager) {
	t.Helper()
	mc := newMockClient()
	t.Cleanup(mc.install())
	cli, err := Connect(cfg, logger.NopLogger{})
	require.NoError(t, err)
	mgr, err := fleet.NewManager(fleet.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, NewBridge(context.Background(), cli, mgr, cfg, logger.NopLogger{}).Start())
	return mc, mgr
}

func TestBridge_SubscribesManagerTopics(t *testing.T) {
	mc, _ := newBridge(t, Config{QoS: map[string]byte{QoSPosition: 1}})
	for _, topic := range []string{"fleetsim/manager/position", "fleetsim/manager/control", "fleetsim/manager/register", "fleetsim/manager/create"} {
		assert.Contains(t, mc.handlers, topic)
	}
	assert.Equal(t, byte(1), mc.subQoS["fleetsim/manager/position"])
}

func TestBridge_RegisterThenBroadcast(t *testing.T) {
	mc, mgr := newBridge(t, Config{})

	mc.receive("fleetsim/manager/register", []byte(`{"sender":"gui"}`))
	require.Equal(t, []string{"mqtt://fleetsim/observer/gui/position"}, mgr.ListObservers())

	report := model.Report{ID: "v1", X: 1, Y: 2, Timestamp: 10, Speed: 1}
	payload, err := json.Marshal(report)
	require.NoError(t, err)
	mc.receive("fleetsim/manager/position", payload)

	sent := mc.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "fleetsim/observer/gui/position", sent[0].topic)
	var got model.Report
	require.NoError(t, json.Unmarshal(sent[0].payload, &got))
	assert.Equal(t, report, got)
}

func TestBridge_FailedObserverIsPruned(t *testing.T) {
	mc, mgr := newBridge(t, Config{TimeoutMS: 10})
	mc.receive("fleetsim/manager/register", []byte(`{"sender":"gui"}`))
	require.Len(t, mgr.ListObservers(), 1)

	mc.mu.Lock()
	mc.hang = true
	mc.mu.Unlock()
	mc.receive("fleetsim/manager/position", []byte(`{"id":"v1","x":0,"y":0,"timestamp":1}`))
	assert.Empty(t, mgr.ListObservers())
}

func TestBridge_RejectsInvalidMessages(t *testing.T) {
	mc, mgr := newBridge(t, Config{})

	mc.receive("fleetsim/manager/register", []byte(`{"sender":"a/#"}`))
	mc.receive("fleetsim/manager/register", []byte(`not json`))
	mc.receive("fleetsim/manager/register", []byte(`{}`))
	assert.Empty(t, mgr.ListObservers())

	mc.receive("fleetsim/manager/register", []byte(`{"sender":"gui"}`))
	mc.receive("fleetsim/manager/position", []byte(`{"x":1}`))
	mc.receive("fleetsim/manager/position", []byte(`[]`))
	assert.Empty(t, mc.sent())

	mc.receive("fleetsim/manager/control", []byte(`{"id":"v1"}`))
	mc.receive("fleetsim/manager/control", []byte(`nope`))
	mgr.Wait()
}

func TestBridge_CreateAndControl(t *testing.T) {
	mc, mgr := newBridge(t, Config{})
	mc.receive("fleetsim/manager/create", nil)
	ids := mgr.ListVehicles()
	require.Len(t, ids, 1)
	id := ids[0][len("local:"):]

	mc.receive("fleetsim/manager/control", []byte(`{"id":"`+id+`","method":"setHeading","params":{"heading":1.5}}`))
	mgr.Wait()
	v, ok := mgr.Vehicle(id)
	require.True(t, ok)
	assert.Equal(t, 1.5, v.Position().Heading)
}

func TestPublisher(t *testing.T) {
	mc := newMockClient()
	defer mc.install()()
	cli, err := Connect(Config{}, logger.NopLogger{})
	require.NoError(t, err)
	p := NewPublisher(cli, Config{TopicPrefix: "f", QoS: map[string]byte{QoSPosition: 1}})
	ctx := context.Background()

	require.NoError(t, p.UpdatePosition(ctx, model.Report{ID: "v1", Timestamp: 5}))
	require.NoError(t, p.RequestVehicle(ctx))
	require.NoError(t, p.Register(ctx, "gui"))
	require.NoError(t, p.Control(ctx, "v1", model.SetSpeed(2)))

	sent := mc.sent()
	require.Len(t, sent, 4)
	assert.Equal(t, "f/manager/position", sent[0].topic)
	assert.Equal(t, byte(1), sent[0].qos)
	assert.Equal(t, "f/manager/create", sent[1].topic)
	assert.JSONEq(t, `{"sender":"gui"}`, string(sent[2].payload))
	var m ControlMessage
	require.NoError(t, json.Unmarshal(sent[3].payload, &m))
	assert.Equal(t, "v1", m.ID)
	assert.Equal(t, model.MethodSetSpeed, m.Method)
	assert.JSONEq(t, `{"speed":2}`, string(m.Params))
}

func TestPublisher_FailureIsDeliveryError(t *testing.T) {
	mc := newMockClient()
	mc.hang = true
	defer mc.install()()
	cli, err := Connect(Config{TimeoutMS: 5}, logger.NopLogger{})
	require.NoError(t, err)
	p := NewPublisher(cli, Config{})

	err = p.UpdatePosition(context.Background(), model.Report{ID: "v1"})
	assert.ErrorIs(t, err, model.ErrDelivery)
	assert.Eventually(t, func() bool { return len(mc.sent()) == 1 }, time.Second, time.Millisecond)
}

func TestReportsAndDeliveriesAreNotRetried(t *testing.T) {
	mc := newMockClient()
	defer mc.install()()
	cli, err := Connect(Config{MaxRetries: 3, BackoffMS: 1}, logger.NopLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	mc.mu.Lock()
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	mc.mu.Unlock()
	p := NewPublisher(cli, Config{})
	assert.ErrorIs(t, p.UpdatePosition(ctx, model.Report{ID: "v1"}), model.ErrDelivery)
	require.Len(t, mc.sent(), 1)

	mc.mu.Lock()
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	mc.mu.Unlock()
	o := NewObserver(cli, "f/observer/gui/position", 0)
	assert.ErrorIs(t, o.Deliver(ctx, model.Report{ID: "v1"}), model.ErrDelivery)
	require.Len(t, mc.sent(), 2)

	mc.mu.Lock()
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	mc.mu.Unlock()
	require.NoError(t, p.RequestVehicle(ctx))
	assert.Len(t, mc.sent(), 4)
}
