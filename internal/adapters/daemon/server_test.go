package daemon_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/daemon"
	"github.com/andrescamacho/factory-economy/internal/application/auth"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/setup"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

// runningDaemon serves actions over HTTP with every command serialized through a
// live scheduler loop, the way factoryd serve wires them
type runningDaemon struct {
	h      *helpers.Harness
	client *daemon.DaemonClient
	server *httptest.Server
	stop   func()
}

func startDaemon(t *testing.T, h *helpers.Harness, limiter *common.ActionLimiter) *runningDaemon {
	t.Helper()

	med, err := setup.NewHandlerRegistry(h.Container, h.Container.Scheduler, limiter, nil).CreateConfiguredMediator()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)
	go func() { loopDone <- h.Container.Scheduler.Run(ctx) }()

	mux := http.NewServeMux()
	daemon.NewDaemonServer(daemon.NewDaemonClientLocal(med), nil).Register(mux)
	server := httptest.NewServer(mux)

	d := &runningDaemon{h: h, client: daemon.NewDaemonClient(server.URL), server: server}
	stopped := false
	d.stop = func() {
		if stopped {
			return
		}
		stopped = true
		server.Close()
		cancel()
		require.NoError(t, <-loopDone)
	}
	t.Cleanup(d.stop)
	return d
}

func TestDaemon_ActionsRunOnSchedulerLoop(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.CreateFactory(t, "F-1", factory.TypeSmelter, 1000)
	h.SetBalance(helpers.Alice, 1200)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 2)
	d := startDaemon(t, h, nil)
	ctx := context.Background()
	require.NoError(t, d.client.Health(ctx))

	// Act
	bought, err := d.client.BuyFactory(ctx, helpers.Alice, "F-1")
	require.NoError(t, err)
	started, err := d.client.StartProduction(ctx, helpers.Alice, "F-1", "widget")
	require.NoError(t, err)
	d.stop()

	// Assert
	assert.Equal(t, "F-1", bought.FactoryID)
	assert.Equal(t, "1000.00", bought.Price.StringFixed(2))
	assert.Equal(t, 120*time.Second, started.Duration)
	assert.True(t, helpers.T0.Add(120*time.Second).Equal(started.CompletesAt))

	f := h.Factory(t, "F-1")
	assert.True(t, f.IsOwnedBy(helpers.Alice))
	assert.Equal(t, factory.StatusRunning, f.Status())
	assert.Equal(t, 0, h.Host.Storage().Input("F-1", "ore"))
	assert.Equal(t, "200.00", h.Balance(t, helpers.Alice).StringFixed(2))
}

func TestDaemon_DomainErrorsCrossTheWire(t *testing.T) {
	h := helpers.NewHarness(t)
	h.CreateFactory(t, "F-1", factory.TypeSmelter, 1000)
	h.SetBalance(helpers.Alice, 10)
	d := startDaemon(t, h, nil)
	ctx := context.Background()

	_, err := d.client.BuyFactory(ctx, helpers.Alice, "F-1")
	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.Equal(t, shared.KindResource, shared.KindOf(err))

	_, err = d.client.StartUpgrade(ctx, helpers.Bob, "F-1")
	assert.Error(t, err)

	_, err = d.client.PayTax(ctx, helpers.Alice, "missing")
	assert.Equal(t, factory.CodeFactoryNotFound, shared.CodeOf(err))
}

func TestDaemon_ThrottledActionsGetRateLimited(t *testing.T) {
	d := startDaemon(t, helpers.NewHarness(t), common.NewActionLimiter(0.001, 1))
	ctx := context.Background()

	_, err := d.client.PayAllTaxes(ctx, helpers.Alice)
	require.NoError(t, err)

	_, err = d.client.PayAllTaxes(ctx, helpers.Alice)
	assert.Equal(t, auth.CodeRateLimited, shared.CodeOf(err))
}

func TestDaemon_RejectsMalformedCalls(t *testing.T) {
	d := startDaemon(t, helpers.NewHarness(t), nil)
	url := d.server.URL + daemon.ActionsPath

	resp, err := http.Get(url + daemon.ActionPayTax)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(url+daemon.ActionPayTax, "application/json", bytes.NewBufferString(`{"player_id":"nobody"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(url+"launch-rockets", "application/json",
		bytes.NewBufferString(`{"player_id":"`+helpers.Alice.String()+`"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
