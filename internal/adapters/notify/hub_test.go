package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/notify"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func startHub(t *testing.T) (*notify.Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := notify.NewHub(nil, shared.NewMockClock(helpers.T0))
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, hub *notify.Hub, url string, player shared.PlayerID) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url+"/ws?owner="+player.String(), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount(player) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_RoutesToOwnerOnly(t *testing.T) {
	hub, url := startHub(t)
	aliceConn := dial(t, hub, url, helpers.Alice)
	bobConn := dial(t, hub, url, helpers.Bob)

	hub.Notify(context.Background(), helpers.Alice, ports.EventTaxOverdue, map[string]any{"factory_id": "F-1"})

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var msg notify.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, ports.EventTaxOverdue, msg.Kind)
	assert.Equal(t, helpers.Alice.String(), msg.Player)
	assert.Equal(t, "F-1", msg.Payload["factory_id"])
	assert.True(t, msg.Timestamp.Equal(helpers.T0))

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_RejectsMissingOwner(t *testing.T) {
	_, url := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"/ws?owner=nobody", nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url, helpers.Alice)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount(helpers.Alice) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFanOut_DeliversToEveryNotifier(t *testing.T) {
	first := helpers.NewRecordingNotifier()
	second := helpers.NewRecordingNotifier()
	fan := notify.FanOut{first, nil, second, notify.NewLogNotifier(nil)}

	fan.Notify(context.Background(), helpers.Alice, ports.EventInvoiceIssued, nil)

	assert.Equal(t, 1, first.Count(ports.EventInvoiceIssued))
	assert.Equal(t, 1, second.Count(ports.EventInvoiceIssued))
}

func TestHub_RefusesClientsAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := notify.NewHub(nil, shared.NewMockClock(helpers.T0))
	go hub.Run(ctx)
	server := httptest.NewServer(hub)
	defer server.Close()

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url+"/ws?owner="+helpers.Alice.String(), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.ClientCount(helpers.Alice))
}
