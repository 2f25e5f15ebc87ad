package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hms/internal/domain"
)

type stubParser struct{}

func (stubParser) ParseToken(_ context.Context, token string) (int64, domain.UserRole, error) {
	if token != "good" {
		return 0, "", domain.ErrInvalidToken
	}
	return 3, domain.UserRoleReceptionist, nil
}

func startHub(t *testing.T) (*ScheduleHub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewScheduleHub(stubParser{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws/schedule", hub.HandleWebSocket)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return hub, server
}

func wsURL(server *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/schedule?token=" + token
}

func TestScheduleHub_BroadcastsEvents(t *testing.T) {
	hub, server := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	start := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	hub.Publish(domain.AppointmentEvent{
		ID:            "evt-1",
		Type:          domain.AppointmentCreated,
		AppointmentID: 31,
		StaffID:       5,
		RoomID:        2,
		Start:         &start,
		End:           &end,
		Timestamp:     start,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.AppointmentEvent
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, domain.AppointmentCreated, event.Type)
	assert.Equal(t, int64(31), event.AppointmentID)
	assert.True(t, end.Equal(*event.End))
}

func TestScheduleHub_RejectsBadToken(t *testing.T) {
	_, server := startHub(t)

	for _, token := range []string{"", "bad"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestScheduleHub_UnregistersOnClose(t *testing.T) {
	hub, server := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "good"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleHub_PublishNeverBlocks(t *testing.T) {
	// No Run loop: the queue fills and further events are dropped.
	hub := NewScheduleHub(stubParser{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueue+10; i++ {
			hub.Publish(domain.AppointmentEvent{ID: "evt", Type: domain.AppointmentDeleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}

	var nilHub *ScheduleHub
	assert.NotPanics(t, func() { nilHub.Publish(domain.AppointmentEvent{}) })
}

