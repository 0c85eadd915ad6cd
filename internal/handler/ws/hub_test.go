package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AstroChart/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub()
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/charts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(&models.ChartEvent{Type: models.ChartEventCreated, ChartID: "c1", Sun: "Taurus"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.ChartEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "c1", got.ChartID)
	assert.Equal(t, "Taurus", got.Sun)

	hub.Close()
	assert.Equal(t, 0, hub.Len())
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub(WithBuffer(1))
	assert.NotPanics(t, func() { hub.Broadcast(&models.ChartEvent{ChartID: "x"}) })
}
