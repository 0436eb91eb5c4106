package ws_chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_advisor "github.com/humanbelnik/kinoshelf/internal/usecase/advisor"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// echoAsker answers "echo: <message>" and reports a duplicate while "slow"
// is in flight.
type echoAsker struct {
	mu      sync.Mutex
	busy    bool
	release chan struct{}
}

func (a *echoAsker) Ask(_ context.Context, _ model.ClientID, message string) (string, error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return "", usecase_advisor.ErrAlreadySending
	}
	a.busy = true
	a.mu.Unlock()

	if message == "slow" {
		<-a.release
	}

	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
	return "echo: " + message, nil
}

type ChatHubSuite struct {
	suite.Suite
}

type resources struct {
	hub    *Hub
	srv    *httptest.Server
	cancel context.CancelFunc
	done   chan struct{}
}

func start(asker Asker) *resources {
	gin.SetMode(gin.TestMode)
	hub := NewHub(asker)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	engine := gin.New()
	engine.Use(http_client_middleware.New("c", "secret", time.Hour).Identify())
	NewController(hub).RegisterRoutes(engine.Group("/api/v1"))

	return &resources{
		hub:    hub,
		srv:    httptest.NewServer(engine),
		cancel: cancel,
		done:   done,
	}
}

func (r *resources) stop() {
	r.cancel()
	<-r.done
	r.srv.Close()
}

func (r *resources) dial(t provider.T) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(r.srv.URL, "http") + "/api/v1/advisor/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readEvent(t provider.T, conn *websocket.Conn) (string, string) {
	var raw struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&raw))

	var p struct {
		Text    string `json:"text"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw.Payload, &p))
	return raw.Type, p.Text + p.Message
}

func (s *ChatHubSuite) TestConversation(t provider.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := start(&echoAsker{release: make(chan struct{})})
	conn := r.dial(t)

	kind, text := readEvent(t, conn)
	assert.Equal(t, EventBotMessage, kind)
	assert.Equal(t, Greeting, text)

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello"}))
	kind, text = readEvent(t, conn)
	assert.Equal(t, EventBotMessage, kind)
	assert.Equal(t, "echo: hello", text)

	conn.Close()
	r.stop()
}

func (s *ChatHubSuite) TestDuplicateSend(t provider.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	asker := &echoAsker{release: make(chan struct{})}
	r := start(asker)
	conn := r.dial(t)
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "slow"}))
	require.Eventually(t, func() bool {
		asker.mu.Lock()
		defer asker.mu.Unlock()
		return asker.busy
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "again"}))
	kind, _ := readEvent(t, conn)
	assert.Equal(t, EventError, kind)

	close(asker.release)
	kind, text := readEvent(t, conn)
	assert.Equal(t, EventBotMessage, kind)
	assert.Equal(t, "echo: slow", text)

	conn.Close()
	r.stop()
}

func (s *ChatHubSuite) TestShutdownDropsConnections(t provider.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := start(&echoAsker{release: make(chan struct{})})
	conn := r.dial(t)
	readEvent(t, conn)

	r.stop()

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	conn.Close()
}

func TestChatHubSuite(t *testing.T) {
	suite.RunSuite(t, new(ChatHubSuite))
}
