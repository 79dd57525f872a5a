package notify

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial connects a test client to the hub, optionally as a known user.
func dial(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if userID != 0 {
		url += "?user=" + strconv.Itoa(userID)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitForConns(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", want, hub.ConnCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := 0
		if v := r.URL.Query().Get("user"); v != "" {
			userID, _ = strconv.Atoi(v)
		}
		_ = hub.Serve(w, r, userID)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestHubNotifyNewPost(t *testing.T) {
	hub, srv := newHubServer(t)

	authed := dial(t, srv, 7)
	anon := dial(t, srv, 0)
	waitForConns(t, hub, 2)

	hub.NotifyNewPost(42, "Hello world", "alice")

	for _, conn := range []*websocket.Conn{authed, anon} {
		msg := readMessage(t, conn)
		assert.Equal(t, "new_post", msg.Type)
		assert.Equal(t, float64(42), msg.Data["post_id"])
		assert.Equal(t, "Hello world", msg.Data["title"])
		assert.Equal(t, "alice", msg.Data["author"])
	}
}

func TestHubNotifyNewComment(t *testing.T) {
	hub, srv := newHubServer(t)

	owner := dial(t, srv, 7)
	other := dial(t, srv, 8)
	waitForConns(t, hub, 2)

	hub.NotifyNewComment(7, 42, "Hello world", "bob", "nice post")

	msg := readMessage(t, owner)
	assert.Equal(t, "new_comment", msg.Type)
	assert.Equal(t, "bob", msg.Data["commenter"])
	assert.Equal(t, "nice post", msg.Data["preview"])

	// The other user must not see it; the next thing on their socket is the
	// marker broadcast sent afterwards.
	hub.NotifyNewPost(1, "marker", "x")
	msg = readMessage(t, other)
	assert.Equal(t, "new_post", msg.Type)
}

func TestHubMultipleConnectionsPerUser(t *testing.T) {
	hub, srv := newHubServer(t)

	tab1 := dial(t, srv, 7)
	tab2 := dial(t, srv, 7)
	waitForConns(t, hub, 2)

	hub.NotifyNewComment(7, 1, "t", "bob", "hi")

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		msg := readMessage(t, conn)
		assert.Equal(t, "new_comment", msg.Type)
	}
}

func TestHubUnregisterOnClose(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dial(t, srv, 7)
	waitForConns(t, hub, 1)

	conn.Close()
	waitForConns(t, hub, 0)

	// Delivering to a gone user is a no-op, not a panic
	hub.NotifyNewComment(7, 1, "t", "bob", "hi")
}

type recordingNotifier struct {
	posts    int
	comments int
}

func (r *recordingNotifier) NotifyNewPost(int, string, string) { r.posts++ }
func (r *recordingNotifier) NotifyNewComment(int, int, string, string, string) {
	r.comments++
}

func TestMulti(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := Multi{a, b}

	m.NotifyNewPost(1, "t", "alice")
	m.NotifyNewComment(2, 1, "t", "bob", "hi")

	assert.Equal(t, 1, a.posts)
	assert.Equal(t, 1, b.posts)
	assert.Equal(t, 1, a.comments)
	assert.Equal(t, 1, b.comments)
}

func TestTruncatePreview(t *testing.T) {
	short := "short comment"
	assert.Equal(t, short, truncatePreview(short))

	long := strings.Repeat("ы", 150)
	got := truncatePreview(long)
	assert.Equal(t, 100, len([]rune(got)))
	assert.Equal(t, strings.Repeat("ы", 100), got)
}
