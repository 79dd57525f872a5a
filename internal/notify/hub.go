package notify

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the wire envelope sent over the websocket.
type Message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Hub tracks websocket connections and routes notifications to them:
// new_post is broadcast to everyone, new_comment goes only to the post
// owner's connections. Anonymous connections receive broadcasts only.
type Hub struct {
	mu sync.Mutex
	// all connections, anonymous included
	conns map[*websocket.Conn]struct{}
	// userID -> that user's connections (a user may have several tabs open)
	byUser map[int]map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		byUser: make(map[int]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from the frontend origin; auth happens via token
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. userID is 0 for anonymous clients.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.register(conn, userID)
	defer h.unregister(conn, userID)

	// Drain the connection so close frames and pings are handled; clients
	// only receive on this socket.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (h *Hub) register(conn *websocket.Conn, userID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = struct{}{}
	if userID != 0 {
		if h.byUser[userID] == nil {
			h.byUser[userID] = make(map[*websocket.Conn]struct{})
		}
		h.byUser[userID][conn] = struct{}{}
		log.Printf("user %d connected via websocket", userID)
	}
}

func (h *Hub) unregister(conn *websocket.Conn, userID int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(conn, userID)
}

// drop removes a connection; callers must hold h.mu.
func (h *Hub) drop(conn *websocket.Conn, userID int) {
	delete(h.conns, conn)
	if userID != 0 {
		if set, ok := h.byUser[userID]; ok {
			delete(set, conn)
			if len(set) == 0 {
				delete(h.byUser, userID)
			}
		}
	}
	conn.Close()
}

// Broadcast sends a message to every connection, pruning dead ones.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("error broadcasting message: %v", err)
			h.drop(conn, 0)
		}
	}
}

// Send delivers a message to one user's connections only.
func (h *Hub) Send(userID int, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.byUser[userID] {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("error sending message to user %d: %v", userID, err)
			h.drop(conn, userID)
		}
	}
}

// ConnCount reports how many connections are registered.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) NotifyNewPost(postID int, title, authorName string) {
	h.Broadcast(Message{
		Type: "new_post",
		Data: map[string]any{
			"post_id": postID,
			"title":   title,
			"author":  authorName,
			"message": "New post: " + title,
		},
	})
}

func (h *Hub) NotifyNewComment(ownerID, postID int, postTitle, commenterName, preview string) {
	h.Send(ownerID, Message{
		Type: "new_comment",
		Data: map[string]any{
			"post_id":    postID,
			"post_title": postTitle,
			"commenter":  commenterName,
			"preview":    truncatePreview(preview),
			"message":    commenterName + " commented on your post",
		},
	})
}
