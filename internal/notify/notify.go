// Package notify delivers real-time notifications. Every call is
// fire-and-forget: delivery failure never fails the triggering request.
package notify

// Notifier is the one-way notification transport.
type Notifier interface {
	// NotifyNewPost announces a new post to every connected client.
	NotifyNewPost(postID int, title, authorName string)
	// NotifyNewComment tells the post owner someone commented.
	NotifyNewComment(ownerID, postID int, postTitle, commenterName, preview string)
}

// Multi fans one notification out to several transports.
type Multi []Notifier

func (m Multi) NotifyNewPost(postID int, title, authorName string) {
	for _, n := range m {
		n.NotifyNewPost(postID, title, authorName)
	}
}

func (m Multi) NotifyNewComment(ownerID, postID int, postTitle, commenterName, preview string) {
	for _, n := range m {
		n.NotifyNewComment(ownerID, postID, postTitle, commenterName, preview)
	}
}

// previewLimit caps the comment excerpt carried in a notification.
const previewLimit = 100

func truncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit])
}
