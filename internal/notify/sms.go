package notify

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

// SMSNotifier texts the post owner about new comments via Twilio. Broadcast
// notifications are websocket-only, so NotifyNewPost is a no-op here.
type SMSNotifier struct {
	client *twilio.RestClient
	from   string
	db     *gorm.DB
}

// NewSMSNotifier returns nil when Twilio credentials are not configured;
// callers treat a nil notifier as "transport disabled".
func NewSMSNotifier(db *gorm.DB) *SMSNotifier {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	if sid == "" || token == "" || from == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})

	return &SMSNotifier{client: client, from: from, db: db}
}

func (s *SMSNotifier) NotifyNewPost(postID int, title, authorName string) {}

func (s *SMSNotifier) NotifyNewComment(ownerID, postID int, postTitle, commenterName, preview string) {
	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		log.Printf("sms notify: owner %d lookup failed: %v", ownerID, err)
		return
	}
	if owner.Phone == "" {
		return
	}

	body := fmt.Sprintf("%s commented on %q: %s", commenterName, postTitle, truncatePreview(preview))

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(owner.Phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.Printf("sms notify: send to user %d failed: %v", ownerID, err)
	}
}
