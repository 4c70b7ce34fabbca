package notify

import (
	"log"

	"github.com/dkovac/renthub/internal/domain"
)

// LogNotifier implements service.Notifier by logging the event. It
// stands in for the real-time delivery layer, which lives outside this
// service; swapping it out only requires another Notifier.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyNewMessage(msg *domain.Message) {
	log.Printf("notify: new message %s in conversation %s for user %s", msg.ID, msg.ConversationID, msg.ReceiverID)
}
