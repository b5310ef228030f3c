package notify

import (
	"context"
	"time"

	"github.com/Skotchmaster/online_quiz/internal/mykafka"
)

// KafkaSender hands messages to a downstream mailer through notification_events.
type KafkaSender struct {
	Producer mykafka.Publisher
	Topic    string
}

func NewKafkaSender(p mykafka.Publisher) *KafkaSender {
	return &KafkaSender{Producer: p, Topic: mykafka.TopicNotificationEvents}
}

func (s *KafkaSender) Deliver(ctx context.Context, msg Message) error {
	event := map[string]interface{}{
		"type":     msg.Kind,
		"to":       msg.To,
		"username": msg.Username,
		"subject":  msg.Subject,
		"html":     msg.HTML,
		"at":       time.Now().UTC(),
	}
	return s.Producer.PublishEvent(ctx, s.Topic, msg.To, event)
}
