package notify

import (
	"context"
	"encoding/json"

	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

// SQSSender queues the payload for the mail worker.
type SQSSender struct {
	queue   string
	produce func(ctx context.Context, queue string, body string) error
}

func NewSQSSender(queue string) *SQSSender {
	return &SQSSender{queue: queue, produce: lib.SQSProduceMessage}
}

func (s *SQSSender) Send(ctx context.Context, n types.TicketNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.produce(ctx, s.queue, string(body))
}

// KafkaSender publishes the payload on the email topic.
type KafkaSender struct {
	topic   string
	produce func(clientId string, topic string, payload any) error
}

func NewKafkaSender(topic string) *KafkaSender {
	return &KafkaSender{topic: topic, produce: lib.KafkaProduceMessage}
}

func (s *KafkaSender) Send(_ context.Context, n types.TicketNotification) error {
	return s.produce("emails", s.topic, n)
}
