package amqp

import (
	"time"

	"github.com/rabbitmq/amqp091-go"

	"expensetracker/internal/voice"
)

const contentTypeJSON = "application/json"

// newSegmentPublishing wraps a segment in a persistent JSON message.
func newSegmentPublishing(seg voice.Segment) (amqp091.Publishing, error) {
	body, err := voice.EncodeSegment(seg)
	if err != nil {
		return amqp091.Publishing{}, err
	}
	return amqp091.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		MessageId:    seg.ContextID,
		Body:         body,
	}, nil
}

func segmentFromBody(body []byte) (voice.Segment, error) {
	return voice.DecodeSegment(body)
}
