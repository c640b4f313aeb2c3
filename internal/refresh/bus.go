package refresh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	refreshTopic = "widget.refresh"
	// AllInstances addresses every mounted instance.
	AllInstances = "*"
)

// Bus carries force-refresh signals between whoever asks for a refresh and
// the controller that owns the instances. The payload is an instance id or
// AllInstances.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(log),
		),
	}
}

func (b *Bus) Publish(instanceID string) error {
	msg := message.NewMessage(watermill.NewUUID(), []byte(instanceID))
	if err := b.pubsub.Publish(refreshTopic, msg); err != nil {
		return fmt.Errorf("publish refresh signal: %w", err)
	}
	return nil
}

// Subscribe delivers every signal to handle until ctx is done or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, handle func(instanceID string)) error {
	messages, err := b.pubsub.Subscribe(ctx, refreshTopic)
	if err != nil {
		return fmt.Errorf("subscribe to refresh signals: %w", err)
	}
	go func() {
		for msg := range messages {
			handle(string(msg.Payload))
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
