package notify

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Event signals that the attendance log changed.
type Event struct {
	Kind string // "checkin", "checkout", "clear"
}

// Hub is the abstraction over different change-feed backends. Publishers fire an
// event after every successful mutation; subscribers refresh whatever view they
// hold of the record set.
type Hub interface {
	Publish(ctx context.Context, evt Event) error
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// InMemory is a channel-backed hub for single-process deployments and tests.
type InMemory struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewInMemory creates an in-process hub.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Publish fans the event out to all subscribers. Slow subscribers drop events
// rather than block the mutation path; a dropped event only delays a refresh.
func (h *InMemory) Publish(ctx context.Context, evt Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener that lives until ctx is cancelled.
func (h *InMemory) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		for i, sub := range h.subs {
			if sub == ch {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				break
			}
		}
		h.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// RedisHub broadcasts change events over a redis pub/sub channel so every API
// instance sees mutations made by the others.
type RedisHub struct {
	client  *redis.Client
	channel string
}

// NewRedisHub builds a hub on the named pub/sub channel.
func NewRedisHub(client *redis.Client, channel string) *RedisHub {
	if channel == "" {
		channel = "register:changes"
	}
	return &RedisHub{client: client, channel: channel}
}

// Publish sends the event kind to the channel.
func (h *RedisHub) Publish(ctx context.Context, evt Event) error {
	return h.client.Publish(ctx, h.channel, evt.Kind).Err()
}

// Subscribe streams events until ctx is cancelled.
func (h *RedisHub) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := h.client.Subscribe(ctx, h.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- Event{Kind: msg.Payload}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
