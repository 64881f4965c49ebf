package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Subscription delivers save events of one namespace. Caller must call
// Close() when done.
type Subscription struct {
	events <-chan *SaveEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of save events. It is closed when the
// subscription is closed or its context is cancelled.
func (s *Subscription) Events() <-chan *SaveEvent {
	return s.events
}

// Errors returns malformed-message errors. The subscription continues
// after them.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer and is safe to call
// more than once.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeSaveEvents subscribes to the namespace's event channel. The
// subscription is confirmed by Redis before it is returned, so no Save
// issued afterwards is missed.
func (r *Redis) SubscribeSaveEvents(ctx context.Context) (*Subscription, error) {
	pubsub := r.rdb.Subscribe(ctx, AssignmentEventsChannel(r.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to save events: %w", err)
	}

	eventsChan := make(chan *SaveEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event SaveEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal save event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
