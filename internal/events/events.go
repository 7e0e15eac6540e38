package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"linkpage/config"
	"linkpage/internal/models"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	CONFIG_CHANNEL      Channel = "config.updated"
	NOW_PLAYING_CHANNEL Channel = "spotify.now_playing"
)

type MessageType string

const (
	CONFIG_UPDATED MessageType = "config_updated"
	NOW_PLAYING    MessageType = "now_playing"
)

type Event struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Channel   Channel         `json:"channel"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// NewEvent builds an event with a JSON payload.
func NewEvent(eventType MessageType, data any) (Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: payload}, nil
}

type EventHandler func(event Event) error

type EventBus struct {
	client    valkey.Client
	logger    logger.Logger
	config    config.Config
	handlers  map[Channel][]EventHandler
	listening map[Channel]bool
	seen      map[string]time.Time
	mutex     sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(client valkey.Client, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:    client,
		logger:    logger.New("EventBus"),
		config:    config,
		handlers:  make(map[Channel][]EventHandler),
		listening: make(map[Channel]bool),
		seen:      make(map[string]time.Time),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	// Local handlers run first so this process never waits on the round trip.
	eb.notifyLocalHandlers(channel, event)

	if eb.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel", channel,
			"eventID", event.ID,
		)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)
	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	startListener := !eb.listening[channel] && eb.client != nil
	eb.listening[channel] = true
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	if startListener {
		go eb.listenToChannel(channel)
	}

	return nil
}

// notifyLocalHandlers delivers an event once per process. Events published
// here come back through valkey and are dropped by id.
func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.Lock()
	if _, dup := eb.seen[event.ID]; dup {
		eb.mutex.Unlock()
		return
	}
	eb.remember(event.ID)
	handlers := append([]EventHandler(nil), eb.handlers[channel]...)
	eb.mutex.Unlock()

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er(
					"handler failed",
					err,
					"channel", channel,
					"eventID", event.ID,
					"handlerIndex", handlerIndex,
				)
			}
		}(handler, i)
	}
}

const seenRetention = time.Minute

// remember must be called with the mutex held.
func (eb *EventBus) remember(id string) {
	now := time.Now()
	for seenID, at := range eb.seen {
		if now.Sub(at) > seenRetention {
			delete(eb.seen, seenID)
		}
	}
	eb.seen[id] = now
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")
	log.Info("Starting to listen to channel", "channel", channel)

	for {
		err := eb.client.Receive(
			eb.ctx,
			eb.client.B().Subscribe().Channel(channel.String()).Build(),
			func(msg valkey.PubSubMessage) {
				var event Event
				if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
					log.Er("failed to unmarshal event", err, "channel", channel)
					return
				}

				eb.notifyLocalHandlers(channel, event)
			},
		)

		if eb.ctx.Err() != nil {
			return
		}

		log.Er("channel subscription ended, resubscribing", err, "channel", channel)
		select {
		case <-eb.ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}

// ConfigUpdatedPayload carries the whole saved document so every process can
// swap it without reading the row back.
type ConfigUpdatedPayload struct {
	Config  models.ProfileDocument `json:"config"`
	Version int64                  `json:"version"`
}

// NowPlayingPayload carries the latest resolved track snapshot.
type NowPlayingPayload struct {
	NowPlaying types.NowPlaying `json:"nowPlaying"`
}
