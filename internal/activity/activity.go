// Package activity records audit events in the activity log without
// blocking the request that caused them.
package activity

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lumenboard/lumenboard/internal/db/models"
)

const (
	// TopicInstall is published once when the instance has been set up.
	TopicInstall = "install"
	// TopicUserJoined is published for every account created.
	TopicUserJoined = "user-joined"
	// TopicDatabaseCreate is published when a database connection is added.
	TopicDatabaseCreate = "database-create"

	defaultBufferSize = 256
)

// Event is one activity to record.
type Event struct {
	Topic   string
	UserID  *uint64
	Model   string
	ModelID *uint64
	Details map[string]any
}

// Publisher accepts events and writes them from a single worker goroutine.
type Publisher struct {
	db     *gorm.DB
	events chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewPublisher starts the worker. bufferSize bounds the number of queued events.
func NewPublisher(db *gorm.DB, bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	p := &Publisher{
		db:     db,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}

	go p.run()

	return p
}

// Publish queues evt. It reports false when the event was dropped because the
// queue is full or the publisher is closed.
func (p *Publisher) Publish(evt Event) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		log.Warn().Str("topic", evt.Topic).Msg("activity publisher closed, event dropped")

		return false
	}

	select {
	case p.events <- evt:
		return true
	default:
		log.Warn().Str("topic", evt.Topic).Msg("activity queue full, event dropped")

		return false
	}
}

// Close stops accepting events and waits until queued events are written.
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()

	<-p.done
}

func (p *Publisher) run() {
	defer close(p.done)

	for evt := range p.events {
		row := models.Activity{
			Topic:     evt.Topic,
			UserID:    evt.UserID,
			Model:     evt.Model,
			ModelID:   evt.ModelID,
			Details:   evt.Details,
			Timestamp: time.Now(),
		}

		if err := p.db.Create(&row).Error; err != nil {
			log.Error().Err(err).Str("topic", evt.Topic).Msg("failed to record activity")
		}
	}
}
