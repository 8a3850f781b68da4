package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"estateflow/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SaleQueue is an in-memory queue of sale events. The core pushes into it
// when a property is sold; consumers such as invoicing subscribe to it. A
// full or closed queue is reported to the pusher, never to the sale.
type SaleQueue struct {
	items    chan models.SaleEvent
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(models.SaleEvent) error
}

// NewSaleQueue creates a sale queue with the specified buffer size.
func NewSaleQueue(bufferSize int, logger *logrus.Logger) *SaleQueue {
	return &SaleQueue{
		items:    make(chan models.SaleEvent, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(models.SaleEvent) error, 0),
	}
}

// Push adds a sale event to the queue. The closed check and the send happen
// under the same lock so a Push can never race a concurrent Close.
func (q *SaleQueue) Push(event models.SaleEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- event:
		q.logger.WithField("property_id", event.PropertyID).Debug("Pushed sale event to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each event.
func (q *SaleQueue) Subscribe(handler func(models.SaleEvent) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing events in the queue.
func (q *SaleQueue) Start() {
	go q.process()
}

func (q *SaleQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case event := <-q.items:
			q.dispatch(event)
		}
	}
}

// dispatch sends the event to all subscribed handlers.
func (q *SaleQueue) dispatch(event models.SaleEvent) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			q.logger.WithError(err).Error("Handler failed to process sale event")
		}
	}
}

// Close stops the queue and prevents new events from being added. The items
// channel is left open on purpose: closing it would make the processing loop
// receive zero-value events and hand them to subscribers. Shutdown is
// signalled through done only.
func (q *SaleQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	return nil
}

// Len returns the current number of events in the queue.
func (q *SaleQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *SaleQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
