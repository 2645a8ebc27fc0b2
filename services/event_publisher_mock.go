package services

import (
	"context"
	"sync"
)

// MockEventPublisher records published events in memory for testing
type MockEventPublisher struct {
	events []OrderEvent
	err    error
	mu     sync.RWMutex
}

// NewMockEventPublisher creates a new mock publisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// FailWith makes every following publish return err
func (m *MockEventPublisher) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// PublishOrderEvent records the event
func (m *MockEventPublisher) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// Close does nothing
func (m *MockEventPublisher) Close() error {
	return nil
}

// Events returns a copy of all recorded events
func (m *MockEventPublisher) Events() []OrderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]OrderEvent, len(m.events))
	copy(events, m.events)
	return events
}
