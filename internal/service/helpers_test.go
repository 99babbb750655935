package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lumina-be/internal/entity"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/repository/repotest"
	"lumina-be/internal/serializer"
	"lumina-be/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var errBusDown = errors.New("nats: no responders available for request")

// stepClock hands out strictly increasing times starting at start.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{next: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

type noteFixture struct {
	store     *repotest.Store
	publisher *recordingPublisher
	svc       *noteService
	clock     *stepClock
	alice     entity.Caller
	bob       entity.Caller
}

func newNoteFixture() *noteFixture {
	store := repotest.NewStore()
	pub := &recordingPublisher{}
	clock := newStepClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Minute)

	svc := NewNoteService(store, serializer.NewNoteSerializer(nil), pub, logger.NewNopLogger()).(*noteService)
	svc.now = clock.Now

	return &noteFixture{
		store:     store,
		publisher: pub,
		svc:       svc,
		clock:     clock,
		alice:     entity.CallerFor(store.AddUser(&entity.User{Username: "alice", Email: "alice@example.com"})),
		bob:       entity.CallerFor(store.AddUser(&entity.User{Username: "bob"})),
	}
}

func strPtr(s string) *string { return &s }
