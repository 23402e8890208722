package controller

import (
	"context"
	"net/url"
	"sync"
)

// Event is reported to a Loop observer after every action or response.
type Event struct {
	Action  *Action
	Outcome *Outcome
	// Applied is true when an outcome was painted.
	Applied bool
	// Err is set when an action was rejected.
	Err error
}

// Loop serialises actions and responses on one goroutine. Searches run in
// their own goroutines and report back to the loop, so a slow request never
// blocks further input.
type Loop struct {
	c        *Controller
	actions  chan Action
	outcomes chan Outcome
	observe  func(Event)
	wg       sync.WaitGroup
}

// NewLoop returns a loop for c. observe may be nil.
func NewLoop(c *Controller, observe func(Event)) *Loop {
	if observe == nil {
		observe = func(Event) {}
	}
	return &Loop{
		c:        c,
		actions:  make(chan Action, 16),
		outcomes: make(chan Outcome, 16),
		observe:  observe,
	}
}

// Send queues an action. It blocks while the queue is full.
func (l *Loop) Send(ctx context.Context, a Action) error {
	select {
	case l.actions <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs the initial load for params and then processes actions until
// ctx is done. In-flight searches are waited for before Run returns.
func (l *Loop) Run(ctx context.Context, params url.Values) error {
	defer l.wg.Wait()

	l.start(ctx, l.c.Load(ctx, params))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-l.actions:
			p, err := l.c.Dispatch(ctx, a)
			l.observe(Event{Action: &a, Err: err})
			if err == nil {
				l.start(ctx, p)
			}
		case o := <-l.outcomes:
			applied := l.c.Apply(o)
			l.observe(Event{Outcome: &o, Applied: applied})
		}
	}
}

func (l *Loop) start(ctx context.Context, p Pending) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		o := p.Run()
		select {
		case l.outcomes <- o:
		case <-ctx.Done():
		}
	}()
}
