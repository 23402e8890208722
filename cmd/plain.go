package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rubiojr/explore/pkg/controller"
)

const plainHelp = `commands:
  query|author|description|tags|tournament_type|sorting VALUE   edit a filter
  tag TAG            search for a tag
  category TEXT      select a category by its display text
  clear              reset the filters
  quit`

// parseCommand turns one line of plain mode input into a page action.
func parseCommand(line string) (controller.Action, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "tag":
		if arg == "" {
			return controller.Action{}, fmt.Errorf("tag needs a value")
		}
		return controller.SelectTag(arg), nil
	case "category":
		return controller.SelectCategory(arg), nil
	case "clear":
		return controller.Clear(), nil
	}

	switch f := controller.Field(verb); f {
	case controller.FieldQuery, controller.FieldAuthor, controller.FieldDescription,
		controller.FieldTags, controller.FieldCategory, controller.FieldSort:
		return controller.Input(f, arg), nil
	}
	return controller.Action{}, fmt.Errorf("unknown command %q", verb)
}

// lockedWriter serialises writes from the loop observer and the input reader.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// runPlain drives ctrl from line input through a controller loop and prints
// every painted result set to out. When input ends it waits for the latest
// search to be painted.
func runPlain(ctx context.Context, ctrl *controller.Controller, params url.Values, in io.Reader, w io.Writer, width int, loc *time.Location) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := &lockedWriter{w: w}
	var painted, handled atomic.Uint64
	loop := controller.NewLoop(ctrl, func(ev controller.Event) {
		if ev.Action != nil {
			handled.Add(1)
		}
		if ev.Applied {
			painted.Store(ev.Outcome.Seq)
		}
		switch {
		case ev.Err != nil:
			fmt.Fprintf(out, "error: %v\n", ev.Err)
		case ev.Applied:
			snap := ctrl.View().Snapshot()
			printResults(out, snap.Counter, snap.Items, width, loc)
		}
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, params) }()

	fmt.Fprintln(out, plainHelp)
	var sent uint64
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		a, err := parseCommand(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err := loop.Send(ctx, a); err != nil {
			return err
		}
		sent++
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for handled.Load() != sent || painted.Load() != ctrl.Latest() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case <-tick.C:
		}
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
