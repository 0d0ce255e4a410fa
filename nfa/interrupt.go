package nfa

import (
	"context"
	"fmt"
)

// Signal is a pending request observed when polling an Interrupter.
type Signal uint8

const (
	SignalNone Signal = iota
	SignalInterrupt
	SignalStackOverflow
)

// Interrupter lets the embedder stop long-running searches. Poll is called
// every pollInterval consumed code units.
type Interrupter interface {
	// Poll returns the pending signal, if any.
	Poll() Signal

	// HandleInterrupts services a SignalInterrupt. A non-nil error aborts
	// the search.
	HandleInterrupts() error
}

// CallOrigin tells the interpreter who is waiting for the result.
type CallOrigin uint8

const (
	// OriginRuntime calls service interrupts in place and continue.
	OriginRuntime CallOrigin = iota

	// OriginGenerated calls cannot service interrupts; they abort with
	// ErrRetry and the caller re-enters after handling them.
	OriginGenerated
)

// pollInterval is the number of consumed units between interrupt checks.
const pollInterval = 64

type contextInterrupter struct {
	ctx context.Context
}

// ContextInterrupter returns an Interrupter that signals once ctx is done.
// HandleInterrupts reports ctx.Err(), so runtime-origin calls abort with an
// error wrapping both ErrException and the context error.
func ContextInterrupter(ctx context.Context) Interrupter {
	return contextInterrupter{ctx: ctx}
}

func (c contextInterrupter) Poll() Signal {
	if c.ctx.Err() != nil {
		return SignalInterrupt
	}
	return SignalNone
}

func (c contextInterrupter) HandleInterrupts() error {
	return c.ctx.Err()
}

// checkInterrupt polls the interrupter and converts a signal to an error.
func checkInterrupt(in Interrupter, origin CallOrigin) error {
	if in == nil {
		return nil
	}
	switch in.Poll() {
	case SignalNone:
		return nil
	case SignalStackOverflow:
		return fmt.Errorf("%w: stack overflow", ErrException)
	}
	if origin == OriginGenerated {
		return ErrRetry
	}
	if err := in.HandleInterrupts(); err != nil {
		return fmt.Errorf("%w: %w", ErrException, err)
	}
	return nil
}
