// Package action provides ready-made actions for tokenfsm machines.
package action

import (
	"context"
	"log/slog"

	"github.com/tokenflow/tokenfsm"
)

// Log returns an action that writes msg at info level with the given
// attributes. A nil logger falls back to slog.Default. The action never
// fails, so it is safe on any chain.
func Log(logger *slog.Logger, msg string, attrs ...slog.Attr) tokenfsm.Action {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
		return nil
	}
}

// Func adapts a plain function into an action that never fails.
func Func(fn func()) tokenfsm.Action {
	return func(context.Context) error {
		fn()
		return nil
	}
}

// Fail returns an action that always fails with err. Placed on a transition
// or state it turns an edge that must never fire in production into a loud
// dispatch error instead of a silent move.
func Fail(err error) tokenfsm.Action {
	return func(context.Context) error {
		return err
	}
}
