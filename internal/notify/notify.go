// Package notify delivers progress messages, optionally with file
// attachments, to an operator channel.
package notify

import "context"

// Notifier sends one message with optional attachment paths. Attachments
// that do not exist are skipped rather than failing the delivery.
type Notifier interface {
	Notify(ctx context.Context, msg string, attachments []string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg string, attachments []string) error

func (f Func) Notify(ctx context.Context, msg string, attachments []string) error {
	return f(ctx, msg, attachments)
}
