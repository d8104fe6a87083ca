package alerts

import (
	"context"
	"fmt"
)

// MultiSender fans one alert out to several destinations. Every destination
// is attempted even when an earlier one fails.
type MultiSender struct {
	senders []Sender
}

// NewMultiSender creates a sender that fans out to all the given senders
func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

// Send delivers the alert to every destination, collecting failures
func (s *MultiSender) Send(ctx context.Context, payload *AlertPayload) error {
	var failures []error
	for i, sender := range s.senders {
		if err := sender.Send(ctx, payload); err != nil {
			failures = append(failures, fmt.Errorf("destination %d: %w", i, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("alert fan-out: %v", failures)
	}
	return nil
}
