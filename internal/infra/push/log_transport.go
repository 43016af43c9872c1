package push

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogTransport accepts every message and only logs it. It stands in for the gateway in local
// runs without PUSH_URL.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (t *LogTransport) Send(ctx context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, len(messages))
	for i, m := range messages {
		results[i] = Result{TicketID: "log-" + uuid.NewString()}
		slog.InfoContext(ctx, "push message (log transport)",
			slog.String("to", m.To),
			slog.String("title", m.Title),
			slog.String("ticket_id", results[i].TicketID),
		)
	}
	return results, nil
}
