package push

import "context"

//go:generate mockgen -source=transport.go -destination=mock.go -package=push

// Message is one notification for one device address.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Result is the outcome for the message at the same index: a ticket id or an error reason.
type Result struct {
	TicketID string
	Error    string
}

func (r Result) OK() bool {
	return r.Error == "" && r.TicketID != ""
}

type Transport interface {
	// Send returns one Result per message. Transport-level failures are reported per item;
	// the error is reserved for a cancelled context or an unencodable batch.
	Send(ctx context.Context, messages []Message) ([]Result, error)
}
