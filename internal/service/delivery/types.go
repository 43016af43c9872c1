package delivery

import "time"

// Report summarizes one sweep. Deferred rows were left scheduled for a later sweep.
type Report struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	Due             int       `json:"due_count"`
	Recipients      int       `json:"recipient_count"`
	Sent            int       `json:"sent_count"`
	Failed          int       `json:"failed_count"`
	Cancelled       int       `json:"cancelled_count"`
	Deferred        int       `json:"deferred_count"`
	RecipientErrors int       `json:"recipient_error_count"`
}

type recipientOutcome struct {
	sent      int
	failed    int
	cancelled int
	deferred  int
	err       error
}

func (r *Report) add(o recipientOutcome) {
	r.Sent += o.sent
	r.Failed += o.failed
	r.Cancelled += o.cancelled
	r.Deferred += o.deferred
	if o.err != nil {
		r.RecipientErrors++
	}
}
