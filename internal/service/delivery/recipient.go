package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/infra/push"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/tracing"
)

// deliverRecipientSafely confines any panic to the recipient; its rows stay scheduled.
func (s *Sweeper) deliverRecipientSafely(ctx context.Context, userID uuid.UUID, rows []*domain.ScheduledNotification) (outcome recipientOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic while delivering to recipient",
				slog.String("user_id", userID.String()),
				slog.Any("panic", r),
			)
			outcome = recipientOutcome{deferred: len(rows), err: fmt.Errorf("panic: %v", r)}
		}
		if s.metrics != nil {
			result := "ok"
			if outcome.err != nil {
				result = "error"
			}
			s.metrics.RecordRecipientBatch(ctx, result)
		}
	}()

	return s.deliverRecipient(ctx, userID, rows)
}

func (s *Sweeper) deliverRecipient(ctx context.Context, userID uuid.UUID, rows []*domain.ScheduledNotification) recipientOutcome {
	ctx, span := tracing.StartRecipientSpan(ctx, userID.String(), len(rows))
	defer span.End()

	var outcome recipientOutcome

	userSettings, err := s.settings.Get(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load reminder settings, deferring recipient",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		tracing.RecordError(span, err)
		return recipientOutcome{deferred: len(rows), err: err}
	}

	if !userSettings.PushEnabled {
		for _, n := range rows {
			s.resolve(ctx, n, &outcome, func(at time.Time) (domain.StatusTransition, error) {
				return n.Cancel(domain.ReasonPushDisabled, at)
			})
		}
		return outcome
	}

	tokens, err := s.store.ListPushTokens(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to list push tokens, deferring recipient",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		tracing.RecordError(span, err)
		return recipientOutcome{deferred: len(rows), err: err}
	}

	if len(tokens) == 0 {
		for _, n := range rows {
			s.resolve(ctx, n, &outcome, func(at time.Time) (domain.StatusTransition, error) {
				return n.MarkFailed(domain.ReasonNoDestination, at)
			})
		}
		return outcome
	}

	sendable := make([]*domain.ScheduledNotification, 0, len(rows))
	for _, n := range rows {
		first, err := s.markDispatched(ctx, n.ID)
		if err != nil {
			slog.WarnContext(ctx, "failed to set dispatch marker, deferring notification",
				slog.String("notification_id", n.ID.String()),
				slog.String("error", err.Error()),
			)
			outcome.deferred++
			continue
		}
		if !first {
			s.resolve(ctx, n, &outcome, func(at time.Time) (domain.StatusTransition, error) {
				return n.MarkFailed(domain.ReasonDispatchAttempted, at)
			})
			continue
		}
		sendable = append(sendable, n)
	}

	if len(sendable) == 0 {
		return outcome
	}

	messages := buildMessages(sendable, tokens)
	results, sendErr := s.send(ctx, messages)

	for i, n := range sendable {
		var perDevice []push.Result
		if sendErr == nil {
			perDevice = results[i*len(tokens) : (i+1)*len(tokens)]
		}
		ticketID, reason := summarize(perDevice, sendErr)

		if ticketID != "" {
			s.resolve(ctx, n, &outcome, func(at time.Time) (domain.StatusTransition, error) {
				return n.MarkSent(ticketID, at)
			})
			continue
		}
		s.resolve(ctx, n, &outcome, func(at time.Time) (domain.StatusTransition, error) {
			return n.MarkFailed(reason, at)
		})
	}

	tracing.RecordError(span, sendErr)
	return outcome
}

func (s *Sweeper) markDispatched(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.ledger == nil {
		return true, nil
	}
	return s.ledger.MarkDispatched(ctx, id)
}

// send chunks messages to the configured max batch and concatenates the results.
func (s *Sweeper) send(ctx context.Context, messages []push.Message) ([]push.Result, error) {
	results := make([]push.Result, 0, len(messages))
	for start := 0; start < len(messages); start += s.cfg.MaxBatch {
		end := min(start+s.cfg.MaxBatch, len(messages))
		chunk, err := s.transport.Send(ctx, messages[start:end])
		if err != nil {
			return nil, err
		}
		if len(chunk) != end-start {
			return nil, fmt.Errorf("push transport returned %d results for %d messages", len(chunk), end-start)
		}
		results = append(results, chunk...)
	}
	return results, nil
}

// buildMessages addresses every notification to every device, notification-major.
func buildMessages(rows []*domain.ScheduledNotification, tokens []string) []push.Message {
	messages := make([]push.Message, 0, len(rows)*len(tokens))
	for _, n := range rows {
		data := map[string]string{
			"notification_id": n.ID.String(),
			"medication_id":   n.MedicationID.String(),
			"slot_id":         n.SlotID.String(),
			"dose_at":         n.DoseAt.Format(time.RFC3339),
		}
		for _, token := range tokens {
			messages = append(messages, push.Message{
				To:    token,
				Title: n.Title,
				Body:  n.Body,
				Data:  data,
			})
		}
	}
	return messages
}

// summarize picks the first accepted ticket, or joins the distinct rejection reasons.
func summarize(perDevice []push.Result, sendErr error) (string, string) {
	if sendErr != nil {
		return "", sendErr.Error()
	}

	var reasons []string
	seen := make(map[string]bool)
	for _, r := range perDevice {
		if r.OK() {
			return r.TicketID, ""
		}
		reason := r.Error
		if reason == "" {
			reason = "empty ticket"
		}
		if !seen[reason] {
			seen[reason] = true
			reasons = append(reasons, reason)
		}
	}
	return "", strings.Join(reasons, "; ")
}

// resolve applies a terminal transition. A row that is no longer scheduled was resolved
// elsewhere and is not counted; a failed write leaves it scheduled.
func (s *Sweeper) resolve(
	ctx context.Context,
	n *domain.ScheduledNotification,
	outcome *recipientOutcome,
	transition func(at time.Time) (domain.StatusTransition, error),
) {
	t, err := transition(s.clock.Now())
	if err != nil {
		slog.WarnContext(ctx, "notification not in scheduled state",
			slog.String("notification_id", n.ID.String()),
			slog.String("status", n.Status.String()),
		)
		return
	}

	applied, err := s.store.TransitionNotification(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist notification status",
			slog.String("notification_id", n.ID.String()),
			slog.String("status", t.To.String()),
			slog.String("error", err.Error()),
		)
		outcome.deferred++
		return
	}
	if !applied {
		return
	}

	switch t.To {
	case domain.NotificationStatusSent:
		outcome.sent++
	case domain.NotificationStatusFailed:
		outcome.failed++
	case domain.NotificationStatusCancelled:
		outcome.cancelled++
	}
}
