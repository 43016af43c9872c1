package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
)

// MemStore is an in-memory domain.Store for service tests. The Err* maps inject failures
// keyed by user, slot or notification id.
type MemStore struct {
	mu sync.Mutex

	medications   map[uuid.UUID]*domain.Medication
	slots         map[uuid.UUID]*domain.RecurringSlot
	notifications map[uuid.UUID]*domain.ScheduledNotification
	settings      map[uuid.UUID]*domain.ReminderSettings
	history       []*domain.HistoryEntry
	devices       []*domain.Device

	ErrListPushTokens map[uuid.UUID]error
	ErrGetSettings    map[uuid.UUID]error
	ErrTransition     map[uuid.UUID]error
	ErrCreateForSlot  map[uuid.UUID]error
}

var _ domain.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		medications:       make(map[uuid.UUID]*domain.Medication),
		slots:             make(map[uuid.UUID]*domain.RecurringSlot),
		notifications:     make(map[uuid.UUID]*domain.ScheduledNotification),
		settings:          make(map[uuid.UUID]*domain.ReminderSettings),
		ErrListPushTokens: make(map[uuid.UUID]error),
		ErrGetSettings:    make(map[uuid.UUID]error),
		ErrTransition:     make(map[uuid.UUID]error),
		ErrCreateForSlot:  make(map[uuid.UUID]error),
	}
}

func (s *MemStore) CreateMedication(_ context.Context, med *domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *med
	s.medications[med.ID] = &m
	return nil
}

func (s *MemStore) UpdateMedication(_ context.Context, med *domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.medications[med.ID]; !ok {
		return domain.ErrMedicationNotFound
	}
	m := *med
	s.medications[med.ID] = &m
	return nil
}

func (s *MemStore) GetMedication(_ context.Context, id uuid.UUID) (*domain.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medications[id]
	if !ok {
		return nil, domain.ErrMedicationNotFound
	}
	c := *m
	return &c, nil
}

func (s *MemStore) DeleteMedicationCascade(_ context.Context, id uuid.UUID, at time.Time) (*domain.CascadeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.medications[id]; !ok {
		return nil, domain.ErrMedicationNotFound
	}

	result := &domain.CascadeResult{}
	for _, n := range s.notifications {
		if n.MedicationID == id && n.Status == domain.NotificationStatusScheduled {
			if _, err := n.Cancel(domain.ReasonMedicationDeleted, at); err == nil {
				result.NotificationsCancelled++
			}
		}
	}
	for sid, slot := range s.slots {
		if slot.MedicationID == id {
			delete(s.slots, sid)
			result.SlotsDeleted++
		}
	}
	kept := s.history[:0]
	for _, h := range s.history {
		if h.MedicationID == id {
			result.HistoryDeleted++
			continue
		}
		kept = append(kept, h)
	}
	s.history = kept
	delete(s.medications, id)
	return result, nil
}

func copySlot(slot *domain.RecurringSlot) *domain.RecurringSlot {
	c := *slot
	return &c
}

func (s *MemStore) CreateSlot(_ context.Context, slot *domain.RecurringSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ID] = copySlot(slot)
	return nil
}

func (s *MemStore) GetSlot(_ context.Context, id uuid.UUID) (*domain.RecurringSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (s *MemStore) listSlots(medicationID uuid.UUID, activeOnly bool) []*domain.RecurringSlot {
	var out []*domain.RecurringSlot
	for _, slot := range s.slots {
		if slot.MedicationID != medicationID || (activeOnly && !slot.Active) {
			continue
		}
		out = append(out, copySlot(slot))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOffset != out[j].DayOffset {
			return out[i].DayOffset < out[j].DayOffset
		}
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

func (s *MemStore) ListSlots(_ context.Context, medicationID uuid.UUID) ([]*domain.RecurringSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listSlots(medicationID, false), nil
}

func (s *MemStore) ListActiveSlots(_ context.Context, medicationID uuid.UUID) ([]*domain.RecurringSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listSlots(medicationID, true), nil
}

func (s *MemStore) DeleteAutoSlots(_ context.Context, medicationID uuid.UUID, keep ...uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, slot := range s.slots {
		if slot.MedicationID == medicationID && slot.Source == domain.SlotSourceAuto && !slices.Contains(keep, id) {
			delete(s.slots, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemStore) SetSlotActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return domain.ErrSlotNotFound
	}
	slot.Active = active
	return nil
}

func copyNotification(n *domain.ScheduledNotification) *domain.ScheduledNotification {
	c := *n
	if n.ResolvedAt != nil {
		at := *n.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

func (s *MemStore) hasActive(slotID uuid.UUID, doseDay string) bool {
	for _, n := range s.notifications {
		if n.SlotID == slotID && n.DoseDay == doseDay && n.Status != domain.NotificationStatusCancelled {
			return true
		}
	}
	return false
}

func (s *MemStore) CreateNotification(_ context.Context, n *domain.ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ErrCreateForSlot[n.SlotID]; err != nil {
		return err
	}
	if s.hasActive(n.SlotID, n.DoseDay) {
		return domain.ErrDuplicateNotification
	}
	s.notifications[n.ID] = copyNotification(n)
	return nil
}

func (s *MemStore) HasActiveNotification(_ context.Context, slotID uuid.UUID, doseDay string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActive(slotID, doseDay), nil
}

func (s *MemStore) GetNotification(_ context.Context, id uuid.UUID) (*domain.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return copyNotification(n), nil
}

func (s *MemStore) filterNotifications(keep func(n *domain.ScheduledNotification) bool) []*domain.ScheduledNotification {
	var out []*domain.ScheduledNotification
	for _, n := range s.notifications {
		if keep(n) {
			out = append(out, copyNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SendAt.Equal(out[j].SendAt) {
			return out[i].SendAt.Before(out[j].SendAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *MemStore) ListDueNotifications(_ context.Context, now time.Time, limit int) ([]*domain.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := s.filterNotifications(func(n *domain.ScheduledNotification) bool {
		return n.Status == domain.NotificationStatusScheduled && !n.SendAt.After(now)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemStore) ListScheduledForMedication(_ context.Context, medicationID uuid.UUID) ([]*domain.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterNotifications(func(n *domain.ScheduledNotification) bool {
		return n.MedicationID == medicationID && n.Status == domain.NotificationStatusScheduled
	}), nil
}

func (s *MemStore) ListScheduledForSlot(_ context.Context, slotID uuid.UUID) ([]*domain.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterNotifications(func(n *domain.ScheduledNotification) bool {
		return n.SlotID == slotID && n.Status == domain.NotificationStatusScheduled
	}), nil
}

func (s *MemStore) TransitionNotification(_ context.Context, t domain.StatusTransition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ErrTransition[t.NotificationID]; err != nil {
		return false, err
	}
	n, ok := s.notifications[t.NotificationID]
	if !ok || n.Status != domain.NotificationStatusScheduled {
		return false, nil
	}
	at := t.At
	n.Status = t.To
	n.TicketID = t.TicketID
	n.Reason = t.Reason
	n.ResolvedAt = &at
	return true, nil
}

// Notifications returns every stored notification, for assertions.
func (s *MemStore) Notifications() []*domain.ScheduledNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterNotifications(func(*domain.ScheduledNotification) bool { return true })
}

// MedicationCount counts stored medications.
func (s *MemStore) MedicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.medications)
}

// SlotCount counts stored slots.
func (s *MemStore) SlotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// CountByStatus counts stored notifications in status.
func (s *MemStore) CountByStatus(status domain.NotificationStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.Status == status {
			count++
		}
	}
	return count
}

// PutNotification stores n as-is, bypassing duplicate checks.
func (s *MemStore) PutNotification(n *domain.ScheduledNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = copyNotification(n)
}

func (s *MemStore) GetSettings(_ context.Context, userID uuid.UUID) (*domain.ReminderSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ErrGetSettings[userID]; err != nil {
		return nil, err
	}
	settings, ok := s.settings[userID]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	c := *settings
	return &c, nil
}

func (s *MemStore) SaveSettings(_ context.Context, settings *domain.ReminderSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *settings
	s.settings[settings.UserID] = &c
	return nil
}

func (s *MemStore) RecordHistory(_ context.Context, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *entry
	s.history = append(s.history, &c)
	return nil
}

func (s *MemStore) latestHistory(slotID uuid.UUID, from, to time.Time) *domain.HistoryEntry {
	var latest *domain.HistoryEntry
	for _, h := range s.history {
		if h.SlotID != slotID || h.ScheduledFor.Before(from) || !h.ScheduledFor.Before(to) {
			continue
		}
		if latest == nil || h.RecordedAt.After(latest.RecordedAt) {
			latest = h
		}
	}
	return latest
}

func (s *MemStore) LatestHistoryForSlot(_ context.Context, slotID uuid.UUID, from, to time.Time) (*domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.latestHistory(slotID, from, to)
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (s *MemStore) RecordMissedIfAbsent(_ context.Context, entry *domain.HistoryEntry, from, to time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latestHistory(entry.SlotID, from, to) != nil {
		return false, nil
	}
	c := *entry
	s.history = append(s.history, &c)
	return true, nil
}

// History returns the recorded entries of a slot, for assertions.
func (s *MemStore) History(slotID uuid.UUID) []*domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.HistoryEntry
	for _, h := range s.history {
		if h.SlotID == slotID {
			c := *h
			out = append(out, &c)
		}
	}
	return out
}

func (s *MemStore) SaveDevice(_ context.Context, device *domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *device
	s.devices = append(s.devices, &c)
	return nil
}

func (s *MemStore) ListPushTokens(_ context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ErrListPushTokens[userID]; err != nil {
		return nil, err
	}
	tokens := []string{}
	for _, d := range s.devices {
		if d.UserID == userID && d.PushToken != "" {
			tokens = append(tokens, d.PushToken)
		}
	}
	return tokens, nil
}
