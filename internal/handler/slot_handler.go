package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/dosestatus"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/lifecycle"
)

type SlotHandler struct {
	lifecycle *lifecycle.Service
	resolver  *dosestatus.Resolver
}

func NewSlotHandler(lifecycleService *lifecycle.Service, resolver *dosestatus.Resolver) *SlotHandler {
	return &SlotHandler{
		lifecycle: lifecycleService,
		resolver:  resolver,
	}
}

// HandleUpdate toggles the active flag. Deactivation cancels pending reminders; reactivation
// materializes them again.
func (h *SlotHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycle.SetSlotActive(ctx, id, *req.Active)
	if err != nil {
		respondServiceError(ctx, c, "set_slot_active", err)
		return
	}

	c.JSON(http.StatusOK, SlotChangeResponse{
		Slot:        toSlotResponse(result.Slot),
		Cancel:      result.Cancel,
		Materialize: result.Materialize,
	})
}

func (h *SlotHandler) HandleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resolution, err := h.resolver.Resolve(ctx, id, c.Query("day"))
	if err != nil {
		respondServiceError(ctx, c, "resolve_dose_status", err)
		return
	}

	c.JSON(http.StatusOK, resolution)
}

func (h *SlotHandler) HandleRecordHistory(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RecordHistoryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.resolver.RecordAction(ctx, id, req.Day, domain.HistoryAction(req.Action))
	if err != nil {
		respondServiceError(ctx, c, "record_history", err)
		return
	}

	c.JSON(http.StatusCreated, HistoryResponse{
		ID:           entry.ID,
		SlotID:       entry.SlotID,
		Action:       string(entry.Action),
		ScheduledFor: entry.ScheduledFor,
		RecordedAt:   entry.RecordedAt,
	})
}
