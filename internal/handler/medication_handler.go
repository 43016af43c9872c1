package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/service/lifecycle"
)

type MedicationHandler struct {
	lifecycle *lifecycle.Service
}

func NewMedicationHandler(lifecycleService *lifecycle.Service) *MedicationHandler {
	return &MedicationHandler{
		lifecycle: lifecycleService,
	}
}

func (h *MedicationHandler) HandleCreate(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "user_id must be a UUID",
			Fields:  []string{"user_id"},
		})
		return
	}

	result, err := h.lifecycle.CreateMedication(ctx, lifecycle.MedicationInput{
		UserID:        userID,
		Name:          req.Name,
		Frequency:     req.Frequency,
		StartTime:     req.StartTime,
		IntervalHours: req.IntervalHours,
	})
	if err != nil {
		respondServiceError(ctx, c, "create_medication", err)
		return
	}

	c.JSON(http.StatusCreated, CreateMedicationResponse{
		Medication:  toMedicationResponse(result.Medication),
		Slots:       toSlotResponses(result.Slots),
		Materialize: result.Materialize,
	})
}

func (h *MedicationHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycle.UpdateMedication(ctx, id, lifecycle.MedicationPatch{
		Name:          req.Name,
		Frequency:     req.Frequency,
		StartTime:     req.StartTime,
		IntervalHours: req.IntervalHours,
	})
	if err != nil {
		respondServiceError(ctx, c, "update_medication", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MedicationHandler) HandleReschedule(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.lifecycle.RescheduleForMedication(ctx, id)
	if err != nil {
		respondServiceError(ctx, c, "reschedule", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MedicationHandler) HandleDelete(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.lifecycle.DeleteMedication(ctx, id)
	if err != nil {
		respondServiceError(ctx, c, "delete_medication", err)
		return
	}

	slog.InfoContext(ctx, "medication deleted via api",
		slog.String("medication_id", id.String()),
	)

	c.JSON(http.StatusOK, DeleteMedicationResponse{
		MedicationID:           id,
		NotificationsCancelled: result.NotificationsCancelled,
		SlotsDeleted:           result.SlotsDeleted,
		HistoryDeleted:         result.HistoryDeleted,
	})
}

func (h *MedicationHandler) HandleCancelAll(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.lifecycle.CancelAllForMedication(ctx, id)
	if err != nil {
		respondServiceError(ctx, c, "cancel_all", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MedicationHandler) HandleCreateSlot(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycle.CreateCustomSlot(ctx, id, req.Time, req.Weekdays)
	if err != nil {
		respondServiceError(ctx, c, "create_custom_slot", err)
		return
	}

	c.JSON(http.StatusCreated, SlotChangeResponse{
		Slot:        toSlotResponse(result.Slot),
		Cancel:      result.Cancel,
		Materialize: result.Materialize,
	})
}
