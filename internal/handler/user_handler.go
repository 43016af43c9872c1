package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
)

type UserHandler struct {
	settings *settings.Service
	devices  domain.DeviceRepository
	clock    domain.Clock
}

func NewUserHandler(settingsService *settings.Service, devices domain.DeviceRepository, clock domain.Clock) *UserHandler {
	return &UserHandler{
		settings: settingsService,
		devices:  devices,
		clock:    clock,
	}
}

func (h *UserHandler) HandleGetSettings(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	s, err := h.settings.Get(ctx, userID)
	if err != nil {
		respondServiceError(ctx, c, "get_settings", err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(s))
}

// HandleUpdateSettings applies a partial update. Already materialized reminders keep their
// send time.
func (h *UserHandler) HandleUpdateSettings(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.settings.Update(ctx, userID, req.patch())
	if err != nil {
		respondServiceError(ctx, c, "update_settings", err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(s))
}

func (h *UserHandler) HandleRegisterDevice(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RegisterDeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	token := strings.TrimSpace(req.PushToken)
	if token == "" {
		respondServiceError(ctx, c, "register_device", domain.NewValidationError("push token is blank", "push_token"))
		return
	}

	device := &domain.Device{
		ID:        uuid.New(),
		UserID:    userID,
		PushToken: token,
		Platform:  req.Platform,
		CreatedAt: h.clock.Now(),
	}
	if err := h.devices.SaveDevice(ctx, device); err != nil {
		respondServiceError(ctx, c, "register_device", err)
		return
	}

	slog.InfoContext(ctx, "device registered",
		slog.String("user_id", userID.String()),
		slog.String("platform", req.Platform),
	)

	c.JSON(http.StatusCreated, gin.H{
		"id":       device.ID,
		"user_id":  device.UserID,
		"platform": device.Platform,
	})
}
