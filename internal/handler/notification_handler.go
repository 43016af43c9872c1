package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-dose-reminder/internal/service/delivery"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/lifecycle"
)

type NotificationHandler struct {
	lifecycle *lifecycle.Service
	sweeper   *delivery.Sweeper
}

func NewNotificationHandler(lifecycleService *lifecycle.Service, sweeper *delivery.Sweeper) *NotificationHandler {
	return &NotificationHandler{
		lifecycle: lifecycleService,
		sweeper:   sweeper,
	}
}

func (h *NotificationHandler) HandleCancel(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	n, err := h.lifecycle.CancelNotification(ctx, id)
	if err != nil {
		respondServiceError(ctx, c, "cancel_notification", err)
		return
	}

	c.JSON(http.StatusOK, toNotificationResponse(n))
}

// HandleSweep runs one delivery sweep inline and returns its report. A sweep already in
// flight answers 409.
func (h *NotificationHandler) HandleSweep(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.sweeper.RunDeliverySweep(ctx)
	if err != nil {
		respondServiceError(ctx, c, "delivery_sweep", err)
		return
	}

	slog.InfoContext(ctx, "manual delivery sweep completed",
		slog.String("run_id", report.RunID),
		slog.Int("due", report.Due),
		slog.Int("sent", report.Sent),
	)

	c.JSON(http.StatusOK, report)
}
