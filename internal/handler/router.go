package handler

import "github.com/gin-gonic/gin"

type Handlers struct {
	Medication   *MedicationHandler
	Slot         *SlotHandler
	Notification *NotificationHandler
	User         *UserHandler
}

func (h *Handlers) Register(v1 *gin.RouterGroup) {
	medications := v1.Group("/medications")
	{
		medications.POST("", h.Medication.HandleCreate)
		medications.PATCH("/:id", h.Medication.HandleUpdate)
		medications.DELETE("/:id", h.Medication.HandleDelete)
		medications.POST("/:id/reschedule", h.Medication.HandleReschedule)
		medications.POST("/:id/cancel", h.Medication.HandleCancelAll)
		medications.POST("/:id/slots", h.Medication.HandleCreateSlot)
	}

	slots := v1.Group("/slots")
	{
		slots.PATCH("/:id", h.Slot.HandleUpdate)
		slots.GET("/:id/status", h.Slot.HandleStatus)
		slots.POST("/:id/history", h.Slot.HandleRecordHistory)
	}

	v1.POST("/notifications/:id/cancel", h.Notification.HandleCancel)
	v1.POST("/sweep", h.Notification.HandleSweep)

	users := v1.Group("/users")
	{
		users.GET("/:id/settings", h.User.HandleGetSettings)
		users.PUT("/:id/settings", h.User.HandleUpdateSettings)
		users.POST("/:id/devices", h.User.HandleRegisterDevice)
	}
}
