package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Gilad-Weinberger/netta-nails/config"
	"github.com/Gilad-Weinberger/netta-nails/models"
)

// AdminStore is the slice of the appointment store the admin workflow needs.
type AdminStore interface {
	ListAll() ([]models.Appointment, error)
	Create(req models.CreateAppointmentRequest) (*models.Appointment, error)
	Delete(id string) error
}

type AdminHandler struct {
	store  AdminStore
	config *config.Config
}

func NewAdminHandler(st AdminStore, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		store:  st,
		config: cfg,
	}
}

func (h *AdminHandler) GetAllAppointments(c *gin.Context) {
	appointments, err := h.store.ListAll()
	if err != nil {
		log.WithError(err).Error("failed to list appointments")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בטעינת התורים",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    appointments,
	})
}

func (h *AdminHandler) CreateAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "אנא מלאי את כל השדות הנדרשים",
		})
		return
	}

	if err := req.Validate(h.config.Location(), h.config.OpeningTime, h.config.ClosingTime); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	appointment, err := h.store.Create(req)
	if err != nil {
		log.WithError(err).Error("failed to create appointment")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה ביצירת התור",
		})
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "התור נוצר בהצלחה",
		Data:    appointment,
	})
}

func (h *AdminHandler) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(id); err != nil {
		log.WithError(err).WithField("id", id).Error("failed to delete appointment")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה במחיקת התור",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "התור נמחק בהצלחה",
	})
}
