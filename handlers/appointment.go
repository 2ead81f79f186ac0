package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Gilad-Weinberger/netta-nails/config"
	"github.com/Gilad-Weinberger/netta-nails/models"
	"github.com/Gilad-Weinberger/netta-nails/services"
	"github.com/Gilad-Weinberger/netta-nails/store"
)

// BookingStore is the slice of the appointment store the booking workflow
// needs.
type BookingStore interface {
	ListAvailable() ([]models.Appointment, error)
	ListForUser(uid string) ([]models.Appointment, error)
	Get(id string) (*models.Appointment, error)
	Book(id string, by models.BookedBy) (*models.Appointment, error)
	Cancel(id string) error
}

type AppointmentHandler struct {
	store    BookingStore
	notifier services.Notifier
	config   *config.Config
}

func NewAppointmentHandler(st BookingStore, notifier services.Notifier, cfg *config.Config) *AppointmentHandler {
	return &AppointmentHandler{
		store:    st,
		notifier: notifier,
		config:   cfg,
	}
}

func (h *AppointmentHandler) GetAvailableAppointments(c *gin.Context) {
	appointments, err := h.store.ListAvailable()
	if err != nil {
		log.WithError(err).Error("failed to list available appointments")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בטעינת התורים הזמינים",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    appointments,
	})
}

func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	uid := c.GetString("user_id")

	appointments, err := h.store.ListForUser(uid)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to list user appointments")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בטעינת התורים שלך",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    appointments,
	})
}

// BookAppointment books a slot for the caller, then sends best-effort
// WhatsApp notifications to the caller and to the salon's admin phone.
// A failed notification never rolls the booking back; it only degrades the
// returned status message.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	id := c.Param("id")
	by := models.BookedBy{
		UID:   c.GetString("user_id"),
		Name:  c.GetString("name"),
		Phone: c.GetString("phone"),
	}

	appointment, err := h.store.Book(id, by)
	if err != nil {
		h.bookingError(c, err)
		return
	}

	userRes := h.notifier.Send(by.Phone, by.Name, appointment.Date, appointment.Time, false)
	adminRes := h.notifier.Send(h.config.AdminPhone, by.Name, appointment.Date, appointment.Time, false)
	if !userRes.Success {
		log.WithError(userRes.Err).WithField("uid", by.UID).Warn("booking notification to user failed")
	}
	if !adminRes.Success {
		log.WithError(adminRes.Err).Warn("booking notification to admin failed")
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: bookingMessage(userRes),
		Data: gin.H{
			"appointment":   appointment,
			"notified":      userRes.Success,
			"adminNotified": adminRes.Success,
		},
	})
}

// CancelAppointment re-fetches the authoritative record, checks ownership and
// the cutoff against it (never against a client-cached copy), resets the slot
// and sends a best-effort cancellation notification.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id := c.Param("id")
	uid := c.GetString("user_id")
	role := c.GetString("role")

	appointment, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Error:   "התור לא נמצא",
			})
			return
		}
		log.WithError(err).WithField("id", id).Error("failed to load appointment for cancel")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בביטול התור",
		})
		return
	}

	if appointment.Status != models.StatusBooked || appointment.BookedBy == nil {
		c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Error:   "התור אינו תפוס",
		})
		return
	}

	if appointment.BookedBy.UID != uid && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Error:   "לא ניתן לבטל תור של משתמש אחר",
		})
		return
	}

	startsAt, err := appointment.StartsAt(h.config.Location())
	if err == nil && time.Until(startsAt) < h.config.Cutoff() {
		c.JSON(http.StatusUnprocessableEntity, models.Response{
			Success: false,
			Error:   fmt.Sprintf("לא ניתן לבטל תור פחות מ-%d שעות לפני מועד התור", h.config.CutoffHours),
		})
		return
	}

	if err := h.store.Cancel(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Error:   "התור לא נמצא",
			})
			return
		}
		log.WithError(err).WithField("id", id).Error("failed to cancel appointment")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בביטול התור",
		})
		return
	}

	res := h.notifier.Send(appointment.BookedBy.Phone, appointment.BookedBy.Name, appointment.Date, appointment.Time, true)
	if !res.Success {
		log.WithError(res.Err).WithField("uid", uid).Warn("cancellation notification failed")
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: cancellationMessage(res),
		Data: gin.H{
			"notified": res.Success,
		},
	})
}

func (h *AppointmentHandler) bookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Error:   "התור לא נמצא",
		})
	case errors.Is(err, store.ErrAlreadyBooked):
		c.JSON(http.StatusConflict, models.Response{
			Success: false,
			Error:   "התור כבר נתפס",
		})
	case errors.Is(err, store.ErrTooLate):
		c.JSON(http.StatusUnprocessableEntity, models.Response{
			Success: false,
			Error:   fmt.Sprintf("ניתן לקבוע תורים רק עד %d שעות לפני מועד התור", h.config.CutoffHours),
		})
	default:
		log.WithError(err).Error("failed to book appointment")
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "שגיאה בקביעת התור",
		})
	}
}

func bookingMessage(res services.SendResult) string {
	switch {
	case res.Success:
		return "התור נקבע בהצלחה! קיבלת הודעת וואטסאפ עם פרטי התור"
	case res.NotOptedIn:
		return "התור נקבע בהצלחה! לא ניתן היה לשלוח הודעה - המספר אינו רשום לקבלת הודעות וואטסאפ"
	default:
		return "התור נקבע בהצלחה! שליחת הודעת האישור נכשלה"
	}
}

func cancellationMessage(res services.SendResult) string {
	switch {
	case res.Success:
		return "התור בוטל בהצלחה! נשלחה הודעת אישור בוואטסאפ"
	case res.NotOptedIn:
		return "התור בוטל בהצלחה! לא ניתן היה לשלוח הודעה - המספר אינו רשום לקבלת הודעות וואטסאפ"
	default:
		return "התור בוטל בהצלחה! שליחת הודעת האישור נכשלה"
	}
}
