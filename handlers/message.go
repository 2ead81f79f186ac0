package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Gilad-Weinberger/netta-nails/config"
	"github.com/Gilad-Weinberger/netta-nails/services"
)

type MessageHandler struct {
	notifier services.Notifier
	config   *config.Config
}

func NewMessageHandler(notifier services.Notifier, cfg *config.Config) *MessageHandler {
	return &MessageHandler{
		notifier: notifier,
		config:   cfg,
	}
}

type SendMessageRequest struct {
	RecipientPhone string `json:"recipientPhone"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	IsCancellation bool   `json:"isCancellation"`
	SendToAdmin    bool   `json:"sendToAdmin"`
}

// SendMessage is the outbound notification endpoint the front end calls.
// The admin copy is best-effort and never fails the request.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields",
		})
		return
	}

	if req.RecipientPhone == "" || req.Name == "" || req.Date == "" || req.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields",
		})
		return
	}

	result := h.notifier.Send(req.RecipientPhone, req.Name, req.Date, req.Time, req.IsCancellation)

	if req.SendToAdmin && h.config.AdminPhone != "" {
		if adminRes := h.notifier.Send(h.config.AdminPhone, req.Name, req.Date, req.Time, req.IsCancellation); !adminRes.Success {
			log.WithError(adminRes.Err).Warn("admin notification failed")
		}
	}

	if !result.Success {
		errMsg := "failed to send message"
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":      false,
			"error":        errMsg,
			"isNotOptedIn": result.NotOptedIn,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageId": result.MessageID,
	})
}
