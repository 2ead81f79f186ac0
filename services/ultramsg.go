package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// UltraMsgClient sends WhatsApp messages through the UltraMsg chat API.
type UltraMsgClient struct {
	InstanceID  string
	Token       string
	BaseURL     string
	CountryCode string
	Client      *http.Client
}

func NewUltraMsgClient(instanceID, token, baseURL, countryCode string) *UltraMsgClient {
	return &UltraMsgClient{
		InstanceID:  instanceID,
		Token:       token,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		CountryCode: countryCode,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type ultraMsgResponse struct {
	Status  string      `json:"status"`
	Sent    interface{} `json:"sent"`
	Message string      `json:"message"`
	ID      interface{} `json:"id"`
	Error   interface{} `json:"error"`
}

func messageText(name, date, timeOfDay string, isCancellation bool) string {
	if isCancellation {
		return fmt.Sprintf("תור ללק ג'ל ל-%s בתאריך %s בשעה %s בוטל.", name, date, timeOfDay)
	}
	return fmt.Sprintf("תור ללק ג'ל ל-%s נקבע לתאריך %s בשעה %s.", name, date, timeOfDay)
}

func (u *UltraMsgClient) Send(phone, name, date, timeOfDay string, isCancellation bool) SendResult {
	to := NormalizePhone(phone, u.CountryCode)
	body := messageText(name, date, timeOfDay, isCancellation)

	form := url.Values{}
	form.Set("token", u.Token)
	form.Set("to", to)
	form.Set("body", body)

	endpoint := fmt.Sprintf("%s/%s/messages/chat", u.BaseURL, u.InstanceID)
	resp, err := u.Client.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{Err: fmt.Errorf("ultramsg request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SendResult{Err: fmt.Errorf("ultramsg response: %w", err)}
	}

	if resp.StatusCode >= 300 {
		return failure(fmt.Sprintf("ultramsg status %d: %s", resp.StatusCode, respBody))
	}

	var um ultraMsgResponse
	if err := json.Unmarshal(respBody, &um); err != nil {
		return SendResult{Err: fmt.Errorf("ultramsg decode: %w", err)}
	}

	// The API answers in several shapes: {"status":"success","id":...},
	// {"sent":true} or {"message":"ok"}.
	if um.Status == "success" || fmt.Sprint(um.Sent) == "true" || um.Message == "ok" {
		messageID := "sent"
		if um.ID != nil {
			messageID = fmt.Sprint(um.ID)
		} else if um.Message != "" {
			messageID = um.Message
		}
		log.WithFields(log.Fields{"to": to, "message_id": messageID}).Info("whatsapp message sent")
		return SendResult{Success: true, MessageID: messageID}
	}

	reason := um.Message
	if um.Error != nil {
		reason = fmt.Sprint(um.Error)
	}
	if reason == "" {
		reason = "failed to send WhatsApp message"
	}
	return failure(reason)
}

func failure(reason string) SendResult {
	lower := strings.ToLower(reason)
	notOptedIn := strings.Contains(lower, "not opted in") ||
		strings.Contains(lower, "not a valid whatsapp") ||
		strings.Contains(lower, "non-whatsapp")
	return SendResult{Err: fmt.Errorf("%s", reason), NotOptedIn: notOptedIn}
}
