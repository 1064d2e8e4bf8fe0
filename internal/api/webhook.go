package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
	"github.com/replydesk/replydesk/internal/metrics"
)

// webhookPayload mirrors the shape of an inbound message notification.
// Only the fields the service acts on are declared.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

var errMalformedPayload = errors.New("malformed webhook payload")

// ParseMessageEvent validates a webhook notification body and extracts the
// first text message, if any. Status-only notifications (delivery receipts,
// read receipts) yield ok=false with no error.
func ParseMessageEvent(body []byte) (bot.MessageEvent, bool, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return bot.MessageEvent{}, false, errMalformedPayload
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return bot.MessageEvent{}, false, errMalformedPayload
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return bot.MessageEvent{}, false, nil
	}
	msg := value.Messages[0]
	if msg.From == "" || msg.Text == nil || msg.Text.Body == "" {
		return bot.MessageEvent{}, false, nil
	}
	return bot.MessageEvent{From: msg.From, Text: msg.Text.Body}, true, nil
}

// verifyWebhook answers the platform's subscription handshake.
func (s *Server) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	expected := s.runtime.Current().VerifyToken
	if expected == "" {
		writeError(w, http.StatusForbidden, "verification token not configured")
		return
	}
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")
	if token != expected {
		writeError(w, http.StatusForbidden, "verification failed")
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, challenge); err != nil {
		s.logger.Error("write challenge failed", zap.Error(err))
	}
}

// receiveWebhook handles inbound message notifications. Delivery failures
// are logged but never surfaced: the platform would otherwise retry the
// notification and the user would receive duplicate replies.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	event, ok, err := ParseMessageEvent(body)
	if err != nil {
		metrics.ObserveWebhookMessage(metrics.OutcomeIgnored)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		metrics.ObserveWebhookMessage(metrics.OutcomeIgnored)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if s.denyList.Matches(event.Text) {
		metrics.ObserveWebhookMessage(metrics.OutcomeModerated)
		s.logger.Info("message moderated", zap.String("from", event.From))
		writeJSON(w, http.StatusOK, map[string]string{"status": "moderated"})
		return
	}

	reply, err := s.responder.Respond(r.Context(), event.Text)
	if err != nil {
		s.logger.Error("respond failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if reply == s.cfg.Responder.Fallback {
		metrics.ObserveWebhookMessage(metrics.OutcomeFallback)
	} else {
		metrics.ObserveWebhookMessage(metrics.OutcomeAnswered)
	}

	result, err := s.sender.SendText(r.Context(), event.From, reply)
	if err != nil {
		s.logger.Warn("send failed", zap.String("to", event.From), zap.Error(err))
	} else if !result.OK {
		s.logger.Warn("send rejected", zap.String("to", event.From), zap.Int("status", result.StatusCode))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
