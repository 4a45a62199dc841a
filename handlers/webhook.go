package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/calendly"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/metrics"
	"clementus360/coaching-portal/repository"
	"clementus360/coaching-portal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxWebhookBody = 1 << 20

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CalendlyWebhook applies booking and cancellation notifications to the
// session named in the booking link's utm_content. Bookings that do not map
// to a session are acknowledged and ignored so Calendly stops retrying.
func (h *Handler) CalendlyWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, "Invalid body", http.StatusBadRequest)
		return
	}

	if h.settings.CalendlySigningKey == "" {
		config.Logger.Error("Calendly webhook received but CALENDLY_SIGNING_KEY is not configured")
		metrics.WebhookEvents.WithLabelValues("unknown", "unauthorized").Inc()
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := calendly.Verify(r.Header.Get(calendly.SignatureHeader), body, h.settings.CalendlySigningKey, h.now(), h.settings.CalendlyTolerance); err != nil {
		config.Logger.Warn("Rejected Calendly webhook:", err)
		metrics.WebhookEvents.WithLabelValues("unknown", "unauthorized").Inc()
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event calendly.Event
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "invalid").Inc()
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	log := config.Logger.WithFields(logrus.Fields{
		"event":       event.Event,
		"invitee_uri": event.Payload.URI,
	})

	var cols repository.Columns
	switch event.Event {
	case calendly.EventInviteeCreated:
		se := event.Payload.ScheduledEvent
		cols = repository.Columns{
			"status":          types.SessionBooked,
			"booked_start_at": se.StartTime,
			"booked_end_at":   se.EndTime,
			"location":        se.Location.Where(),
			"join_url":        se.Location.JoinURL,
			"cancel_reason":   "",
		}
	case calendly.EventInviteeCanceled:
		reason := ""
		if c := event.Payload.Cancellation; c != nil {
			reason = c.Reason
		}
		cols = repository.Columns{
			"status":        types.SessionCanceled,
			"cancel_reason": reason,
		}
	default:
		log.Info("Ignoring unhandled Calendly event")
		h.ackWebhook(w, event.Event, "ignored", "Event ignored")
		return
	}

	sessionID := event.SessionID()
	if _, err := uuid.Parse(sessionID); err != nil {
		log.Info("Ignoring booking without a portal session")
		h.ackWebhook(w, event.Event, "ignored", "Booking is not tracked")
		return
	}
	log = log.WithField("session_id", sessionID)

	if _, err := h.backend.Service().UpdateSession(r.Context(), sessionID, cols); err != nil {
		if apperr.IsNotFound(err) {
			log.Warn("Calendly booking references an unknown session")
			h.ackWebhook(w, event.Event, "ignored", "Session not found")
			return
		}
		log.Error("Failed to apply Calendly event:", err)
		metrics.WebhookEvents.WithLabelValues(event.Event, "failed").Inc()
		writeError(w, "Failed to update session", http.StatusInternalServerError)
		return
	}

	log.Info("Session updated from Calendly")
	h.ackWebhook(w, event.Event, "applied", "Session updated")
}

func (h *Handler) ackWebhook(w http.ResponseWriter, event, outcome, message string) {
	metrics.WebhookEvents.WithLabelValues(event, outcome).Inc()
	writeJSON(w, http.StatusOK, WebhookResponse{Success: true, Message: message})
}
