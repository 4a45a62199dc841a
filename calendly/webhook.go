// Package calendly verifies and decodes Calendly webhook deliveries.
package calendly

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SignatureHeader = "Calendly-Webhook-Signature"

const (
	EventInviteeCreated  = "invitee.created"
	EventInviteeCanceled = "invitee.canceled"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook signature timestamp outside tolerance")
)

type Event struct {
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"created_at"`
	Payload   Invitee   `json:"payload"`
}

type Invitee struct {
	URI            string         `json:"uri"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	CancelURL      string         `json:"cancel_url"`
	RescheduleURL  string         `json:"reschedule_url"`
	Tracking       Tracking       `json:"tracking"`
	ScheduledEvent ScheduledEvent `json:"scheduled_event"`
	Cancellation   *Cancellation  `json:"cancellation,omitempty"`
}

// Tracking carries the UTM parameters of the booking link. The portal puts
// the session id in utm_content.
type Tracking struct {
	UTMCampaign *string `json:"utm_campaign"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMContent  *string `json:"utm_content"`
	UTMTerm     *string `json:"utm_term"`
}

type ScheduledEvent struct {
	URI       string    `json:"uri"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  Location  `json:"location"`
}

type Location struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	JoinURL  string `json:"join_url"`
}

type Cancellation struct {
	CanceledBy string `json:"canceled_by"`
	Reason     string `json:"reason"`
}

// SessionID returns the portal session the booking belongs to, or "" for
// bookings made outside the portal.
func (e Event) SessionID() string {
	if c := e.Payload.Tracking.UTMContent; c != nil {
		return strings.TrimSpace(*c)
	}
	return ""
}

// Where returns a human-readable location, preferring the provider's
// location string over its type.
func (l Location) Where() string {
	if l.Location != "" {
		return l.Location
	}
	return l.Type
}

// Verify checks a "t=<unix>,v1=<hex>" signature header against body. The
// signed content is "<t>.<body>" keyed with the webhook signing key.
func Verify(header string, body []byte, key string, now time.Time, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, mac(ts, body, key)) {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return ErrStaleSignature
		}
	}
	return nil
}

// Sign produces the header value Calendly would send for body at t.
func Sign(body []byte, key string, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac(ts, body, key)))
}

func mac(ts string, body []byte, key string) []byte {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(ts))
	h.Write([]byte("."))
	h.Write(body)
	return h.Sum(nil)
}
