package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/abdulachik/twapi/internal/activity"
	"github.com/abdulachik/twapi/internal/db"
)

// handleCRC answers the challenge Twitter sends when a webhook is
// registered and periodically afterwards.
func (s *Server) handleCRC(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("crc_token")
	if token == "" {
		http.Error(w, "missing crc_token", http.StatusBadRequest)
		return
	}

	body, err := activity.CRCResponse(s.consumerSecret, token)
	if err != nil {
		s.health.SetUnhealthy(ComponentWebhook, err)
		http.Error(w, "crc response", http.StatusInternalServerError)
		return
	}

	s.health.SetHealthy(ComponentWebhook, "answered crc")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// handleEvent records every delivery, valid or not, and rejects those whose
// signature does not match.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusRequestEntityTooLarge)
		return
	}

	signature := r.Header.Get(activity.SignatureHeader)
	valid := signature != "" && activity.ValidSignature(signature, s.consumerSecret, body)

	id, err := s.events.CreateWebhookEvent(r.Context(), db.CreateWebhookEventParams{
		Body:           string(body),
		Signature:      signature,
		SignatureValid: valid,
		RemoteIP:       r.RemoteAddr,
	})
	if err != nil {
		slog.Error("record webhook event", "error", err)
		s.health.SetUnhealthy(ComponentDatabase, err)
		http.Error(w, "record event", http.StatusInternalServerError)
		return
	}
	s.health.SetHealthy(ComponentDatabase, "event recorded")

	if !valid {
		slog.Warn("webhook signature mismatch", "event_id", id, "remote_ip", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	slog.Info("webhook event received", "event_id", id, "bytes", len(body))
	w.WriteHeader(http.StatusOK)
}
