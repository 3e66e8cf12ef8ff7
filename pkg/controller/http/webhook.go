package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	githubcontroller "github.com/m-mizutani/tagpack/pkg/controller/github"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
)

// maxPayloadSize bounds push payloads; GitHub caps them at 25MB
const maxPayloadSize = 25 << 20

// WebhookHandler handles push notifications
type WebhookHandler struct {
	secret    string
	processor *githubcontroller.EventProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, hookUC interfaces.HookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		processor: githubcontroller.NewEventProcessor(hookUC),
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, r, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		writeError(w, r, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	logger = logger.With("event_type", eventType, "delivery_id", deliveryID)
	ctx = ctxlog.With(ctx, logger)

	var payload any
	switch eventType {
	case githubcontroller.EventPush, githubcontroller.EventPing:
		payload, err = github.ParseWebHook(eventType, body)
		if err != nil {
			logger.Error("Failed to parse webhook payload", "error", err)
			writeError(w, r, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
			return
		}
	}

	dispatched, err := h.processor.ProcessEvent(ctx, deliveryID, eventType, payload)
	if err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	status := "ignored"
	if dispatched {
		status = "accepted"
	}
	writeJSON(w, r, map[string]string{
		"status": status,
	})
}

// verifySignature checks the sha256= HMAC of payload
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" || h.secret == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
