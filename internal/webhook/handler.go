// Package webhook implements the HTTP surface the platform calls: the GET
// verification handshake and the POST event receiver. Events are acknowledged
// immediately and processed asynchronously; per-sender processing is
// serialized so session read-modify-write cycles never interleave.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paragraphhotels/messenger-bot-go/internal/bot"
	apperrors "github.com/paragraphhotels/messenger-bot-go/internal/errors"
	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
	"github.com/paragraphhotels/messenger-bot-go/internal/metrics"
	"github.com/paragraphhotels/messenger-bot-go/internal/ratelimit"
	"github.com/paragraphhotels/messenger-bot-go/internal/sentry"
	"github.com/paragraphhotels/messenger-bot-go/internal/session"
)

// processTimeout bounds the async handling of a single event, including
// profile lookup and reply delivery.
const processTimeout = 30 * time.Second

// Sender delivers reply instructions to a recipient. Implemented by
// messenger.Client; narrowed to an interface for tests.
type Sender interface {
	SendAll(ctx context.Context, recipientID string, instructions []messenger.Instruction) error
	FetchFirstName(ctx context.Context, senderID string) (string, error)
}

// Config wires a Handler.
type Config struct {
	VerifyToken    string
	AppSecret      string // empty disables signature verification
	ProfileTimeout time.Duration
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	Store          session.Store
	Dispatcher     *bot.Dispatcher
	Sender         Sender
	UserLimiter    *ratelimit.PerKeyLimiter

	// Locks serializes per-sender session writes. Sharing it with the
	// expiry janitor keeps the sweep out of in-flight read-modify-write
	// cycles; nil gets a private instance.
	Locks *session.KeyedMutex
}

// Handler serves the webhook endpoints.
type Handler struct {
	cfg    Config
	logger *logger.Logger
	locks  *session.KeyedMutex
	wg     sync.WaitGroup
}

// NewHandler creates a webhook handler.
func NewHandler(cfg Config) *Handler {
	locks := cfg.Locks
	if locks == nil {
		locks = session.NewKeyedMutex()
	}
	return &Handler{
		cfg:    cfg,
		logger: cfg.Logger.WithModule("webhook"),
		locks:  locks,
	}
}

// Verify handles the GET subscription handshake: echo hub.challenge when
// hub.mode is "subscribe" and hub.verify_token matches, 403 otherwise.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.cfg.VerifyToken {
		h.logger.Info("Webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.WithError(apperrors.ErrVerifyTokenMismatch).WithField("mode", mode).Warn("Webhook verification rejected")
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.RecordHTTPError("verify_token_mismatch")
	}
	c.Status(http.StatusForbidden)
}

// Handle receives a POST event batch. It acknowledges with 200 before
// processing so the platform never retries on slow downstream calls.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	if h.cfg.AppSecret != "" {
		if !verifySignature(h.cfg.AppSecret, body, c.GetHeader("X-Hub-Signature-256")) {
			h.logger.WithError(apperrors.ErrInvalidSignature).Warn("Webhook signature mismatch")
			if h.cfg.Metrics != nil {
				h.cfg.Metrics.RecordHTTPError("invalid_signature")
			}
			c.Status(http.StatusForbidden)
			return
		}
	}

	var payload messenger.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.WithError(err).Warn("Failed to decode webhook payload")
		c.Status(http.StatusBadRequest)
		return
	}

	if payload.Object != "page" {
		c.Status(http.StatusNotFound)
		return
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")

	for _, entry := range payload.Entry {
		for _, raw := range entry.Messaging {
			ev := raw.Normalize()
			if ev.SenderID == "" {
				continue
			}

			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				defer h.recoverPanic(ev.SenderID)
				h.process(ev)
			}()
		}
	}
}

// process runs one event through the rate limiter, the per-sender lock, the
// dispatcher and delivery. The session is persisted only after every reply
// was delivered, so a failed send replays against the pre-event state.
func (h *Handler) process(ev messenger.Event) {
	start := time.Now()
	status := "ok"
	defer func() {
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.RecordWebhook(ev.Type(), status, time.Since(start).Seconds())
		}
	}()

	log := h.logger.WithRequestID(uuid.NewString()).WithField("sender_id", ev.SenderID)

	if h.cfg.UserLimiter != nil && !h.cfg.UserLimiter.Allow(ev.SenderID) {
		log.WithError(apperrors.ErrRateLimitExceeded).Warn("Sender rate limited, dropping event")
		status = "rate_limited"
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	h.locks.Lock(ev.SenderID)
	defer h.locks.Unlock(ev.SenderID)

	sess, err := h.cfg.Store.GetOrCreate(ctx, ev.SenderID)
	if err != nil {
		log.WithError(err).Error("Failed to load session")
		sentry.CaptureException(err)
		status = "store_error"
		return
	}

	result := h.cfg.Dispatcher.Dispatch(ev, sess, h.displayName(ctx, sess, ev, log))

	// No reply means no session mutation; just refresh the inactivity timer.
	if len(result.Messages) == 0 {
		if err := h.cfg.Store.Touch(ctx, ev.SenderID); err != nil {
			log.WithError(err).Error("Failed to touch session")
			status = "store_error"
		}
		return
	}

	if err := h.cfg.Sender.SendAll(ctx, ev.SenderID, result.Messages); err != nil {
		log.WithError(err).Error("Failed to deliver replies")
		sentry.CaptureExceptionWithContext(ctx, err)
		status = "send_error"
		return
	}

	if err := h.cfg.Store.Save(ctx, result.Next); err != nil {
		log.WithError(err).Error("Failed to save session after delivery")
		sentry.CaptureException(err)
		status = "store_error"
	}
}

// displayName fetches the sender's first name for greeting personalization.
// Only first contact needs it; failures degrade to the unnamed greeting.
func (h *Handler) displayName(ctx context.Context, sess session.Session, ev messenger.Event, log *logger.Logger) string {
	onboarding := sess.State == session.StateNew ||
		ev.Postback == messenger.ActionGetStarted ||
		ev.Postback == messenger.ActionStartAgain ||
		ev.Action == messenger.ActionStartAgain
	if !onboarding {
		return ""
	}

	lookupCtx := ctx
	if h.cfg.ProfileTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, h.cfg.ProfileTimeout)
		defer cancel()
	}

	name, err := h.cfg.Sender.FetchFirstName(lookupCtx, ev.SenderID)
	if err != nil {
		log.WithError(err).Debug("Profile lookup failed, greeting without name")
		return ""
	}
	return name
}

func (h *Handler) recoverPanic(senderID string) {
	if r := recover(); r != nil {
		h.logger.WithFields(map[string]any{
			"sender_id": senderID,
			"panic":     r,
		}).Error("Recovered from panic while processing event")
		if h.cfg.Metrics != nil {
			h.cfg.Metrics.RecordHTTPError("panic")
		}
	}
}

// Shutdown waits for in-flight event processing to finish or ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
