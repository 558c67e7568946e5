package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/paragraphhotels/messenger-bot-go/internal/errors"
	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
	"github.com/paragraphhotels/messenger-bot-go/internal/metrics"
	"github.com/paragraphhotels/messenger-bot-go/internal/ratelimit"
)

// Client sends messages and fetches profiles through the Graph API.
// Failed sends are not retried; the caller decides what a failure means
// for session state.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	version     string
	accessToken string
	logger      *logger.Logger
	metrics     *metrics.Metrics
	limiter     *ratelimit.Limiter
	profiles    *profileCache
}

// ClientConfig holds configuration for creating a new Client.
type ClientConfig struct {
	BaseURL     string // e.g. "https://graph.facebook.com"
	Version     string // e.g. "v18.0"
	AccessToken string
	SendTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Limiter     *ratelimit.Limiter // global outbound limiter, nil disables
}

// NewClient creates a Graph API client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.SendTimeout},
		baseURL:     cfg.BaseURL,
		version:     cfg.Version,
		accessToken: cfg.AccessToken,
		logger:      cfg.Logger.WithModule("messenger"),
		metrics:     cfg.Metrics,
		limiter:     cfg.Limiter,
		profiles:    &profileCache{names: make(map[string]string)},
	}
}

// graphError is the error envelope Graph API returns on failures.
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send delivers one instruction to the recipient. Returns a DeliveryError
// on network or platform failure; the instruction is not retried.
func (c *Client) Send(ctx context.Context, recipientID string, ins Instruction) error {
	start := time.Now()
	err := c.send(ctx, recipientID, ins)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	} else {
		c.logger.WithField("kind", ins.Kind()).Debug("Message delivered")
	}
	if c.metrics != nil {
		c.metrics.RecordSend(ins.Kind(), status, duration)
	}
	return err
}

func (c *Client) send(ctx context.Context, recipientID string, ins Instruction) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.NewDeliveryError(recipientID, 0, err)
		}
	}

	body, err := json.Marshal(ins.toWire(recipientID))
	if err != nil {
		return apperrors.NewDeliveryError(recipientID, 0, fmt.Errorf("encode request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/%s/me/messages?access_token=%s",
		c.baseURL, c.version, url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewDeliveryError(recipientID, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError(recipientID, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var ge graphError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if jsonErr := json.Unmarshal(raw, &ge); jsonErr == nil && ge.Error.Message != "" {
			return apperrors.NewDeliveryError(recipientID, resp.StatusCode,
				fmt.Errorf("graph api: %s (code %d)", ge.Error.Message, ge.Error.Code))
		}
		return apperrors.NewDeliveryError(recipientID, resp.StatusCode,
			fmt.Errorf("graph api: unexpected status"))
	}

	return nil
}

// SendAll delivers instructions in order, stopping at the first failure so
// a menu's text cannot arrive after its button prompt.
func (c *Client) SendAll(ctx context.Context, recipientID string, instructions []Instruction) error {
	for _, ins := range instructions {
		if err := c.Send(ctx, recipientID, ins); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks Graph API reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
