package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paragraphhotels/messenger-bot-go/internal/errors"
	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:     baseURL,
		Version:     "v18.0",
		AccessToken: "test-token",
		SendTimeout: 5 * time.Second,
		Logger:      logger.NewWithWriter("error", io.Discard),
	})
}

func TestSend(t *testing.T) {
	t.Parallel()

	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/me/messages", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"recipient_id":"user-1","message_id":"m1"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ins := Instruction{
		Text: "How can I help you?",
		QuickReplies: []QuickReply{
			{Label: "Room reservation", Action: ActionLodging},
		},
	}
	require.NoError(t, client.Send(context.Background(), "user-1", ins))

	assert.Equal(t, "user-1", got.Recipient.ID)
	assert.Equal(t, "How can I help you?", got.Message.Text)
	require.Len(t, got.Message.QuickReplies, 1)
	assert.Equal(t, "text", got.Message.QuickReplies[0].ContentType)
	assert.Equal(t, "Room reservation", got.Message.QuickReplies[0].Title)
	assert.Equal(t, ActionLodging, got.Message.QuickReplies[0].Payload)
}

func TestSendGraphError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	err := client.Send(context.Background(), "user-1", Instruction{Text: "hi"})
	require.Error(t, err)

	var de *apperrors.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "user-1", de.RecipientID)
	assert.Equal(t, http.StatusBadRequest, de.StatusCode)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestSendAllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	instructions := []Instruction{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}
	err := client.SendAll(context.Background(), "user-1", instructions)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "third message must not be attempted")
}

func TestSendContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Send(ctx, "user-1", Instruction{Text: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchFirstName(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v18.0/user-1", r.URL.Path)
		assert.Equal(t, "first_name", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"first_name":"Nino","id":"user-1"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	name, err := client.FetchFirstName(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Nino", name)

	// Second lookup is served from the cache.
	name, err = client.FetchFirstName(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Nino", name)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchFirstNameConcurrent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"first_name":"Giorgi"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := client.FetchFirstName(context.Background(), "user-2")
			assert.NoError(t, err)
			assert.Equal(t, "Giorgi", name)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent lookups should be deduplicated")
}

func TestFetchFirstNameError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	name, err := client.FetchFirstName(context.Background(), "user-1")
	require.Error(t, err)
	assert.Empty(t, name)
}
