package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biszaal/expenzez-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.IdentityConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestCheckUsername(t *testing.T) {
	t.Run("reports existing username", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/users/availability", r.URL.Path)
			assert.Equal(t, "taken.name", r.URL.Query().Get("username"))
			json.NewEncoder(w).Encode(map[string]bool{"exists": true}) //nolint:errcheck
		})

		exists, err := client.CheckUsername(context.Background(), "taken.name")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("reports free username", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]bool{"exists": false}) //nolint:errcheck
		})

		exists, err := client.CheckUsername(context.Background(), "free.name")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("non-200 surfaces as backend error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		})

		_, err := client.CheckUsername(context.Background(), "any")
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, http.StatusTooManyRequests, backendErr.StatusCode)
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := client.CheckUsername(ctx, "slow")
		require.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	payload := RegistrationPayload{
		Username:    "ada.lovelace",
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+447912345678",
		Birthdate:   "1990-04-07",
	}

	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/users/register", r.URL.Path)
			assert.NotEmpty(t, r.Header.Get("X-Attempt-Id"))

			var got RegistrationPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "ada.lovelace", got.Username)
			assert.Equal(t, "+447912345678", got.PhoneNumber)

			json.NewEncoder(w).Encode(map[string]any{"success": true}) //nolint:errcheck
		})

		require.NoError(t, client.Register(context.Background(), payload, "attempt-1"))
	})

	t.Run("structured rejection carries code and message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"success":   false,
				"errorCode": "UsernameExistsException",
				"message":   "User already exists",
			})
		})

		err := client.Register(context.Background(), payload, "attempt-2")
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "UsernameExistsException", backendErr.Code)
		assert.Equal(t, "User already exists", backendErr.Message)
	})

	t.Run("unstructured rejection keeps the raw body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		})

		err := client.Register(context.Background(), payload, "attempt-3")
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, http.StatusBadGateway, backendErr.StatusCode)
		assert.Empty(t, backendErr.Code)
	})
}
