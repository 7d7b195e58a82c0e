// Package identity is the HTTP client for the remote identity provider:
// username availability lookups and the final account registration call.
// The provider's error vocabulary is only partially structured, so failed
// registrations surface as BackendError and are classified by the caller.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/biszaal/expenzez-sub001/internal/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Client struct {
	config     config.IdentityConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.IdentityConfig, logger *zap.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// BackendError carries the provider's rejection as-is: an exception-style
// code when present, the raw message, and the HTTP status.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity backend rejected request: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("identity backend rejected request (status %d): %s", e.StatusCode, e.Message)
}

type availabilityResponse struct {
	Exists bool `json:"exists"`
}

// CheckUsername reports whether the candidate is already registered.
func (c *Client) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	query := url.Values{}
	query.Set("username", candidate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/v1/users/availability?"+query.Encode(), nil)
	if err != nil {
		return false, errors.Wrap(err, "create availability request")
	}

	c.logger.Debug("checking username availability", zap.String("candidate", candidate))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "availability request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, &BackendError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var out availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, errors.Wrap(err, "decode availability response")
	}

	return out.Exists, nil
}

// RegistrationPayload is the consolidated wire shape the provider accepts.
// Every value must already be in canonical form: phone in E.164, birthdate
// exactly YYYY-MM-DD.
type RegistrationPayload struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	PhoneNumber string `json:"phone_number"`
	Birthdate   string `json:"birthdate"`
	Gender      string `json:"gender"`
	Address     struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2,omitempty"`
		City       string `json:"city"`
		Region     string `json:"region,omitempty"`
		PostalCode string `json:"postal_code,omitempty"`
		Country    string `json:"country"`
	} `json:"address"`
	Origin string `json:"origin"`
}

type registerResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// Register submits the consolidated payload. The attempt ID lets the
// provider deduplicate retries after transient failures.
func (c *Client) Register(ctx context.Context, payload RegistrationPayload, attemptID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal registration payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/users/register", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create registration request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Attempt-Id", attemptID)

	c.logger.Debug("registering account",
		zap.String("username", payload.Username),
		zap.String("attempt_id", attemptID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "registration request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read registration response")
	}

	var out registerResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return errors.Wrap(err, "decode registration response")
		}
		return &BackendError{StatusCode: resp.StatusCode, Message: string(raw)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Success {
		return nil
	}

	return &BackendError{StatusCode: resp.StatusCode, Code: out.ErrorCode, Message: out.Message}
}
