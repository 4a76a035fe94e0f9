// Package postgrest implements the ingredient catalog and the inventory ledger
// against a PostgREST-compatible HTTP API (for example a Supabase project).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/mealink-backend/internal/config"
	"github.com/heartmarshall/mealink-backend/internal/domain"
)

const restPrefix = "/rest/v1/"

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 1 << 12

// Client talks to the remote store. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client from configuration.
func New(cfg config.PostgRESTConfig, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg.URL, cfg.APIKey, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, apiKey string, hc *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: hc,
		log:        logger.With("adapter", "postgrest"),
	}
}

// apiError is a non-2xx response.
type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d: %s %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// mapError converts HTTP and PostgREST failures to domain errors, in the
// same way the SQL adapter maps database error codes.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	prefix := entity
	if key != "" {
		prefix = entity + " " + key
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", prefix, err)
	}

	switch apiErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%s: %w", prefix, domain.ErrAlreadyExists)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	case "23514", "22P02": // check_violation, invalid_text_representation
		return fmt.Errorf("%s: %w", prefix, domain.ErrValidation)
	}
	if apiErr.Status == http.StatusConflict {
		return fmt.Errorf("%s: %w", prefix, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// do sends one request. A non-nil out receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, prefer string, body, out any) error {
	reqURL := c.baseURL + restPrefix + table
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "postgrest request",
		slog.String("method", method),
		slog.String("table", table),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// quote makes v safe inside a PostgREST logical filter, where commas,
// parentheses and dots are syntax.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Ping checks that the API answers and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")

	var rows []struct{}
	if err := c.do(ctx, http.MethodGet, ingredientsTable, q, "", nil, &rows); err != nil {
		return fmt.Errorf("ping postgrest: %w", err)
	}
	return nil
}
