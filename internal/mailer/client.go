// Package mailer talks to the external mail-scheduling API used for booking
// reminders.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client schedules, reschedules and cancels future email sends over the mail
// provider's JSON API.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func New(baseURL, apiKey, from string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		http:    &http.Client{Timeout: timeout},
	}
}

type scheduleReq struct {
	From           string `json:"from"`
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	SendAt         string `json:"send_at"`
	IdempotencyKey string `json:"idempotency_key"`
}

type scheduleResp struct {
	ID string `json:"id"`
}

type rescheduleReq struct {
	SendAt string `json:"send_at"`
}

// ScheduleSend queues an email for delivery at the given time and returns the
// provider's id for the queued send. The idempotency key makes retries safe.
func (c *Client) ScheduleSend(ctx context.Context, recipient, subject, body string, at time.Time, idemKey string) (string, error) {
	payload := scheduleReq{
		From:           c.from,
		Recipient:      recipient,
		Subject:        subject,
		Body:           body,
		SendAt:         at.UTC().Format(time.RFC3339),
		IdempotencyKey: idemKey,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/sends", payload)
	if err != nil {
		return "", err
	}
	req.Header.Set("Idempotency-Key", idemKey)

	var out scheduleResp
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("mail api returned no send id")
	}
	return out.ID, nil
}

// CancelSend revokes a queued send. Cancelling a send the provider no longer
// knows is an error; callers decide whether that matters.
func (c *Client) CancelSend(ctx context.Context, externalID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/v1/sends/"+externalID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// RescheduleSend moves a queued send to a new delivery time.
func (c *Client) RescheduleSend(ctx context.Context, externalID string, at time.Time) error {
	req, err := c.newRequest(ctx, http.MethodPatch, "/v1/sends/"+externalID, rescheduleReq{
		SendAt: at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail api: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
