// Package client is the HTTPS client for the SecureTalk relay used by the
// command-line tool.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/SecureTalk/internal/models"
)

// StatusError is returned when the relay answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Client talks to the relay over HTTPS.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// NewHTTPClient builds an HTTP client that additionally trusts the PEM
// certificates in caFile. An empty caFile keeps the system roots only.
func NewHTTPClient(caFile string) (*http.Client, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsCfg.RootCAs = pool
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsCfg},
		Timeout:   10 * time.Second,
	}, nil
}

// post sends payload as JSON and returns the body of a 200 response.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.post(ctx, "/register", map[string]string{"username": username, "password": password})
	return err
}

// Login checks the credentials. No session is returned.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.post(ctx, "/login", map[string]string{"username": username, "password": password})
	return err
}

// StoreKey publishes username's key material.
func (c *Client) StoreKey(ctx context.Context, username string, km models.KeyMaterial) error {
	_, err := c.post(ctx, "/storekey", map[string]string{"username": username, "key": km.Key, "iv": km.IV})
	return err
}

// GetKey fetches the key material published by username.
func (c *Client) GetKey(ctx context.Context, username string) (*models.KeyMaterial, error) {
	data, err := c.post(ctx, "/getkey", map[string]string{"username": username})
	if err != nil {
		return nil, err
	}
	var km models.KeyMaterial
	if err := json.Unmarshal(data, &km); err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	return &km, nil
}

// Send relays an already encrypted payload.
func (c *Client) Send(ctx context.Context, from, to, encrypted string) error {
	_, err := c.post(ctx, "/send", map[string]string{"from": from, "to": to, "encrypted": encrypted})
	return err
}

// Receive lists the messages addressed to username, oldest first.
func (c *Client) Receive(ctx context.Context, username string) ([]models.Message, error) {
	data, err := c.post(ctx, "/receive", map[string]string{"username": username})
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}
