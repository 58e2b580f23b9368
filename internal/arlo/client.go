// Package arlo talks to the Arlo (Netgear) hmsweb cloud API.
package arlo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"windguard/internal/config"
	"windguard/internal/models"
)

const (
	loginPath   = "/hmsweb/login"
	devicesPath = "/hmsweb/users/devices"
	notifyPath  = "/hmsweb/users/devices/notify/"
	logoutPath  = "/hmsweb/logout"

	// DeviceTypeBaseStation marks the hub whose mode governs every camera.
	DeviceTypeBaseStation = "basestation"

	fromSuffix = "_web"
)

// ErrUnsuccessful is returned when the vendor answers with success:false.
var ErrUnsuccessful = errors.New("arlo: request not successful")

// Client is a thin, stateless wrapper over the hmsweb endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Arlo) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Device is one entry of the device list.
type Device struct {
	DeviceType string `json:"deviceType"`
	DeviceID   string `json:"deviceId"`
	XCloudID   string `json:"xCloudId"`
	UserID     string `json:"userId"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

type notifyProperties struct {
	Active string `json:"active"`
}

type notifyRequest struct {
	To              string           `json:"to"`
	From            string           `json:"from"`
	Action          string           `json:"action"`
	Properties      notifyProperties `json:"properties"`
	Active          string           `json:"active"`
	PublishResponse bool             `json:"publishResponse"`
	Resource        string           `json:"resource"`
	ResponseURL     string           `json:"responseURL"`
	TransID         string           `json:"transId"`
}

// Login posts the account credentials and returns the session for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	env, resp, err := c.do(ctx, http.MethodPost, loginPath, nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		return models.Session{}, fmt.Errorf("login: missing token: %w", ErrUnsuccessful)
	}
	return models.Session{
		AuthToken:     data.Token,
		SessionCookie: joinCookies(resp.Cookies()),
	}, nil
}

// Devices lists every device on the account.
func (c *Client) Devices(ctx context.Context, s models.Session) ([]Device, error) {
	env, _, err := c.do(ctx, http.MethodGet, devicesPath, sessionHeaders(s, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	var devices []Device
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &devices); err != nil {
			return nil, fmt.Errorf("list devices: decode: %w", err)
		}
	}
	return devices, nil
}

// Notify asks the base station to switch to mode.
func (c *Client) Notify(ctx context.Context, s models.Session, dev models.DeviceInfo, mode string) error {
	body := notifyRequest{
		To:              dev.DeviceID,
		From:            dev.OwnerUserID + fromSuffix,
		Action:          "set",
		Properties:      notifyProperties{Active: mode},
		Active:          mode,
		PublishResponse: false,
		Resource:        "modes",
		ResponseURL:     "",
		TransID:         "",
	}
	if _, _, err := c.do(ctx, http.MethodPost, notifyPath+dev.DeviceID, sessionHeaders(s, dev.CloudID), body); err != nil {
		return fmt.Errorf("notify %s: %w", dev.DeviceID, err)
	}
	return nil
}

// Logout ends the session. cloudID may be empty when no device was found.
func (c *Client) Logout(ctx context.Context, s models.Session, cloudID string) error {
	req, err := c.newRequest(ctx, http.MethodPut, logoutPath, sessionHeaders(s, cloudID), nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("logout: status %d", resp.StatusCode)
	}
	return nil
}

func sessionHeaders(s models.Session, cloudID string) http.Header {
	h := http.Header{}
	h.Set("Authorization", s.AuthToken)
	if s.SessionCookie != "" {
		h.Set("Cookie", s.SessionCookie)
	}
	h.Set("User-Agent", "web")
	if cloudID != "" {
		h.Set("xCloudId", cloudID)
	}
	return h
}

func joinCookies(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

func (c *Client) newRequest(ctx context.Context, method, path string, headers http.Header, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, vv := range headers {
		req.Header[k] = vv
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends a JSON request and decodes the {success, data} envelope.
// A body with success:false yields ErrUnsuccessful regardless of status code.
func (c *Client) do(ctx context.Context, method, path string, headers http.Header, payload any) (envelope, *http.Response, error) {
	req, err := c.newRequest(ctx, method, path, headers, payload)
	if err != nil {
		return envelope{}, nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, resp, fmt.Errorf("read body: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return envelope{}, resp, fmt.Errorf("decode body (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return env, resp, ErrUnsuccessful
	}
	return env, resp, nil
}
