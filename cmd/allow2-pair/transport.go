package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/allow2/offlinecore/internal/logger"
	"github.com/allow2/offlinecore/pairing"
)

// httpTransport implements pairing.Transport against a real HTTP pairing
// endpoint. The wire format is plain JSON; ExpiresIn is carried as
// whole seconds since time.Duration has no canonical JSON encoding.
type httpTransport struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

func newHTTPTransport(baseURL string) *httpTransport {
	return &httpTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger.NewLogger(os.Stderr, logger.InfoLevel),
	}
}

type initRequestWire struct {
	DeviceToken string `json:"device_token"`
	DeviceName  string `json:"device_name"`
	Mode        string `json:"mode"`
}

type initResponseWire struct {
	SessionID        string `json:"session_id"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
	QRPayload        string `json:"qr_payload"`
	PinCode          string `json:"pin_code"`
}

type statusResponseWire struct {
	Completed bool            `json:"completed"`
	Success   bool            `json:"success"`
	Scanned   bool            `json:"scanned"`
	UserID    string          `json:"user_id"`
	PairID    string          `json:"pair_id"`
	PairToken string          `json:"pair_token"`
	Children  []pairing.Child `json:"children"`
	Error     string          `json:"error"`
}

func (t *httpTransport) Init(ctx context.Context, req pairing.InitRequest) (pairing.InitResponse, error) {
	wire := initRequestWire{DeviceToken: req.DeviceToken, DeviceName: req.DeviceName, Mode: string(req.Mode)}
	var resp initResponseWire
	if err := t.postJSON(ctx, "/pair/init", wire, &resp); err != nil {
		return pairing.InitResponse{}, err
	}
	return pairing.InitResponse{
		SessionID: resp.SessionID,
		ExpiresIn: time.Duration(resp.ExpiresInSeconds) * time.Second,
		QRPayload: resp.QRPayload,
		PinCode:   resp.PinCode,
	}, nil
}

func (t *httpTransport) Status(ctx context.Context, sessionID string) (pairing.StatusResponse, error) {
	var resp statusResponseWire
	url := fmt.Sprintf("%s/pair/status?session_id=%s", t.baseURL, sessionID)
	if err := t.getJSON(ctx, url, &resp); err != nil {
		return pairing.StatusResponse{}, err
	}
	return pairing.StatusResponse{
		Completed: resp.Completed,
		Success:   resp.Success,
		Scanned:   resp.Scanned,
		UserID:    resp.UserID,
		PairID:    resp.PairID,
		PairToken: resp.PairToken,
		Children:  resp.Children,
		Error:     resp.Error,
	}, nil
}

func (t *httpTransport) Cancel(ctx context.Context, sessionID string) error {
	body := map[string]string{"session_id": sessionID}
	return t.postJSON(ctx, "/pair/cancel", body, nil)
}

func (t *httpTransport) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *httpTransport) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

func (t *httpTransport) do(req *http.Request, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	ctx := logger.WithRequestID(req.Context(), requestID)
	log := t.log.WithContext(ctx)
	log.Debug("pairing endpoint request", logger.String("method", req.Method), logger.String("url", req.URL.String()))

	resp, err := t.client.Do(req)
	if err != nil {
		log.Warn("pairing endpoint request failed", logger.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn("pairing endpoint returned non-2xx", logger.String("status", resp.Status))
		return fmt.Errorf("pairing endpoint returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
