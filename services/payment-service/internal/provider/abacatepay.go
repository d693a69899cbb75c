package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAbacatePayBaseURL = "https://api.abacatepay.com"

// AbacatePay collects PIX payments through the Abacate Pay REST API. There is
// no official Go SDK; this is a thin bearer-token JSON client.
type AbacatePay struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAbacatePay(baseURL, token string) *AbacatePay {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultAbacatePayBaseURL
	}
	return &AbacatePay{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (a *AbacatePay) Name() string {
	return "abacatepay"
}

type abacateQRCode struct {
	ID           string `json:"id"`
	BRCode       string `json:"brCode"`
	BRCodeBase64 string `json:"brCodeBase64"`
	Status       string `json:"status"`
}

type abacateResponse struct {
	Data  abacateQRCode `json:"data"`
	Error string        `json:"error"`
}

func (a *AbacatePay) CreateCharge(ctx context.Context, c Charge) (Session, error) {
	if a.token == "" {
		return Session{}, ErrNotConfigured
	}

	body := map[string]any{
		"amount":      c.AmountCents,
		"expiresIn":   1800,
		"description": c.Description,
		"metadata": map[string]string{
			"appointment_id": c.AppointmentID,
			"business_id":    c.BusinessID,
		},
	}
	var resp abacateResponse
	if err := a.do(ctx, http.MethodPost, "/v1/pixQrCode/create", body, &resp); err != nil {
		return Session{}, err
	}
	if resp.Error != "" {
		return Session{}, errors.New("abacatepay: " + resp.Error)
	}
	if resp.Data.ID == "" {
		return Session{}, errors.New("abacatepay: empty charge id in response")
	}
	return Session{
		ProviderChargeID: resp.Data.ID,
		PixCode:          resp.Data.BRCode,
		PixQRCodeBase64:  resp.Data.BRCodeBase64,
		Status:           mapAbacateStatus(resp.Data.Status),
	}, nil
}

func (a *AbacatePay) CheckCharge(ctx context.Context, providerChargeID string) (Status, error) {
	if a.token == "" {
		return "", ErrNotConfigured
	}

	var resp abacateResponse
	path := "/v1/pixQrCode/check?id=" + url.QueryEscape(providerChargeID)
	if err := a.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.New("abacatepay: " + resp.Error)
	}
	return mapAbacateStatus(resp.Data.Status), nil
}

func (a *AbacatePay) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("abacatepay: %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mapAbacateStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID":
		return StatusPaid
	case "EXPIRED":
		return StatusExpired
	case "CANCELLED", "REFUNDED":
		return StatusFailed
	default:
		return StatusPending
	}
}
