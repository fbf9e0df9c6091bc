// Package mpesa implements the payment.Payment contract against the
// Safaricom Daraja API (STK push for deposits, B2C for payouts).
package mpesa

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"context"

	"github.com/shillingix/backend/pkg/config"
	"github.com/shillingix/backend/pkg/provider/payment"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	timestampLayout = "20060102150405"
)

// Provider is a Daraja API client.
type Provider struct {
	cfg        config.Mpesa
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a Daraja client. Environment "production" selects the live
// API host; anything else uses the sandbox.
func New(cfg config.Mpesa, logger *slog.Logger) *Provider {
	baseURL := sandboxBaseURL
	if cfg.Environment == "production" {
		baseURL = productionBaseURL
	}
	return &Provider{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("provider", "mpesa"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// getAccessToken fetches (and caches) an OAuth token. Daraja tokens live for
// an hour; refresh a minute early.
func (p *Provider) getAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	url := p.baseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	credentials := base64.StdEncoding.EncodeToString(
		[]byte(p.cfg.ConsumerKey + ":" + p.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed: status %d: %s", resp.StatusCode, body)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	p.accessToken = tr.AccessToken
	p.tokenExpiry = time.Now().Add(59 * time.Minute)
	return p.accessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int    `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// InitiateSTKPush implements payment.Payment.
func (p *Provider) InitiateSTKPush(ctx context.Context, params *payment.STKPushParams) (*payment.STKPushResponse, error) {
	token, err := p.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(timestampLayout)
	request := stkPushRequest{
		BusinessShortCode: p.cfg.ShortCode,
		Password:          stkPassword(p.cfg.ShortCode, p.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int(params.Amount),
		PartyA:            params.PhoneNumber,
		PartyB:            p.cfg.ShortCode,
		PhoneNumber:       params.PhoneNumber,
		CallBackURL:       p.cfg.CallbackURL,
		AccountReference:  params.AccountReference,
		TransactionDesc:   params.Description,
	}

	var response payment.STKPushResponse
	url := p.baseURL + "/mpesa/stkpush/v1/processrequest"
	if err := p.post(ctx, url, token, request, &response); err != nil {
		return nil, err
	}
	p.logger.Info("STK push initiated",
		"phone", params.PhoneNumber,
		"amount", params.Amount,
		"checkout_request_id", response.CheckoutRequestID,
		"response_code", response.ResponseCode,
	)
	return &response, nil
}

// stkPassword builds the Daraja request password:
// base64(shortcode + passkey + timestamp).
func stkPassword(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

// stkCallbackEnvelope mirrors Daraja's nested callback payload.
type stkCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback implements payment.Payment. ResultCode 0 is success; the
// metadata items carry amount, receipt number, and phone.
func (p *Provider) ParseCallback(payload []byte) (*payment.CallbackResult, error) {
	var envelope stkCallbackEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse STK callback: %w", err)
	}
	cb := envelope.Body.StkCallback
	result := &payment.CallbackResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		MerchantRequestID: cb.MerchantRequestID,
		Success:           cb.ResultCode == 0,
		ResultCode:        cb.ResultCode,
		ResultDescription: cb.ResultDesc,
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if v, ok := item.Value.(float64); ok {
				result.Amount = v
			}
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok {
				result.Receipt = v
			}
		case "PhoneNumber":
			switch v := item.Value.(type) {
			case float64:
				result.PhoneNumber = fmt.Sprintf("%.0f", v)
			case string:
				result.PhoneNumber = v
			}
		}
	}
	return result, nil
}

type b2cRequest struct {
	InitiatorName      string `json:"InitiatorName"`
	SecurityCredential string `json:"SecurityCredential"`
	CommandID          string `json:"CommandID"`
	Amount             int    `json:"Amount"`
	PartyA             string `json:"PartyA"`
	PartyB             string `json:"PartyB"`
	Remarks            string `json:"Remarks"`
	QueueTimeOutURL    string `json:"QueueTimeOutURL"`
	ResultURL          string `json:"ResultURL"`
}

type b2cResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// InitiatePayout implements payment.Payment via the Daraja B2C API.
func (p *Provider) InitiatePayout(ctx context.Context, params *payment.PayoutParams) (*payment.PayoutResponse, error) {
	token, err := p.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	request := b2cRequest{
		InitiatorName:      p.cfg.InitiatorName,
		SecurityCredential: p.cfg.SecurityCredential,
		CommandID:          "BusinessPayment",
		Amount:             int(params.Amount),
		PartyA:             p.cfg.ShortCode,
		PartyB:             params.PhoneNumber,
		Remarks:            params.Description,
		QueueTimeOutURL:    p.cfg.CallbackURL,
		ResultURL:          p.cfg.CallbackURL,
	}
	var response b2cResponse
	url := p.baseURL + "/mpesa/b2c/v1/paymentrequest"
	if err := p.post(ctx, url, token, request, &response); err != nil {
		return nil, err
	}
	p.logger.Info("B2C payout initiated",
		"phone", params.PhoneNumber,
		"amount", params.Amount,
		"conversation_id", response.ConversationID,
	)
	return &payment.PayoutResponse{
		ConversationID:         response.ConversationID,
		OriginatorConversation: response.OriginatorConversationID,
		ResponseCode:           response.ResponseCode,
		ResponseDescription:    response.ResponseDescription,
	}, nil
}

func (p *Provider) post(ctx context.Context, url, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mpesa request failed: status %d: %s", resp.StatusCode, raw)
	}
	return json.Unmarshal(raw, out)
}

var _ payment.Payment = (*Provider)(nil)
