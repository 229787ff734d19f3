package vietqr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	imageBaseURL = "https://img.vietqr.io/image"
	banksURL     = "https://api.vietqr.io/v2/banks"

	maxImageBytes = 2 << 20
)

// AdapterError marks a failure in the upstream QR service. Callers map
// it to 502 and may retry.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("vietqr %s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

type Account struct {
	BankID      string
	AccountNo   string
	AccountName string
	Template    string
}

type Bank struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	BIN       string `json:"bin"`
	ShortName string `json:"shortName"`
	Logo      string `json:"logo"`
}

type banksResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data []Bank `json:"data"`
}

type Client struct {
	httpClient *http.Client
	imageBase  string
	banksURL   string
	account    Account
	log        *zap.Logger
}

func NewClient(account Account, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		imageBase:  imageBaseURL,
		banksURL:   banksURL,
		account:    account,
		log:        log.With(zap.String("adapter", "vietqr")),
	}
}

// NewClientWithBase is used by tests to point the client at a stub server.
func NewClientWithBase(account Account, imageBase, banksURL string, log *zap.Logger) *Client {
	c := NewClient(account, log)
	c.imageBase = imageBase
	c.banksURL = banksURL
	return c
}

// ImageURL builds the hosted QR image URL for a transfer of amount with
// the given description.
func (c *Client) ImageURL(amount float64, description string) string {
	template := c.account.Template
	if template == "" {
		template = "compact2"
	}

	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%.0f", amount))
	query.Set("addInfo", description)
	query.Set("accountName", c.account.AccountName)

	return fmt.Sprintf("%s/%s-%s-%s.png?%s",
		c.imageBase, c.account.BankID, c.account.AccountNo, template, query.Encode())
}

// FetchImage downloads the hosted QR PNG and returns it as a base64 data
// URL suitable for inline rendering.
func (c *Client) FetchImage(ctx context.Context, amount float64, description string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ImageURL(amount, description), nil)
	if err != nil {
		return "", &AdapterError{Op: "build request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AdapterError{Op: "fetch image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AdapterError{Op: "fetch image", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", &AdapterError{Op: "read image", Err: err}
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(body), nil
}

// GenerateLocal encodes the transfer data into a QR PNG locally. Used as
// a fallback when the hosted image service is unreachable.
func (c *Client) GenerateLocal(amount float64, description string) (string, error) {
	data := strings.Join([]string{
		"2", "99",
		c.account.BankID,
		c.account.AccountNo,
		c.account.AccountName,
		fmt.Sprintf("%.0f", amount),
		description,
		"VND",
	}, "|")

	png, err := qrcode.Encode(data, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// QRImage returns an inline QR data URL, preferring the hosted image and
// falling back to local generation.
func (c *Client) QRImage(ctx context.Context, amount float64, description string) (string, error) {
	image, err := c.FetchImage(ctx, amount, description)
	if err == nil {
		return image, nil
	}

	c.log.Warn("hosted qr image failed, generating locally", zap.Error(err))
	return c.GenerateLocal(amount, description)
}

// Banks lists supported banks from the upstream directory, falling back
// to a small built-in list when the call fails.
func (c *Client) Banks(ctx context.Context) ([]Bank, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.banksURL, nil)
	if err != nil {
		return defaultBanks(), nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("bank directory unreachable, using defaults", zap.Error(err))
		return defaultBanks(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("bank directory returned error, using defaults", zap.Int("status", resp.StatusCode))
		return defaultBanks(), nil
	}

	var parsed banksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Warn("bank directory response malformed, using defaults", zap.Error(err))
		return defaultBanks(), nil
	}

	if len(parsed.Data) == 0 {
		return defaultBanks(), nil
	}

	return parsed.Data, nil
}

func defaultBanks() []Bank {
	return []Bank{
		{ID: 17, Name: "Ngan hang TMCP Cong thuong Viet Nam", Code: "ICB", BIN: "970415", ShortName: "VietinBank"},
		{ID: 43, Name: "Ngan hang TMCP Ngoai Thuong Viet Nam", Code: "VCB", BIN: "970436", ShortName: "Vietcombank"},
		{ID: 4, Name: "Ngan hang TMCP A Chau", Code: "ACB", BIN: "970416", ShortName: "ACB"},
		{ID: 21, Name: "Ngan hang TMCP Ky thuong Viet Nam", Code: "TCB", BIN: "970407", ShortName: "Techcombank"},
		{ID: 26, Name: "Ngan hang TMCP Quan doi", Code: "MB", BIN: "970422", ShortName: "MBBank"},
	}
}
