package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL  = "https://web.moneylover.me/api"
	defaultTokenURL = "https://oauth.moneylover.me/token"

	requestTimeout = 2 * time.Minute
)

// Client talks to the wallet service over HTTP. Create with NewClient, then
// either SetToken with a cached token or Login with credentials.
type Client struct {
	baseURL  string
	tokenURL string
	http     *http.Client
	token    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option { return func(c *Client) { c.tokenURL = u } }

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		tokenURL: defaultTokenURL,
		http:     &http.Client{Timeout: requestTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken installs a previously obtained access token.
func (c *Client) SetToken(token string) { c.token = strings.TrimSpace(token) }

// Token returns the current access token, empty if not authenticated.
func (c *Client) Token() string { return c.token }

// Login performs the two-step login dance: fetch a request token and login
// URL, then exchange credentials for an access token. The token is installed
// on the client and returned for caching.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login-url", nil)
	if err != nil {
		return "", err
	}
	var loginData struct {
		RequestToken string `json:"request_token"`
		LoginURL     string `json:"login_url"`
	}
	if err := c.do(req, &loginData); err != nil {
		return "", fmt.Errorf("ledger: login url: %w", err)
	}

	clientID, err := clientIDFromLoginURL(loginData.LoginURL)
	if err != nil {
		return "", err
	}

	form := url.Values{"email": {email}, "password": {password}}
	tokReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	tokReq.Header.Set("Authorization", "Bearer "+loginData.RequestToken)
	tokReq.Header.Set("client", clientID)
	tokReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(tokReq)
	if err != nil {
		return "", fmt.Errorf("ledger: token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ledger: token exchange: unexpected status %s", resp.Status)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("ledger: token exchange: decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("ledger: token exchange: empty access token")
	}
	c.token = tok.AccessToken
	return tok.AccessToken, nil
}

func clientIDFromLoginURL(loginURL string) (string, error) {
	u, err := url.Parse(loginURL)
	if err != nil {
		return "", fmt.Errorf("ledger: parse login url: %w", err)
	}
	id := u.Query().Get("client")
	if id == "" {
		return "", fmt.Errorf("ledger: login url %q has no client parameter", loginURL)
	}
	return id, nil
}

// Wallets lists the wallets available to the authenticated user.
func (c *Client) Wallets(ctx context.Context) ([]Wallet, error) {
	var payload []struct {
		ID      string                   `json:"_id"`
		Name    string                   `json:"name"`
		Balance []map[string]json.Number `json:"balance"`
	}
	if err := c.post(ctx, "/wallet/list", nil, nil, &payload); err != nil {
		return nil, err
	}
	wallets := make([]Wallet, 0, len(payload))
	for _, w := range payload {
		wallet := Wallet{ID: w.ID, Name: w.Name}
		if len(w.Balance) > 0 {
			for cur, amount := range w.Balance[0] {
				cents, err := amountToCents(amount)
				if err != nil {
					return nil, fmt.Errorf("ledger: wallet %s balance: %w", w.ID, err)
				}
				wallet.Currency = cur
				wallet.BalanceCents = cents
				break
			}
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

// Categories returns the full taxonomy for a wallet, both income and expense.
func (c *Client) Categories(ctx context.Context, walletID string) ([]Category, error) {
	var payload []struct {
		ID     string `json:"_id"`
		Name   string `json:"name"`
		Type   int    `json:"type"`
		Parent string `json:"parent"`
	}
	form := url.Values{"walletId": {walletID}}
	if err := c.post(ctx, "/category/list", form, nil, &payload); err != nil {
		return nil, err
	}
	cats := make([]Category, 0, len(payload))
	for _, p := range payload {
		cats = append(cats, Category{
			ID:       p.ID,
			WalletID: walletID,
			Name:     p.Name,
			Type:     categoryTypeName(p.Type),
			ParentID: p.Parent,
		})
	}
	return cats, nil
}

func categoryTypeName(t int) string {
	switch t {
	case 1:
		return TypeIncome
	case 2:
		return TypeExpense
	default:
		return TypeDebtLoan
	}
}

// Entries lists wallet records between from and to, inclusive.
func (c *Client) Entries(ctx context.Context, walletID string, from, to time.Time) ([]Entry, error) {
	body := map[string]string{
		"walletId":  walletID,
		"startDate": from.Format(time.DateOnly),
		"endDate":   to.Format(time.DateOnly),
	}
	var payload struct {
		Transactions []struct {
			ID          string      `json:"_id"`
			Note        string      `json:"note"`
			Amount      json.Number `json:"amount"`
			DisplayDate string      `json:"displayDate"`
			Category    struct {
				Name string `json:"name"`
				Type int    `json:"type"`
			} `json:"category"`
		} `json:"transactions"`
	}
	if err := c.post(ctx, "/transaction/list", nil, body, &payload); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(payload.Transactions))
	for _, t := range payload.Transactions {
		date, err := parseDisplayDate(t.DisplayDate)
		if err != nil {
			return nil, fmt.Errorf("ledger: entry %s: %w", t.ID, err)
		}
		cents, err := amountToCents(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("ledger: entry %s: %w", t.ID, err)
		}
		typ := categoryTypeName(t.Category.Type)
		// the server reports magnitudes; the category type carries the sign
		if typ != TypeIncome && cents > 0 {
			cents = -cents
		}
		entries = append(entries, Entry{
			ID:           t.ID,
			Date:         date,
			AmountCents:  cents,
			Category:     t.Category.Name,
			CategoryType: typ,
			Note:         t.Note,
		})
	}
	return entries, nil
}

// CreateEntry appends one record to a wallet and returns its server id.
// The server performs no dedup; callers own idempotence.
func (c *Client) CreateEntry(ctx context.Context, req CreateRequest) (string, error) {
	body := map[string]any{
		"with":        []string{},
		"account":     req.WalletID,
		"category":    req.CategoryID,
		"amount":      json.Number(decimal.New(req.AmountCents, -2).String()),
		"note":        req.Note,
		"displayDate": req.Date.Format(time.DateOnly),
	}
	var created struct {
		ID string `json:"_id"`
	}
	if err := c.post(ctx, "/transaction/add", nil, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// post sends an authenticated request and unwraps the {error, msg, data}
// envelope. Exactly one of form and body may be set.
func (c *Client) post(ctx context.Context, path string, form url.Values, body any, out any) error {
	if c.token == "" {
		return ErrNoToken
	}

	var reader io.Reader
	contentType := ""
	switch {
	case form != nil:
		reader = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case body != nil:
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ledger: marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "AuthJWT "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger: %s: unexpected status %s", req.URL.Path, resp.Status)
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
		E     json.RawMessage `json:"e"`
		Msg   string          `json:"msg"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("ledger: %s: decode response: %w", req.URL.Path, err)
	}
	if code, ok := errorCode(envelope.Error); ok {
		return &APIError{Code: code, Msg: envelope.Msg}
	}
	if code, ok := errorCode(envelope.E); ok {
		return &APIError{Code: code, Msg: envelope.Msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("ledger: %s: decode data: %w", req.URL.Path, err)
	}
	return nil
}

// errorCode interprets the envelope error field, which may be a number or a
// string. Zero and empty mean success.
func errorCode(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "0" || trimmed == `""` {
		return "", false
	}
	return strings.Trim(trimmed, `"`), true
}

func parseDisplayDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func amountToCents(n json.Number) (int64, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", n.String(), err)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders signed cents as a plain decimal string, e.g. -12543
// becomes "-125.43". Used for logs and error reporting.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
