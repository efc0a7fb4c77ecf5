package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	domainAdmin "vigil/internal/domain/admin"
	"vigil/internal/domain/identity"
	"vigil/internal/domain/vigil"
)

// Client performs signed admin calls against a vigil server.
type Client struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	cred      *identity.Credential
	userAgent string
	now       func() time.Time
}

type DeleteResult struct {
	Success         bool     `json:"success"`
	UUID            string   `json:"uuid"`
	SyncedTo        []string `json:"syncedTo"`
	RemainingVigils int      `json:"remainingVigils"`
}

type ListResult struct {
	Vigils      map[string]vigil.Vigil `json:"vigils"`
	LastUpdated int64                  `json:"lastUpdated"`
	TotalVigils int                    `json:"totalVigils"`
	Identity    *string                `json:"identity"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func NewClient(baseURL string, cred *identity.Credential, log *slog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		log:       log,
		baseURL:   strings.TrimRight(baseURL, "/"),
		cred:      cred,
		userAgent: "vigil-admin/1.0",
		now:       time.Now,
	}
}

func (c *Client) signedQuery() (url.Values, error) {
	ts, sig, err := domainAdmin.SignedParams(c.cred, c.now())
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}
	q := url.Values{}
	q.Set("timestamp", ts)
	q.Set("signature", sig)
	return q, nil
}

// PageURL returns a signed moderation page URL, valid for the server's window.
func (c *Client) PageURL() (string, error) {
	q, err := c.signedQuery()
	if err != nil {
		return "", err
	}
	return c.baseURL + "/admin?" + q.Encode(), nil
}

func (c *Client) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	q, err := c.signedQuery()
	if err != nil {
		return nil, err
	}

	var out DeleteResult
	u := c.baseURL + "/admin/delete/" + url.PathEscape(id) + "?" + q.Encode()
	if err := c.do(ctx, http.MethodDelete, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context) (*ListResult, error) {
	var out ListResult
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/vigils", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("admin request", "method", method, "url", u)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = apiErr.Title
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
