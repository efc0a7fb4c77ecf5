package bdo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"vigil/internal/domain/identity"
	"vigil/internal/domain/replication"
)

// Client stores the shared document on a BDO ("big dumb object") server.
// Every request is signed with the credential it was built with.
type Client struct {
	name    string
	baseURL string
	hash    string
	cred    *identity.Credential
	client  *http.Client
	now     func() time.Time

	mu sync.RWMutex
	id string
}

type createRequest struct {
	Timestamp string          `json:"timestamp"`
	PubKey    string          `json:"pubKey"`
	Hash      string          `json:"hash"`
	BDO       json.RawMessage `json:"bdo"`
	Signature string          `json:"signature"`
}

type createResponse struct {
	UUID string `json:"uuid"`
}

type putRequest struct {
	Timestamp string          `json:"timestamp"`
	Hash      string          `json:"hash"`
	BDO       json.RawMessage `json:"bdo"`
	Signature string          `json:"signature"`
}

type getResponse struct {
	BDO json.RawMessage `json:"bdo"`
}

var _ replication.Endpoint = (*Client)(nil)

// New returns a BDO endpoint. hash namespaces the document on the server.
func New(name, baseURL, hash string, cred *identity.Credential, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		hash:    hash,
		cred:    cred,
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		now: time.Now,
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Adopt(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

func (c *Client) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// CreateIdentity registers the credential's public key and an empty document.
func (c *Client) CreateIdentity(ctx context.Context) (string, error) {
	ts := c.timestamp()
	pubKey := c.cred.PublicKey()
	sig, err := c.cred.Sign(ts + pubKey + c.hash)
	if err != nil {
		return "", err
	}

	body := createRequest{
		Timestamp: ts,
		PubKey:    pubKey,
		Hash:      c.hash,
		BDO:       json.RawMessage(`{}`),
		Signature: sig,
	}

	var out createResponse
	if err := c.do(ctx, http.MethodPut, "/user/create", body, &out); err != nil {
		return "", err
	}
	if out.UUID == "" {
		return "", errors.New("bdo: create returned no uuid")
	}
	return out.UUID, nil
}

func (c *Client) Put(ctx context.Context, doc json.RawMessage) error {
	id := c.Identity()
	if id == "" {
		return replication.ErrNoIdentity
	}

	ts := c.timestamp()
	sig, err := c.cred.Sign(ts + id + c.hash)
	if err != nil {
		return err
	}

	body := putRequest{
		Timestamp: ts,
		Hash:      c.hash,
		BDO:       doc,
		Signature: sig,
	}
	return c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(id)+"/bdo", body, nil)
}

func (c *Client) Get(ctx context.Context) (json.RawMessage, error) {
	id := c.Identity()
	if id == "" {
		return nil, replication.ErrNoIdentity
	}

	ts := c.timestamp()
	sig, err := c.cred.Sign(ts + id + c.hash)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("timestamp", ts)
	q.Set("hash", c.hash)
	q.Set("signature", sig)

	var out getResponse
	if err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(id)+"/bdo?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.BDO) == 0 || string(out.BDO) == "null" || string(out.BDO) == "{}" {
		return nil, replication.ErrNotFound
	}
	return out.BDO, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("bdo: encode: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return replication.ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bdo: http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bdo: decode: %w", err)
	}
	return nil
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}
