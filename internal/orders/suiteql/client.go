// Package suiteql читает заказы из REST эндпоинта SuiteQL с подписью OAuth 1.0a (TBA).
package suiteql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const upstreamName = "suiteql"

// Config параметры подключения к SuiteQL
type Config struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenKey       string
	TokenSecret    string
	Realm          string
	// BaseURL переопределяет адрес эндпоинта (тесты, прокси)
	BaseURL string
	Timeout time.Duration
}

// Observer получает длительность и результат каждого вызова
type Observer interface {
	ObserveUpstream(upstream string, started time.Time, err error)
}

// Row одна строка ответа SuiteQL
type Row map[string]interface{}

// Client выполняет SuiteQL запросы. Одна попытка на вызов, без повторов.
type Client struct {
	httpClient *http.Client
	endpoint   string
	observer   Observer
}

// StatusError ответ SuiteQL с кодом не 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("suiteql returned status %d: %s", e.StatusCode, e.Body)
}

// NewClient создает клиент с подписью HMAC-SHA256
func NewClient(cfg Config, observer Observer) (*Client, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" || cfg.TokenKey == "" || cfg.TokenSecret == "" {
		return nil, errors.New("suiteql oauth credentials are not fully set")
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		if cfg.AccountID == "" {
			return nil, errors.New("suiteql account id is required")
		}
		endpoint = EndpointForAccount(cfg.AccountID)
	}

	oauthConfig := &oauth1.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Realm:          cfg.Realm,
		Signer:         &oauth1.HMAC256Signer{ConsumerSecret: cfg.ConsumerSecret},
	}

	httpClient := oauthConfig.Client(context.Background(), oauth1.NewToken(cfg.TokenKey, cfg.TokenSecret))
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &Client{httpClient: httpClient, endpoint: endpoint, observer: observer}, nil
}

// EndpointForAccount строит адрес эндпоинта. В имени хоста идентификатор
// аккаунта пишется строчными буквами, "_" заменяется на "-" (песочницы "123_SB1").
func EndpointForAccount(accountID string) string {
	host := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(accountID)), "_", "-")
	return fmt.Sprintf("https://%s.suitetalk.api.netsuite.com/services/rest/query/v1/suiteql", host)
}

// Query выполняет запрос. limit и offset передаются параметрами URL, если больше нуля
// (offset может быть нулем только вместе с limit).
func (c *Client) Query(ctx context.Context, query string, limit, offset int) (rows []Row, err error) {
	started := time.Now()
	if c.observer != nil {
		defer func() { c.observer.ObserveUpstream(upstreamName, started, err) }()
	}

	endpoint := c.endpoint
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(max(offset, 0)))
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("encode suiteql payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create suiteql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "transient")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suiteql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result struct {
		Items []Row `json:"items"`
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode suiteql response: %w", err)
	}

	return result.Items, nil
}
