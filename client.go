package twitterbot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/dghubble/oauth1"
	"github.com/klauspost/compress/gzhttp"
)

// API is the set of remote operations the Bot is built on.
type API interface {
	VerifyCredentials(ctx context.Context) (*User, error)
	GetUserByScreenName(ctx context.Context, handle string) (*User, error)
	GetUserTimeline(ctx context.Context, userID string, count int) ([]*Tweet, error)
	SearchTweets(ctx context.Context, query string, count int) ([]*Tweet, error)
}

var _ API = (*Client)(nil)

// Client is an OAuth1-signed Twitter REST v1.1 session.
type Client struct {
	http    *http.Client
	base    string
	cfg     ClientConfig
	limiter *ratelimit.Limiter
	headers map[string]string
}

// NewClient exchanges the credentials for a signed HTTP session.
// No remote call is made.
func NewClient(creds Credentials, cfg ClientConfig) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	cfg.defaults()

	base, err := baseURL(cfg.Host)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		slog.Info("using proxy", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
	}

	// The OAuth1 client takes its base transport from the context.
	baseClient := &http.Client{Transport: gzhttp.Transport(transport)}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, baseClient)

	oauthCfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := oauthCfg.Client(ctx, token)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		http:    httpClient,
		base:    base,
		cfg:     cfg,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig),
		headers: restHeaders(cfg.UserAgent),
	}, nil
}

// VerifyCredentials returns the account the credentials belong to.
func (c *Client) VerifyCredentials(ctx context.Context) (*User, error) {
	u, err := c.endpointURL("VerifyCredentials", url.Values{"skip_status": {"true"}})
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, "VerifyCredentials", u)
	if err != nil {
		return nil, fmt.Errorf("VerifyCredentials: %w", err)
	}
	return parseUser(c.cfg.Unmarshal, body)
}

// GetUserByScreenName fetches a user profile by Twitter handle.
func (c *Client) GetUserByScreenName(ctx context.Context, handle string) (*User, error) {
	u, err := c.endpointURL("UserShow", url.Values{"screen_name": {handle}})
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, "UserShow", u)
	if err != nil {
		return nil, fmt.Errorf("UserShow: %w", err)
	}
	return parseUser(c.cfg.Unmarshal, body)
}

// GetUserTimeline fetches a user's recent tweets, newest first.
// A zero count uses the API default page size.
func (c *Client) GetUserTimeline(ctx context.Context, userID string, count int) ([]*Tweet, error) {
	params := url.Values{"user_id": {userID}}
	if count > 0 {
		params.Set("count", fmt.Sprint(count))
	}
	u, err := c.endpointURL("UserTimeline", params)
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, "UserTimeline", u)
	if err != nil {
		return nil, fmt.Errorf("UserTimeline: %w", err)
	}
	return parseTimeline(c.cfg.Unmarshal, body)
}

// SearchTweets runs a search over recent tweets. Results are limited to the
// API's single-page window; no pagination is done.
func (c *Client) SearchTweets(ctx context.Context, query string, count int) ([]*Tweet, error) {
	params := url.Values{
		"q":           {query},
		"result_type": {"recent"},
	}
	if count > 0 {
		params.Set("count", fmt.Sprint(count))
	}
	u, err := c.endpointURL("SearchTweets", params)
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, "SearchTweets", u)
	if err != nil {
		return nil, fmt.Errorf("SearchTweets: %w", err)
	}
	return parseSearch(c.cfg.Unmarshal, body)
}
