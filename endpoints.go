package twitterbot

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints maps operation names to their REST v1.1 paths.
var Endpoints = map[string]string{
	"VerifyCredentials": "/1.1/account/verify_credentials.json",
	"UserShow":          "/1.1/users/show.json",
	"UserTimeline":      "/1.1/statuses/user_timeline.json",
	"SearchTweets":      "/1.1/search/tweets.json",
}

// baseURL turns a configured host into a scheme-qualified base URL.
// Bare hosts get https.
func baseURL(host string) (string, error) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid host %q: missing hostname", host)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// endpointURL returns the full URL for a named operation with query params.
// Every request asks for extended (untruncated) tweet text.
func (c *Client) endpointURL(operation string, params url.Values) (string, error) {
	path, ok := Endpoints[operation]
	if !ok {
		return "", fmt.Errorf("unknown operation: %s", operation)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("tweet_mode", "extended")
	return c.base + path + "?" + params.Encode(), nil
}
