package twitterbot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	ConsumerKey:    "ck",
	ConsumerSecret: "cs",
	AccessToken:    "at",
	AccessSecret:   "as",
}

func newTestClient(t *testing.T, h http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.Host = srv.URL
	c, err := NewClient(testCreds, cfg)
	require.NoError(t, err)
	return c
}

func TestClient_VerifyCredentialsSigned(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1/account/verify_credentials.json", r.URL.Path)
		assert.Equal(t, "extended", r.URL.Query().Get("tweet_mode"))
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), "authorization header: %q", auth)
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, `oauth_token="at"`)
		assert.Contains(t, auth, "oauth_signature=")
		fmt.Fprint(w, `{"id_str":"1","screen_name":"me","name":"Me"}`)
	}, ClientConfig{})

	me, err := c.VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", me.ID)
	assert.Equal(t, "me", me.Handle)
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"code":32,"message":"Could not authenticate you."}]}`)
	}, ClientConfig{RetryCount: 2})

	_, err := c.VerifyCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 32, apiErr.Code)
	assert.Equal(t, 401, apiErr.Status)
}

func TestClient_QueryParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/1.1/users/show.json":
			assert.Equal(t, "alice", q.Get("screen_name"))
			fmt.Fprint(w, `{"id_str":"42","screen_name":"alice"}`)
		case "/1.1/statuses/user_timeline.json":
			assert.Equal(t, "42", q.Get("user_id"))
			assert.Equal(t, "5", q.Get("count"))
			fmt.Fprint(w, `[{"id_str":"2","full_text":"new","user":{"id_str":"42","screen_name":"alice"}},{"id_str":"1","text":"old","user":{"id_str":"42"}}]`)
		case "/1.1/search/tweets.json":
			assert.Equal(t, "to:alice", q.Get("q"))
			assert.Equal(t, "recent", q.Get("result_type"))
			assert.Empty(t, q.Get("count"))
			fmt.Fprint(w, `{"statuses":[{"id_str":"9","in_reply_to_status_id_str":"2","user":{"id_str":"7","screen_name":"bob"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}, ClientConfig{})
	ctx := context.Background()

	u, err := c.GetUserByScreenName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)

	tl, err := c.GetUserTimeline(ctx, "42", 5)
	require.NoError(t, err)
	require.Len(t, tl, 2)
	assert.Equal(t, "new", tl[0].Text)
	assert.Equal(t, "old", tl[1].Text)

	res, err := c.SearchTweets(ctx, "to:alice", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "2", res[0].InReplyToStatusID)
	assert.Equal(t, "bob", res[0].AuthorHandle)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"id_str":"1","screen_name":"me"}`)
	}, ClientConfig{RetryCount: 2, RetryDelay: time.Millisecond})

	me, err := c.VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", me.ID)
	assert.EqualValues(t, 3, hits.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, ClientConfig{RetryCount: 1, RetryDelay: time.Millisecond})

	_, err := c.VerifyCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.True(t, IsRetryable(err))
	assert.EqualValues(t, 2, hits.Load())
}

func TestClient_NoRetryOutsideRetryErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, ClientConfig{RetryCount: 3, RetryErrors: []int{503}})

	_, err := c.VerifyCredentials(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_RateLimited(t *testing.T) {
	var hits atomic.Int32
	reset := time.Now().Add(time.Hour).Unix()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("x-rate-limit-reset", fmt.Sprint(reset))
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)
	}, ClientConfig{})
	ctx := context.Background()

	_, err := c.SearchTweets(ctx, "to:alice", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	// The endpoint stays blocked until reset without another request.
	_, err = c.SearchTweets(ctx, "to:bob", 0)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_RateLimitedEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusTooManyRequests)
	}, ClientConfig{})

	_, err := c.SearchTweets(context.Background(), "to:alice", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "Too Many Requests")
}

func TestClient_WaitOnRateLimit(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("x-rate-limit-reset", fmt.Sprint(time.Now().Add(-time.Second).Unix()))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"statuses":[]}`)
	}, ClientConfig{WaitOnRateLimit: true})

	res, err := c.SearchTweets(context.Background(), "to:alice", 0)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.EqualValues(t, 2, hits.Load())
}

func TestClient_Cache(t *testing.T) {
	var hits atomic.Int32
	cache := NewMemoryCache(8, time.Minute)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"id_str":"42","screen_name":"alice"}`)
	}, ClientConfig{Cache: cache})
	ctx := context.Background()

	for range 3 {
		u, err := c.GetUserByScreenName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "42", u.ID)
	}
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestClient_CustomUnmarshal(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `ignored`)
	}, ClientConfig{Unmarshal: func(data []byte, v any) error {
		called = true
		u := v.(*userObject)
		u.IDStr, u.ScreenName = "5", "custom"
		return nil
	}})

	u, err := c.VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "custom", u.Handle)
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, ClientConfig{RetryCount: 5, RetryDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.VerifyCredentials(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Credentials{}, ClientConfig{})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient(testCreds, ClientConfig{Proxy: "://bad"})
	assert.Error(t, err)

	c, err := NewClient(testCreds, ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, "https://api.twitter.com", c.base)
	assert.Equal(t, 60*time.Second, c.http.Timeout)
	assert.Equal(t, "upload.twitter.com", c.cfg.UploadHost)
}

func TestNewBot_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"code":89,"message":"Invalid or expired token."}]}`)
	}))
	defer srv.Close()

	var out strings.Builder
	bot, err := NewBot(context.Background(), testCreds, ClientConfig{Host: srv.URL}, BotConfig{Out: &out})
	require.NoError(t, err)
	assert.False(t, bot.Verified())
	assert.ErrorIs(t, bot.VerifyErr(), ErrUnauthorized)
	assert.Contains(t, out.String(), "Invalid or expired token.")
}
