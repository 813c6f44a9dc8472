package twitterbot

import (
	"context"
	"fmt"
	"log/slog"
)

// Bot is a single-account convenience layer over an API session.
//
// Construction always completes. If the credential check fails the Bot is
// returned unverified; Verified reports the outcome and operations that need
// the account's identity return ErrNotVerified. A Bot is not safe for
// concurrent use.
type Bot struct {
	api API
	cfg BotConfig

	account   *User
	verifyErr error
}

// NewBot signs a REST session with creds and verifies it.
// An error is returned only for unusable input such as empty credentials or
// a malformed host; a rejected verification still yields a Bot.
func NewBot(ctx context.Context, creds Credentials, clientCfg ClientConfig, botCfg BotConfig) (*Bot, error) {
	client, err := NewClient(creds, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return NewBotWithAPI(ctx, client, botCfg), nil
}

// NewBotWithAPI wraps an existing API session and verifies it.
func NewBotWithAPI(ctx context.Context, api API, cfg BotConfig) *Bot {
	cfg.defaults()
	b := &Bot{api: api, cfg: cfg}
	b.account = b.VerifyCredentialsAndIdentity(ctx)
	return b
}

// Account returns the verified identity, or nil when verification failed.
func (b *Bot) Account() *User { return b.account }

// Verified reports whether construction-time verification succeeded.
func (b *Bot) Verified() bool { return b.account != nil }

// VerifyErr returns the error from the last verification attempt, if any.
func (b *Bot) VerifyErr() error { return b.verifyErr }

// VerifyCredentialsAndIdentity checks the session against the API.
// Failures are logged and printed, never returned; the result is nil then.
func (b *Bot) VerifyCredentialsAndIdentity(ctx context.Context) *User {
	me, err := b.api.VerifyCredentials(ctx)
	if err != nil {
		b.verifyErr = err
		slog.Error("Failed to Verify Credentials", slog.Any("error", err))
		fmt.Fprintf(b.cfg.Out, "Failed to Verify Credentials:\n%v\n", err)
		return nil
	}
	b.verifyErr = nil
	slog.Info("Credentials Verified", slog.String("user", me.Handle), slog.String("id", me.ID))
	fmt.Fprintln(b.cfg.Out, "Credentials Verified")
	return me
}

// GetLatestTweet returns the most recent tweet of the account named by
// handle or, when handle is empty, by userID. Handle wins when both are set.
// It returns ErrInvalidArguments when both are empty and ErrEmptyTimeline
// when the account has no tweets.
func (b *Bot) GetLatestTweet(ctx context.Context, handle, userID string) (*Tweet, error) {
	switch {
	case handle != "":
		user, err := b.api.GetUserByScreenName(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("resolve @%s: %w", handle, err)
		}
		userID = user.ID
	case userID == "":
		return nil, fmt.Errorf("%w: handle or user id is required", ErrInvalidArguments)
	}

	tweets, err := b.api.GetUserTimeline(ctx, userID, b.cfg.TimelineCount)
	if err != nil {
		return nil, fmt.Errorf("timeline %s: %w", userID, err)
	}
	if len(tweets) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrEmptyTimeline)
	}
	return tweets[0], nil
}

// GetReplies returns the tweets replying to t, in search order.
//
// It searches recent tweets addressed to t's author and keeps those whose
// reply target is t. Only the search endpoint's single result window is
// examined, so older replies are not found.
func (b *Bot) GetReplies(ctx context.Context, t *Tweet) ([]*Tweet, error) {
	if t == nil || t.AuthorHandle == "" {
		return nil, fmt.Errorf("%w: tweet with author handle is required", ErrInvalidArguments)
	}

	results, err := b.api.SearchTweets(ctx, "to:"+t.AuthorHandle, b.cfg.SearchCount)
	if err != nil {
		return nil, fmt.Errorf("search replies to %s: %w", t.ID, err)
	}

	replies := []*Tweet{}
	for _, r := range results {
		if r.InReplyToStatusID == t.ID {
			replies = append(replies, r)
		}
	}
	slog.Debug("replies found",
		slog.String("tweet", t.ID),
		slog.Int("searched", len(results)),
		slog.Int("replies", len(replies)))
	return replies, nil
}

// PreviouslyRepliedTo reports whether the verified account is among the
// authors of t's replies.
func (b *Bot) PreviouslyRepliedTo(ctx context.Context, t *Tweet) (bool, error) {
	if b.account == nil {
		return false, ErrNotVerified
	}
	replies, err := b.GetReplies(ctx, t)
	if err != nil {
		return false, err
	}
	for _, r := range replies {
		if r.AuthorID == b.account.ID {
			return true, nil
		}
	}
	return false, nil
}
