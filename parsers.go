package twitterbot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

type unmarshalFunc func(data []byte, v any) error

// --- v1.1 payload types ---

type userObject struct {
	IDStr               string `json:"id_str"`
	Name                string `json:"name"`
	ScreenName          string `json:"screen_name"`
	Description         string `json:"description"`
	FollowersCount      int    `json:"followers_count"`
	FriendsCount        int    `json:"friends_count"`
	StatusesCount       int    `json:"statuses_count"`
	ListedCount         int    `json:"listed_count"`
	CreatedAt           string `json:"created_at"`
	Verified            bool   `json:"verified"`
	ProfileImageURL     string `json:"profile_image_url_https"`
	DefaultProfileImage bool   `json:"default_profile_image"`
}

type tweetObject struct {
	IDStr                string     `json:"id_str"`
	FullText             string     `json:"full_text"`
	Text                 string     `json:"text"`
	CreatedAt            string     `json:"created_at"`
	User                 userObject `json:"user"`
	InReplyToStatusIDStr string     `json:"in_reply_to_status_id_str"`
	InReplyToUserIDStr   string     `json:"in_reply_to_user_id_str"`
	InReplyToScreenName  string     `json:"in_reply_to_screen_name"`
	FavoriteCount        int        `json:"favorite_count"`
	RetweetCount         int        `json:"retweet_count"`
	QuoteCount           int        `json:"quote_count"`
}

// parseUser parses a single user object (verify_credentials, users/show).
func parseUser(unmarshal unmarshalFunc, body []byte) (*User, error) {
	var raw userObject
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return parseUserObject(raw)
}

// parseTimeline parses statuses/user_timeline, a bare array of tweets.
func parseTimeline(unmarshal unmarshalFunc, body []byte) ([]*Tweet, error) {
	var raw []tweetObject
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal timeline: %w", err)
	}
	return convertTweets(raw), nil
}

// parseSearch parses search/tweets, which wraps results in "statuses".
func parseSearch(unmarshal unmarshalFunc, body []byte) ([]*Tweet, error) {
	var raw struct {
		Statuses []tweetObject `json:"statuses"`
	}
	if err := unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal search: %w", err)
	}
	return convertTweets(raw.Statuses), nil
}

// convertTweets keeps response order and skips entries that fail to parse.
func convertTweets(raw []tweetObject) []*Tweet {
	tweets := make([]*Tweet, 0, len(raw))
	for _, r := range raw {
		t, err := parseTweetObject(r)
		if err != nil {
			slog.Debug("skip tweet parse error", slog.Any("error", err))
			continue
		}
		tweets = append(tweets, t)
	}
	return tweets
}

func parseUserObject(r userObject) (*User, error) {
	if r.IDStr == "" {
		return nil, fmt.Errorf("empty user id_str (screen_name=%s)", r.ScreenName)
	}
	bio := strings.TrimSpace(r.Description)
	return &User{
		ID:          r.IDStr,
		Handle:      r.ScreenName,
		DisplayName: r.Name,
		Bio:         bio,
		Followers:   r.FollowersCount,
		Following:   r.FriendsCount,
		TweetCount:  r.StatusesCount,
		ListedCount: r.ListedCount,
		CreatedAt:   parseTwitterTime(r.CreatedAt),
		IsVerified:  r.Verified,
		HasAvatar:   r.ProfileImageURL != "" && !r.DefaultProfileImage && !strings.Contains(r.ProfileImageURL, "default_profile"),
		HasBio:      bio != "",
	}, nil
}

func parseTweetObject(r tweetObject) (*Tweet, error) {
	if r.IDStr == "" {
		return nil, fmt.Errorf("empty tweet id_str")
	}
	text := r.FullText
	if text == "" {
		text = r.Text
	}
	return &Tweet{
		ID:                r.IDStr,
		AuthorID:          r.User.IDStr,
		AuthorHandle:      r.User.ScreenName,
		Text:              text,
		CreatedAt:         parseTwitterTime(r.CreatedAt),
		Likes:             r.FavoriteCount,
		Retweets:          r.RetweetCount,
		Quotes:            r.QuoteCount,
		InReplyToStatusID: r.InReplyToStatusIDStr,
		InReplyToUserID:   r.InReplyToUserIDStr,
		InReplyToHandle:   r.InReplyToScreenName,
	}, nil
}

func parseTwitterTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(twitterTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
