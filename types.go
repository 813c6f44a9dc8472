package twitterbot

import "time"

// User represents a Twitter/X account profile.
type User struct {
	ID          string
	Handle      string
	DisplayName string
	Bio         string
	Followers   int
	Following   int
	TweetCount  int
	ListedCount int
	CreatedAt   time.Time
	IsVerified  bool
	HasAvatar   bool
	HasBio      bool
}

// Tweet represents a single tweet.
type Tweet struct {
	ID           string
	AuthorID     string
	AuthorHandle string
	Text         string
	CreatedAt    time.Time
	Likes        int
	Retweets     int
	Quotes       int

	// Reply target, empty when the tweet is not a reply.
	InReplyToStatusID string
	InReplyToUserID   string
	InReplyToHandle   string
}

// IsReply reports whether the tweet replies to another tweet.
func (t *Tweet) IsReply() bool {
	return t.InReplyToStatusID != ""
}

// Credentials is the OAuth1 key set for a single account.
type Credentials struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	AccessToken    string `yaml:"access_token"`
	AccessSecret   string `yaml:"access_secret"`
}

// Validate checks that every credential field is set.
func (c Credentials) Validate() error {
	switch {
	case c.ConsumerKey == "":
		return missingCredential("consumer key")
	case c.ConsumerSecret == "":
		return missingCredential("consumer secret")
	case c.AccessToken == "":
		return missingCredential("access token")
	case c.AccessSecret == "":
		return missingCredential("access secret")
	}
	return nil
}
