package twitterbot

import stealth "github.com/anatolykoptev/go-stealth"

// restHeaders returns the headers sent with every REST request.
// Authorization is added by the OAuth1 transport.
func restHeaders(userAgent string) map[string]string {
	h := map[string]string{
		"user-agent":      userAgent,
		"accept":          "application/json",
		"accept-language": "en-US,en;q=0.9",
	}
	if ch := stealth.ClientHintsHeaders(userAgent); ch != nil {
		for k, v := range ch {
			h[k] = v
		}
	}
	return h
}
