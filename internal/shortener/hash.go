package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// MaxURLLength bounds the length of a URL accepted for shortening.
const MaxURLLength = 2083

// ValidateURL checks that rawURL is an absolute http or https URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" || len(rawURL) > MaxURLLength {
		return ErrInvalidURL
	}

	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return ErrInvalidURL
	}

	if strings.ContainsAny(rawURL, " \t\r\n") {
		return ErrInvalidURL
	}

	return nil
}

// HashURL computes the SHA256 content hash of rawURL, hex encoded.
// The URL is hashed as submitted, so distinct strings get distinct mappings.
func HashURL(rawURL string) URLHash {
	h := sha256.Sum256([]byte(rawURL))

	return URLHash(hex.EncodeToString(h[:]))
}
