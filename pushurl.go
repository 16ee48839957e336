// Package autosync provides push URL construction.
//
// The push critical section swaps the remote's URL for one carrying a
// short-lived token in its authority component, then restores the original.
// The original string is kept verbatim so the restore is byte-exact.
package autosync

import (
	"fmt"
	"net/url"
	"strings"
)

// tokenUser is the username paired with the token in the credentialed URL.
// GitHub installation tokens expect this form; other providers ignore it.
const tokenUser = "x-access-token"

// NormalizeHTTPS rewrites SSH-style remote URLs into their HTTPS equivalent.
// HTTP(S) URLs pass through unchanged. Supported alternate forms are
// ssh://[user@]host/path and the scp-like user@host:path syntax.
func NormalizeHTTPS(raw string) (string, error) {
	if raw == "" {
		return "", WrapError(ErrInvalidRef, "remote URL cannot be empty")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", WrapErrorf(err, "invalid remote URL %q", raw)
		}

		switch u.Scheme {
		case "http", "https":
			return raw, nil
		case "ssh":
			return fmt.Sprintf("https://%s/%s", u.Hostname(), strings.TrimPrefix(u.Path, "/")), nil
		default:
			return "", WrapErrorf(ErrInvalidRef, "unsupported URL scheme %q", u.Scheme)
		}
	}

	// scp-like syntax: [user@]host:path
	host, path, ok := strings.Cut(raw, ":")
	if !ok || path == "" {
		return "", WrapErrorf(ErrInvalidRef, "unrecognized remote URL %q", raw)
	}
	if _, h, found := strings.Cut(host, "@"); found {
		host = h
	}
	if host == "" {
		return "", WrapErrorf(ErrInvalidRef, "unrecognized remote URL %q", raw)
	}

	return fmt.Sprintf("https://%s/%s", host, strings.TrimPrefix(path, "/")), nil
}

// CredentialURL splices the token into the authority component of an HTTPS
// URL. The result is only ever written to the remote config transiently; the
// caller must restore the original URL before the run ends.
func CredentialURL(httpsURL, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	u, err := url.Parse(httpsURL)
	if err != nil {
		return "", WrapErrorf(err, "invalid push URL %q", httpsURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", WrapErrorf(ErrInvalidRef, "push URL must be HTTP(S), got %q", u.Scheme)
	}

	u.User = url.UserPassword(tokenUser, token)
	return u.String(), nil
}
