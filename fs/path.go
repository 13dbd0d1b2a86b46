// Package fs provides file-based storage for collected documents.
package fs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

var errMissingHost = errors.New("missing host")

// maxPathPart bounds the URL path portion of a document file name.
const maxPathPart = 60

// DocumentFileName derives a flat file name from a source URL.
// Example: https://en.wikisource.org/wiki/Meditations → en.wikisource.org-wiki_meditations-1a2b3c4d.txt
// The hash suffix keeps names unique when sanitized paths collide.
func DocumentFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errMissingHost}
	}

	host := sanitize(strings.ToLower(u.Hostname()))
	path := sanitize(strings.ToLower(strings.Trim(u.Path, "/")))
	if path == "" {
		path = "index"
	}
	if len(path) > maxPathPart {
		path = path[:maxPathPart]
	}

	sum := xxhash.Sum64String(rawURL)
	return fmt.Sprintf("%s-%s-%08x.txt", host, path, uint32(sum)), nil
}

// sanitize replaces everything except ASCII letters, digits, dots and
// hyphens with underscores, collapsing runs.
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
