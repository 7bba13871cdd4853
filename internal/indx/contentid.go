package indx

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ContentIDSource identifies how a ContentID was derived.
type ContentIDSource string

const (
	// SourceFilename derives the id from the absolute path and creation time.
	SourceFilename ContentIDSource = "filename"
	// SourceContent derives the id from the file bytes and creation time.
	SourceContent ContentIDSource = "content"
	// SourceRandom is used for content that cannot be resolved yet.
	SourceRandom ContentIDSource = "random"
)

// ContentID is the stable, opaque identifier for one piece of indexed content.
// Format: "<source>:<32-char-hex-token>". A ContentID is assigned once, at
// first index, and never changes afterwards.
type ContentID string

var contentIDPattern = regexp.MustCompile(`^(filename|content|random):[0-9a-fA-F]{32}$`)

// NewFilenameContentID builds a ContentID from the absolute path of a file
// and its creation timestamp.
func NewFilenameContentID(absPath string, created time.Time) ContentID {
	sum := md5.Sum([]byte(absPath + "|" + created.UTC().Format(time.RFC3339Nano)))
	return ContentID(string(SourceFilename) + ":" + hex.EncodeToString(sum[:]))
}

// NewContentContentID builds a ContentID from the file bytes, prefixed with
// the creation timestamp so identical bytes created at different times get
// distinct identities.
func NewContentContentID(data []byte, created time.Time) ContentID {
	h := md5.New()
	h.Write([]byte(created.UTC().Format(time.RFC3339Nano) + "|"))
	h.Write(data)
	return ContentID(string(SourceContent) + ":" + hex.EncodeToString(h.Sum(nil)))
}

// NewRandomContentID builds a ContentID for content that cannot be resolved
// yet. The token is the generated UUID with dashes stripped.
func NewRandomContentID(gen IDGenerator) ContentID {
	token := strings.ReplaceAll(gen.New(), "-", "")
	return ContentID(string(SourceRandom) + ":" + token)
}

// ParseContentID validates s and returns it as a ContentID.
func ParseContentID(s string) (ContentID, error) {
	if !contentIDPattern.MatchString(s) {
		return "", fmt.Errorf("malformed content id %q: %w", s, ErrInvalidParameter)
	}
	return ContentID(s), nil
}

// Valid reports whether the id matches the canonical format.
func (id ContentID) Valid() bool {
	return contentIDPattern.MatchString(string(id))
}

// Source returns the derivation source of the id, or "" if malformed.
func (id ContentID) Source() ContentIDSource {
	src, _, ok := strings.Cut(string(id), ":")
	if !ok {
		return ""
	}
	switch ContentIDSource(src) {
	case SourceFilename, SourceContent, SourceRandom:
		return ContentIDSource(src)
	}
	return ""
}

func (id ContentID) String() string { return string(id) }
