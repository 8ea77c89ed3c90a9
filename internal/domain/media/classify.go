package media

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// documentMIMEs are signatures we treat as documents rather than opaque
// binary data.
var documentMIMEs = map[string]bool{
	"application/pdf":                   true,
	"application/epub+zip":              true,
	"application/msword":                true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Classification is the classifier output used to select the transformation
// ruleset.
type Classification struct {
	Kind Kind
	Mime string
}

// Classifier resolves a resource kind from leading signature bytes, falling
// back to a caller hint and then the configured default. Ambiguity is
// resolved, never rejected: server-side re-encoded media defeats signature
// sniffing often enough that a hard failure here would reject valid files.
type Classifier struct {
	defaultKind Kind
}

func NewClassifier(defaultKind Kind) *Classifier {
	if defaultKind == KindUnknown || defaultKind == "" {
		defaultKind = KindVideo
	}
	return &Classifier{defaultKind: defaultKind}
}

// Classify inspects data and returns the resolved kind plus the normalized
// MIME label. hint may be KindUnknown when the caller declared nothing.
func (c *Classifier) Classify(data []byte, hint Kind) Classification {
	detected := mimetype.Detect(data)
	mime := normalizeMime(detected.String())

	if kind, ok := kindFromMime(mime); ok {
		return Classification{Kind: kind, Mime: mime}
	}

	// Inconclusive signature: hint wins, then the configured default.
	if hint != KindUnknown && hint != "" {
		return Classification{Kind: hint, Mime: mime}
	}
	return Classification{Kind: c.defaultKind, Mime: mime}
}

func kindFromMime(mime string) (Kind, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage, true
	case strings.HasPrefix(mime, "video/"):
		return KindVideo, true
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio, true
	case documentMIMEs[mime]:
		return KindDocument, true
	}
	// application/octet-stream, text/plain and friends are generic
	// signatures, not a real determination.
	return KindUnknown, false
}

func normalizeMime(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
