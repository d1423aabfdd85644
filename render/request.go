package render

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/jmgilman/go/errors"
)

// MaxBulkItems bounds a single RenderBulk call.
const MaxBulkItems = 100

// Request describes one artifact configuration.
type Request struct {
	// Kind selects the generator variant (e.g. "basic", "custom", "vcard").
	Kind string

	// Params are the generator inputs. Every param takes part in the fingerprint.
	Params map[string]string
}

// Validate rejects requests that cannot produce a stable fingerprint.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Kind) == "" {
		return errors.New(errors.CodeInvalidInput, "render request kind must not be empty")
	}
	return nil
}

// Fingerprint returns the cache key for a request: the kind followed by the
// params sorted by name, so equal configurations always share a key.
func Fingerprint(kind string, params map[string]string) string {
	v := make(url.Values, len(params))
	for k, p := range params {
		v.Set(k, p)
	}
	if len(v) == 0 {
		return kind
	}
	return kind + "?" + v.Encode()
}

// Artifact is one rendered payload.
type Artifact struct {
	Key       string
	Payload   []byte
	MediaType string

	// Cached is true when the payload came from the cache.
	Cached bool
}

// BulkItem is one entry of a bulk render.
type BulkItem struct {
	ID   string
	Kind string
	Artifact
}

// DataURL encodes the payload as data:<media type>;base64,<payload>.
func (b BulkItem) DataURL() string {
	return "data:" + b.MediaType + ";base64," + base64.StdEncoding.EncodeToString(b.Payload)
}

// BulkResult is the outcome of RenderBulk.
type BulkResult struct {
	ID    string
	Items []BulkItem
}
