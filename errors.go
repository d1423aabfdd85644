package cache

import (
	"github.com/jmgilman/go/errors"
)

var (
	// ErrEmptyKey is returned by Set when the fingerprint is empty.
	ErrEmptyKey = errors.New(errors.CodeInvalidInput, "cache key must not be empty")
)

func invalidConfig(field string, value any, msg string) error {
	err := errors.Newf(errors.CodeInvalidConfig, "invalid %s: %s", field, msg)
	return errors.WithContextMap(err, map[string]interface{}{
		"field": field,
		"value": value,
	})
}
