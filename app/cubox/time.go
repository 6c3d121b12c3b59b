package cubox

import (
	"errors"
	"fmt"

	"github.com/araddon/dateparse"
)

// ErrInvalidTimestamp indicates a Cubox timestamp string could not be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ParseInstant converts a Cubox timestamp string into unix milliseconds,
// comparable with < and <=. No timezone normalization is applied beyond what
// the underlying parser does.
func ParseInstant(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, s, err)
	}

	return t.UnixMilli(), nil
}
