// Package bookmarks holds the pure rules applied to bookmark fields on their
// way in (validation) and on their way out (sanitization).
package bookmarks

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind identifies which field rule a candidate bookmark failed.
type Kind string

const (
	KindInvalidRating Kind = "InvalidRating"
	KindInvalidURL    Kind = "InvalidUrl"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrInvalidRating is wrapped by every ValidationError of kind KindInvalidRating.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidURL is wrapped by every ValidationError of kind KindInvalidURL.
	ErrInvalidURL = errors.New("invalid url")
)

// ValidationError reports the first rule a candidate failed and the offending value.
// Its message is safe to return to clients.
type ValidationError struct {
	Kind  Kind
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindInvalidRating:
		return fmt.Sprintf("invalid rating %s. rating must be %d-%d", e.Value, MinRating, MaxRating)
	case KindInvalidURL:
		return fmt.Sprintf("invalid url %s. must be a valid url.", e.Value)
	default:
		return fmt.Sprintf("invalid value %s", e.Value)
	}
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindInvalidRating:
		return ErrInvalidRating
	case KindInvalidURL:
		return ErrInvalidURL
	default:
		return nil
	}
}

// Candidate carries the validated fields of a bookmark as the client sent them.
// A nil field was not supplied. Rating holds the textual form of the value so
// that numeric strings ("3") and JSON numbers (3) are treated alike.
type Candidate struct {
	URL    *string
	Rating *string
}

// Validate checks rating first and then url; the first failure wins.
// When a rating was supplied and is valid, its integer form is returned.
// Validate never touches the store.
func Validate(c Candidate) (*int, error) {
	var rating *int
	if c.Rating != nil {
		n, err := ParseRating(*c.Rating)
		if err != nil {
			return nil, err
		}
		rating = &n
	}

	if c.URL != nil && *c.URL != "" && !IsWebURL(*c.URL) {
		return nil, &ValidationError{Kind: KindInvalidURL, Value: *c.URL}
	}
	return rating, nil
}

// ParseRating parses a base-10 integer rating and checks it is within range.
func ParseRating(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < MinRating || n > MaxRating {
		return 0, &ValidationError{Kind: KindInvalidRating, Value: s}
	}
	return n, nil
}

// IsWebURL reports whether s is an absolute http or https URI with a host.
func IsWebURL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != ""
}
