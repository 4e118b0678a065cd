package query

import (
	"fmt"
	"strconv"
)

// CountErrorKind classifies a rejected count argument.
type CountErrorKind int

const (
	// FormatError means the token is not an integer.
	FormatError CountErrorKind = iota + 1
	// LimitExceeded means the count is above MaxCount.
	LimitExceeded
	// BelowMinimum means the count is below MinCount.
	BelowMinimum
)

func (k CountErrorKind) String() string {
	switch k {
	case FormatError:
		return "format_error"
	case LimitExceeded:
		return "limit_exceeded"
	case BelowMinimum:
		return "below_minimum"
	}
	return "unknown"
}

// CountError describes why a count argument was rejected.
type CountError struct {
	Kind  CountErrorKind
	Token string
}

func (e *CountError) Error() string {
	return fmt.Sprintf("query: %s count %q", e.Kind, e.Token)
}

// Code implements the error-code convention used in handler summaries.
func (e *CountError) Code() string {
	return e.Kind.String()
}

// ParseInt parses a base-10 integer token and reports whether it succeeded.
func ParseInt(token string) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseCount validates a count token against MinCount and MaxCount.
func ParseCount(token string) (int, error) {
	n, ok := ParseInt(token)
	if !ok {
		return 0, &CountError{Kind: FormatError, Token: token}
	}
	if n > MaxCount {
		return 0, &CountError{Kind: LimitExceeded, Token: token}
	}
	if n < MinCount {
		return 0, &CountError{Kind: BelowMinimum, Token: token}
	}
	return n, nil
}

// SplitCount separates a trailing integer token from args. The token is only
// treated as a count when at least one other argument precedes it, so a bare
// number is still a query. ok is false when no count token was found.
func SplitCount(args []string) (rest []string, token string, ok bool) {
	if len(args) < 2 {
		return args, "", false
	}
	last := args[len(args)-1]
	if _, isInt := ParseInt(last); !isInt {
		return args, "", false
	}
	return args[:len(args)-1], last, true
}
