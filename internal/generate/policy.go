package generate

import "fmt"

// Policy decides which response sets the visible state
type Policy int

const (
	LastResolved Policy = iota
	LatestRequest
)

func (p Policy) String() string {
	switch p {
	case LastResolved:
		return "last-resolved"
	case LatestRequest:
		return "latest-request"
	}
	return "unknown"
}

// ParsePolicy accepts "last-resolved", "latest-request" or "" (last-resolved)
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "last-resolved":
		return LastResolved, nil
	case "latest-request":
		return LatestRequest, nil
	}
	return LastResolved, fmt.Errorf("unknown resolve policy %q (want last-resolved or latest-request)", s)
}
