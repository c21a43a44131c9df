package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/studiowebux/text2image/internal/executor"
	"github.com/studiowebux/text2image/internal/types"
)

const (
	DefaultReleaseURL = "https://api.github.com/repos/studiowebux/text2image/releases/latest"
	checkTimeout      = 5 * time.Second
)

type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the outcome of a release check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Checker queries a release endpoint for newer versions
type Checker struct {
	ReleaseURL string
	client     *http.Client
}

// NewChecker creates a checker against the project's GitHub releases
func NewChecker() *Checker {
	return &Checker{
		ReleaseURL: DefaultReleaseURL,
		client:     &http.Client{Timeout: checkTimeout},
	}
}

// Check compares the latest published release against current
func (c *Checker) Check(ctx context.Context, current string) (*Update, error) {
	current = strings.TrimPrefix(current, "v")

	result, err := executor.Execute(ctx, c.client, &types.HttpRequest{
		Method: http.MethodGet,
		URL:    c.ReleaseURL,
		Headers: map[string]string{
			"User-Agent": "text2image/" + current,
			"Accept":     "application/vnd.github+json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	if result.Status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", result.Status)
	}

	var release GitHubRelease
	if err := json.Unmarshal([]byte(result.Body), &release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")

	return &Update{
		Available: latest != "" && isNewerVersion(latest, current),
		Latest:    latest,
		URL:       release.HTMLURL,
	}, nil
}

// isNewerVersion compares two dotted versions and returns true if latest > current.
// Pre-release and build suffixes are ignored.
func isNewerVersion(latest, current string) bool {
	a, b := parseVersion(latest), parseVersion(current)
	for len(a) < len(b) {
		a = append(a, 0)
	}
	for len(b) < len(a) {
		b = append(b, 0)
	}

	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
