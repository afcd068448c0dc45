package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

// Target identifies a profile either by handle or by numeric account id.
// Username wins when both are set.
type Target struct {
	Username string
	UserID   string
}

// ByUsername returns a Target for the given handle, with or without a leading @.
func ByUsername(username string) Target {
	return Target{Username: strings.TrimPrefix(strings.TrimSpace(username), "@")}
}

// ByID returns a Target for a numeric account id.
func ByID(id string) Target {
	return Target{UserID: strings.TrimSpace(id)}
}

func (t Target) String() string {
	if t.Username != "" {
		return "@" + t.Username
	}
	return "id:" + t.UserID
}

// URL returns the profile URL under baseURL.
func (t Target) URL(baseURL string) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case t.Username != "":
		return base + "/" + url.PathEscape(t.Username), nil
	case t.UserID != "":
		return base + "/i/user/" + url.PathEscape(t.UserID), nil
	}
	return "", fmt.Errorf("profile url: %w", ErrInvalidTarget)
}

// lookupOperation is the GraphQL operation the profile page issues to
// resolve the target into an account.
func (t Target) lookupOperation() string {
	if t.Username != "" {
		return opUserByScreenName
	}
	return opUserByRestID
}
