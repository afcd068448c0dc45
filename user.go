package twitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FindUserID resolves a handle to its numeric account id by loading the
// profile and reading the UserByScreenName lookup the page performs. It
// returns an empty id with ErrExchangeTimeout when the lookup never shows
// up, and with ErrUserNotFound when the response carries no id.
func (s *Scraper) FindUserID(ctx context.Context, username string) (string, error) {
	user, err := s.LookupUser(ctx, username)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// LookupUser is FindUserID returning the whole account record.
func (s *Scraper) LookupUser(ctx context.Context, username string) (User, error) {
	target := ByUsername(username)
	if target.Username == "" {
		return User{}, fmt.Errorf("lookup user: %w", ErrInvalidTarget)
	}

	s.scrapeMu.Lock()
	defer s.scrapeMu.Unlock()

	totalStart := time.Now()
	if err := s.navigate(ctx, target); err != nil {
		return User{}, fmt.Errorf("lookup user %q: %w", username, err)
	}

	var resp userResponse
	if err := s.awaitJSON(ctx, s.traffic, opUserByScreenName, s.lookupTimeout, true, &resp); err != nil {
		return User{}, fmt.Errorf("lookup user %q: %w", username, err)
	}

	raw := resp.user()
	if raw == nil || raw.RestID == "" {
		return User{}, fmt.Errorf("lookup user %q: %w", username, ErrUserNotFound)
	}
	user := parseUser(raw)

	s.logger.Debug("resolved user",
		zap.String("username", username),
		zap.String("id", user.ID),
		zap.Duration("total", time.Since(totalStart)),
	)
	return user, nil
}

// confirmUser waits for the page's own account lookup and checks that it
// resolved to a user. The buffer is left untouched so a timeline response
// that arrived alongside it is still there for the first page.
func (s *Scraper) confirmUser(ctx context.Context, target Target) error {
	var resp userResponse
	if err := s.awaitJSON(ctx, s.traffic, target.lookupOperation(), s.waitTimeout, false, &resp); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	if u := resp.user(); !u.isUser() {
		typename := ""
		if u != nil {
			typename = u.Typename
		}
		return fmt.Errorf("%w: lookup returned %q", ErrUserNotFound, typename)
	}
	return nil
}
