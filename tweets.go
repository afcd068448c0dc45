package twitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GetTweets loads the target's profile and collects up to pages timeline
// pages, scrolling between them to make the site fetch the next one.
//
// It returns ErrInvalidTarget or ErrInvalidPageCount for bad input and
// ErrUserNotFound when the profile lookup fails. A page whose exchange does
// not arrive in time ends the run early: the tweets gathered so far are
// returned with Completed set to false and a nil error.
func (s *Scraper) GetTweets(ctx context.Context, target Target, pages int) (Result, error) {
	if _, err := target.URL(s.baseURL); err != nil {
		return Result{}, fmt.Errorf("get tweets: %w", err)
	}
	if pages < 1 {
		return Result{}, fmt.Errorf("get tweets %s: %w", target, ErrInvalidPageCount)
	}

	s.scrapeMu.Lock()
	defer s.scrapeMu.Unlock()

	totalStart := time.Now()
	if err := s.navigate(ctx, target); err != nil {
		return Result{}, fmt.Errorf("get tweets %s: %w", target, err)
	}
	if err := s.confirmUser(ctx, target); err != nil {
		return Result{}, fmt.Errorf("get tweets %s: %w", target, err)
	}

	result, err := s.collectPages(ctx, pages)
	s.logger.Info("collected tweets",
		zap.Stringer("target", target),
		zap.Int("tweets", len(result.Tweets)),
		zap.Int("pages", result.Pages),
		zap.Bool("completed", result.Completed),
		zap.Duration("total", time.Since(totalStart)),
	)
	if err != nil {
		return result, fmt.Errorf("get tweets %s: %w", target, err)
	}
	return result, nil
}

func (s *Scraper) collectPages(ctx context.Context, pages int) (Result, error) {
	result := Result{Tweets: []Tweet{}}

	for i := range pages {
		tweets, err := s.fetchTweetsPage(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			s.logger.Warn("timeline page not captured, stopping early",
				zap.Int("page", i+1), zap.Error(err))
			return result, nil
		}

		result.Pages++
		result.Tweets = append(result.Tweets, tweets...)
		s.logger.Debug("timeline page captured", zap.Int("page", i+1), zap.Int("tweets", len(tweets)))

		if i < pages-1 {
			s.waitForScroll()
			if err := s.scrollFunc(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return result, ctxErr
				}
				s.logger.Warn("scroll failed, stopping early", zap.Int("page", i+1), zap.Error(err))
				return result, nil
			}
		}
	}

	result.Completed = true
	return result, nil
}

// fetchTweetsPage waits for the next UserTweets exchange and extracts it.
// The buffer is drained afterwards so the next page starts clean.
func (s *Scraper) fetchTweetsPage(ctx context.Context) ([]Tweet, error) {
	var resp userResponse
	if err := s.awaitJSON(ctx, s.traffic, opUserTweets, s.waitTimeout, true, &resp); err != nil {
		return nil, err
	}
	return extractTweets(&resp), nil
}
