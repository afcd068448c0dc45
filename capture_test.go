package twitter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer_InvalidScope(t *testing.T) {
	t.Parallel()
	_, err := NewBuffer(`[`)
	assert.Error(t, err)
}

func TestBuffer_Scope(t *testing.T) {
	t.Parallel()
	buf, err := NewBuffer(DefaultScope)
	require.NoError(t, err)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://x.com/i/api/graphql/abc/UserTweets", true},
		{"https://api.twitter.com/graphql/abc/UserByScreenName", true},
		{"https://abs.twimg.com/responsive-web/client-web/main.js", false},
		{"https://example.org/", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buf.Add(&Exchange{URL: tt.url}), tt.url)
	}
	assert.Equal(t, 2, buf.Len())
	assert.False(t, buf.Add(nil))
}

func TestBuffer_EmptyScopeKeepsAll(t *testing.T) {
	t.Parallel()
	buf, err := NewBuffer("")
	require.NoError(t, err)
	assert.True(t, buf.Add(&Exchange{URL: "http://127.0.0.1:1234/anything"}))
}

func TestBuffer_AddStampsCaptureTime(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	ex := &Exchange{URL: "https://x.com/"}
	buf.Add(ex)
	assert.False(t, ex.CapturedAt.IsZero())
}

func TestExchange_Matches(t *testing.T) {
	t.Parallel()
	ex := &Exchange{URL: "https://x.com/i/api/graphql/abc/UserByScreenName?variables=%7B%22op%22%3A%22UserTweets%22%7D"}
	assert.True(t, ex.Matches("UserByScreenName"))
	assert.False(t, ex.Matches("UserTweets"), "query string is not part of the match")

	replies := graphqlExchange("UserTweetsAndReplies", "{}")
	assert.True(t, replies.Matches("UserTweetsAndReplies"))
	assert.False(t, replies.Matches("UserTweets"), "operation names match exactly")
	assert.False(t, graphqlExchange("UserTweets", "{}").Matches("Tweets"))
	assert.False(t, (&Exchange{URL: "https://x.com"}).Matches("UserTweets"))
}

func TestBuffer_WaitIgnoresLongerOperationName(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	buf.Add(graphqlExchange("UserTweetsAndReplies", "{}"))

	_, err := buf.Wait(context.Background(), "UserTweets", 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrExchangeTimeout)
}

func TestBuffer_Rounds(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")

	before := buf.Round()
	assert.True(t, buf.AddInRound(before, graphqlExchange("UserTweets", "{}")))
	buf.Drain()
	assert.Equal(t, before+1, buf.Round())

	assert.False(t, buf.AddInRound(before, graphqlExchange("UserTweets", "{}")),
		"response to a request sent before the drain")
	assert.Zero(t, buf.Len())

	assert.True(t, buf.AddInRound(buf.Round(), graphqlExchange("UserTweets", "{}")))
	assert.Equal(t, 1, buf.Len())
}

func TestBuffer_WaitAlreadyBuffered(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	first := graphqlExchange("UserTweets", "{}")
	second := graphqlExchange("UserTweets", "{}")
	buf.Add(graphqlExchange("UserByScreenName", "{}"))
	buf.Add(first)
	buf.Add(second)

	ex, err := buf.Wait(context.Background(), "UserTweets", time.Second)
	require.NoError(t, err)
	assert.Same(t, first, ex, "earliest match wins")
	assert.Equal(t, 3, buf.Len(), "wait does not consume")
}

func TestBuffer_WaitLaterArrival(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	want := graphqlExchange("UserTweets", "{}")

	go func() {
		time.Sleep(20 * time.Millisecond)
		buf.Add(graphqlExchange("UserByRestId", "{}"))
		time.Sleep(20 * time.Millisecond)
		buf.Add(want)
	}()

	ex, err := buf.Wait(context.Background(), "UserTweets", 2*time.Second)
	require.NoError(t, err)
	assert.Same(t, want, ex)
}

func TestBuffer_WaitTimeout(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	buf.Add(graphqlExchange("UserByScreenName", "{}"))

	start := time.Now()
	ex, err := buf.Wait(context.Background(), "UserTweets", 50*time.Millisecond)
	assert.Nil(t, ex)
	assert.ErrorIs(t, err, ErrExchangeTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestBuffer_WaitContextCanceled(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := buf.Wait(ctx, "UserTweets", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrExchangeTimeout))
}

func TestBuffer_Drain(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	buf.Add(graphqlExchange("UserTweets", "{}"))
	buf.Add(graphqlExchange("UserTweets", "{}"))

	assert.Equal(t, 2, buf.Drain())
	assert.Zero(t, buf.Len())
	assert.Zero(t, buf.Drain())

	_, err := buf.Wait(context.Background(), "UserTweets", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrExchangeTimeout, "drained exchanges are gone")
}

func TestBuffer_ExchangesSnapshot(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")
	buf.Add(graphqlExchange("UserTweets", "{}"))

	snap := buf.Exchanges()
	buf.Drain()
	assert.Len(t, snap, 1)
}

func TestBuffer_ConcurrentAdd(t *testing.T) {
	t.Parallel()
	buf, _ := NewBuffer("")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				buf.Add(graphqlExchange("UserByScreenName", "{}"))
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		buf.Add(graphqlExchange("UserTweets", "{}"))
		close(done)
	}()

	_, err := buf.Wait(context.Background(), "UserTweets", 5*time.Second)
	require.NoError(t, err)
	<-done
	assert.Equal(t, 20*50+1, buf.Len())
}
