package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	twitter "github.com/RavensCloud/twitter-gofun"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTweetsCommand_RequiresTarget(t *testing.T) {
	_, err := runCommand(t, "tweets")
	assert.ErrorIs(t, err, twitter.ErrInvalidTarget)
}

func TestTweetsCommand_InvalidPages(t *testing.T) {
	_, err := runCommand(t, "tweets", "--user", "jack", "--pages", "0")
	assert.ErrorIs(t, err, twitter.ErrInvalidPageCount)
}

func TestTweetsCommand_InvalidCaptureMode(t *testing.T) {
	_, err := runCommand(t, "tweets", "--user", "jack", "--capture", "har")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported capture mode")
}

func TestUserIDCommand_RequiresHandle(t *testing.T) {
	_, err := runCommand(t, "userid")
	assert.Error(t, err)
}

func textPtr(s string) *string { return &s }

func TestPrintTweets(t *testing.T) {
	created := time.Date(2018, time.October, 10, 20, 19, 24, 0, time.UTC)
	var out bytes.Buffer
	printTweets(&out, twitter.Result{
		Tweets: []twitter.Tweet{
			{ID: "1", Text: textPtr("hello"), CreatedAt: &created},
			{ID: "2"},
		},
		Pages:     1,
		Completed: false,
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "[1] 1 (2018-10-10 20:19)", lines[0])
	assert.Equal(t, "    hello", lines[1])
	assert.Equal(t, "[2] 2 (unknown date)", lines[2])
	assert.Equal(t, "Total: 2 tweets from 1 pages (partial)", lines[len(lines)-1])
}

func TestPrintJSON(t *testing.T) {
	created := time.Date(2018, time.October, 10, 20, 19, 24, 0, time.UTC)
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, twitter.Result{
		Tweets:    []twitter.Tweet{{ID: "1", Text: textPtr("hello"), CreatedAt: &created}, {ID: "2"}},
		Pages:     1,
		Completed: true,
	}))

	var got struct {
		Tweets []struct {
			ID        string  `json:"id"`
			Text      *string `json:"text"`
			CreatedAt *string `json:"created_at"`
		} `json:"tweets"`
		Pages     int  `json:"pages"`
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Tweets, 2)
	assert.Equal(t, "hello", *got.Tweets[0].Text)
	assert.Equal(t, "2018-10-10T20:19:24Z", *got.Tweets[0].CreatedAt)
	assert.Nil(t, got.Tweets[1].Text)
	assert.True(t, got.Completed)
}
