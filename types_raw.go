package twitter

import "time"

// GraphQL user envelope shared by UserByScreenName, UserByRestId and
// UserTweets: data.user.result. Every level is a pointer so a missing or
// renamed field reads as nil through the accessors below instead of
// panicking or silently producing zero values.

type userResponse struct {
	Data *rawUserData `json:"data"`
}

type rawUserData struct {
	User *rawUserEnvelope `json:"user"`
}

type rawUserEnvelope struct {
	Result *rawUserResult `json:"result"`
}

type rawUserResult struct {
	Typename   string                `json:"__typename"`
	RestID     string                `json:"rest_id"`
	Legacy     *rawUserLegacy        `json:"legacy"`
	Core       *rawUserCore          `json:"core"`
	TimelineV2 *rawTimelineContainer `json:"timeline_v2"`
	Timeline   *rawTimelineContainer `json:"timeline"`
}

type rawUserLegacy struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// rawUserCore is where newer responses moved screen_name and name.
type rawUserCore struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type rawTimelineContainer struct {
	Timeline *rawTimeline `json:"timeline"`
}

type rawTimeline struct {
	Instructions []rawInstruction `json:"instructions"`
}

type rawInstruction struct {
	Type    string     `json:"type"`
	Entries []rawEntry `json:"entries"`
}

type rawEntry struct {
	EntryID string           `json:"entryId"`
	Content *rawEntryContent `json:"content"`
}

type rawEntryContent struct {
	EntryType   string          `json:"entryType"`
	ItemContent *rawItemContent `json:"itemContent"`
}

type rawItemContent struct {
	ItemType     string           `json:"itemType"`
	TweetResults *rawTweetResults `json:"tweet_results"`
}

type rawTweetResults struct {
	Result *rawTweet `json:"result"`
}

type rawTweet struct {
	Typename string          `json:"__typename"`
	RestID   string          `json:"rest_id"`
	Legacy   *rawTweetLegacy `json:"legacy"`
}

type rawTweetLegacy struct {
	FullText  *string `json:"full_text"`
	CreatedAt *string `json:"created_at"`
}

const (
	typenameUser  = "User"
	typenameTweet = "Tweet"

	instructionAddEntries = "TimelineAddEntries"
	entryTimelineItem     = "TimelineTimelineItem"
)

// createdAtLayout is the fixed textual date format of legacy.created_at,
// e.g. "Wed Oct 10 20:19:24 +0000 2018".
const createdAtLayout = time.RubyDate

func (r *userResponse) user() *rawUserResult {
	if r == nil || r.Data == nil || r.Data.User == nil {
		return nil
	}
	return r.Data.User.Result
}

func (u *rawUserResult) isUser() bool {
	return u != nil && u.Typename == typenameUser
}

func (u *rawUserResult) screenName() string {
	switch {
	case u == nil:
		return ""
	case u.Core != nil && u.Core.ScreenName != "":
		return u.Core.ScreenName
	case u.Legacy != nil:
		return u.Legacy.ScreenName
	}
	return ""
}

func (u *rawUserResult) displayName() string {
	switch {
	case u == nil:
		return ""
	case u.Core != nil && u.Core.Name != "":
		return u.Core.Name
	case u.Legacy != nil:
		return u.Legacy.Name
	}
	return ""
}

// instructions returns the timeline instructions from whichever container
// the response used.
func (u *rawUserResult) instructions() []rawInstruction {
	if u == nil {
		return nil
	}
	for _, c := range []*rawTimelineContainer{u.TimelineV2, u.Timeline} {
		if c != nil && c.Timeline != nil {
			return c.Timeline.Instructions
		}
	}
	return nil
}

func (e rawEntry) isTimelineItem() bool {
	return e.Content != nil && e.Content.EntryType == entryTimelineItem
}

func (e rawEntry) tweet() *rawTweet {
	if e.Content == nil || e.Content.ItemContent == nil || e.Content.ItemContent.TweetResults == nil {
		return nil
	}
	return e.Content.ItemContent.TweetResults.Result
}

func (t *rawTweet) isTweet() bool {
	return t != nil && t.Typename == typenameTweet
}

func (t *rawTweet) text() *string {
	if t == nil || t.Legacy == nil || t.Legacy.FullText == nil {
		return nil
	}
	s := *t.Legacy.FullText
	return &s
}

func (t *rawTweet) createdAt() *time.Time {
	if t == nil || t.Legacy == nil || t.Legacy.CreatedAt == nil {
		return nil
	}
	return parseCreatedAt(*t.Legacy.CreatedAt)
}

// parseCreatedAt returns nil when value does not match createdAtLayout.
func parseCreatedAt(value string) *time.Time {
	ts, err := time.Parse(createdAtLayout, value)
	if err != nil {
		return nil
	}
	return &ts
}

// parseTweet converts a raw timeline tweet to the public Tweet type.
func parseTweet(raw *rawTweet) Tweet {
	return Tweet{
		ID:        raw.RestID,
		Text:      raw.text(),
		CreatedAt: raw.createdAt(),
	}
}

// parseUser converts a raw lookup result to the public User type.
func parseUser(raw *rawUserResult) User {
	return User{
		ID:       raw.RestID,
		Username: raw.screenName(),
		Name:     raw.displayName(),
	}
}
