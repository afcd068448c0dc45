package twitter

// extractTweets walks data.user.result.timeline.instructions and returns the
// tweets of every TimelineAddEntries instruction in source order. Entries
// that are not timeline items, or whose result is not a plain Tweet
// (cursors, promoted content, visibility-wrapped tweets), are skipped.
func extractTweets(doc *userResponse) []Tweet {
	var tweets []Tweet
	for _, inst := range doc.user().instructions() {
		if inst.Type != instructionAddEntries {
			continue
		}
		for _, entry := range inst.Entries {
			if !entry.isTimelineItem() {
				continue
			}
			raw := entry.tweet()
			if !raw.isTweet() {
				continue
			}
			tweets = append(tweets, parseTweet(raw))
		}
	}
	return tweets
}
