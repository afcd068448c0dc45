package twitter

import "time"

// Tweet is one post taken from a profile timeline. Text and CreatedAt are nil
// when the page data did not carry them (or the date failed to parse).
type Tweet struct {
	ID        string     `json:"id,omitempty"`
	Text      *string    `json:"text,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Result is the outcome of GetTweets. Completed is false when a page's
// network exchange never arrived, so Tweets holds only what came before it.
type Result struct {
	Tweets    []Tweet `json:"tweets"`
	Pages     int     `json:"pages"`
	Completed bool    `json:"completed"`
}

// User is the account behind a profile page.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
