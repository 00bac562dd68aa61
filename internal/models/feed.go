package models

// FeedOptions narrows a feed page. Limit 0 returns every visible post.
type FeedOptions struct {
	Limit  int
	Offset int
}
