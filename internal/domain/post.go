package domain

import "time"

// PostDateLayout is the human-readable creation date shown on posts.
const PostDateLayout = "January 02, 2006"

// Post is a blog entry owned by exactly one user.
type Post struct {
	ID         int64
	Title      string
	Subtitle   string
	Body       string
	Date       string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title    string
	Subtitle string
	Body     string
}
