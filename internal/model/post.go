package model

import "time"

type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	UserID     string    `json:"userId"`
	User       Author    `json:"user"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LikesCount int64     `json:"likesCount"`
	Comments   []Comment `json:"comments,omitempty"`
}

type PostInput struct {
	Title   string
	Content string
	Image   *Upload
}

// Fields returns the scalar multipart fields of the input. Empty values are
// left out so a partial edit does not blank existing columns.
func (in PostInput) Fields() map[string]string {
	fields := make(map[string]string, 2)
	if in.Title != "" {
		fields["title"] = in.Title
	}
	if in.Content != "" {
		fields["content"] = in.Content
	}
	return fields
}
