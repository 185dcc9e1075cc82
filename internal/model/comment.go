package model

import "time"

type Comment struct {
	ID              string    `json:"id"`
	Details         string    `json:"details"`
	UserID          string    `json:"userId"`
	PostID          string    `json:"postId"`
	ParentCommentID *string   `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	User            Author    `json:"user"`
	SubComments     []Comment `json:"subComments,omitempty"`
}

// IsTopLevel reports whether the comment has no parent. An empty parent id is
// treated the same as a missing one.
func (c Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil || *c.ParentCommentID == ""
}

func (c Comment) ParentID() string {
	if c.ParentCommentID == nil {
		return ""
	}
	return *c.ParentCommentID
}
