package dto

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}
