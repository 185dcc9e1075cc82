package dto

type GetPostsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
	AuthorID string `form:"authorId"`
}

type CreatePostRequest struct {
	Title   string `form:"title" binding:"required"`
	Content string `form:"content" binding:"required"`
}

type EditPostRequest struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}
