package dto

import "github.com/BloggingApp/blog-gateway/internal/model"

type GetPost struct {
	model.Post
	IsLiked *bool `json:"isLiked,omitempty"`
}

type IsLikedResponse struct {
	IsLiked bool `json:"isLiked"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}
