package dto

type IsFollowingResponse struct {
	IsFollowing bool `json:"isFollowing"`
}

type ToggleFollowResponse struct {
	Following bool `json:"following"`
}
