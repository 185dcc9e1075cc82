package dto

type SuggestionRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type SuggestionResponse struct {
	Text string `json:"text"`
}
