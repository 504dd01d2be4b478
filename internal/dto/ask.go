package dto

type AskRequest struct {
	Question string `json:"question" form:"question"`
}

// AskResponse is the envelope consumers key off: type is text, image or error.
type AskResponse struct {
	Type string `json:"type" example:"text"`
	Data string `json:"data" example:"Total spent: 150.00 INR across 2 transactions"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"No question provided"`
}
