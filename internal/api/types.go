package api

import "github.com/satriahrh/arunika/avatar/domain/entities"

// TTSRequest is the body of POST /tts
type TTSRequest struct {
	Message string `json:"message"`
}

// STSRequest is the body of POST /sts
type STSRequest struct {
	Audio string `json:"audio"` // base64, optionally a data URL
}

// ReplyResponse carries the generated, enriched reply
type ReplyResponse struct {
	Messages []entities.EnrichedUtterance `json:"messages"`
}

// DefaultMessageResponse is sent when the pipeline answered with a canned set
type DefaultMessageResponse struct {
	Message         string                       `json:"message"`
	DefaultMessages []entities.EnrichedUtterance `json:"defaultMessages"`
}

// VoicesResponse mirrors the Eleven Labs voices listing
type VoicesResponse struct {
	Voices []map[string]interface{} `json:"voices"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
