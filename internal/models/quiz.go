// internal/models/quiz.go
package models

import (
	"encoding/json"
	"fmt"
)

type Quiz struct {
	ID            int64   `json:"id"`
	VideoID       int64   `json:"videoId,omitempty"`
	Question      string  `json:"question"`
	Options       Options `json:"options"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"` // only after grading
	Explanation   string  `json:"explanation,omitempty"`
}

// Options is the ordered answer list. The API sends it either as a JSON array
// or as a string holding a JSON-encoded array.
type Options []string

func (o *Options) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("options: expected array or encoded array: %w", err)
	}
	if encoded == "" {
		*o = nil
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return fmt.Errorf("options: decode embedded array: %w", err)
	}
	*o = list
	return nil
}

type SubmitRequest struct {
	Answer string `json:"answer"`
}

// SubmitResult is the server's grading of one answer.
type SubmitResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

type QuizInput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}
