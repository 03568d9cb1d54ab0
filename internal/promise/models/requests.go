package models

import (
	"strings"
	"time"

	dErrors "pinky/pkg/domain-errors"
)

// CreatePromiseRequest is the JSON body for POST /promise.
type CreatePromiseRequest struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	PromDate  *time.Time `json:"promDate"`
	PlaceName string     `json:"placeName"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
}

func (r *CreatePromiseRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return dErrors.New(dErrors.CodeInvalidInput, "latitude and longitude must be set together")
	}
	return nil
}

// SubmitEvaluationRequest is the JSON body for the registered-evaluator
// endpoint. CheckStatus is required; Score and Feedback default at the share.
type SubmitEvaluationRequest struct {
	UserID      string `json:"userId"`
	CheckStatus *int   `json:"checkStatus"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
}

func (r *SubmitEvaluationRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "userId is required")
	}
	if r.CheckStatus == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "checkStatus is required")
	}
	return nil
}

// SubmitGuestEvaluationRequest is the JSON body for the guest endpoint.
// TempID reuses an existing guest; otherwise a new one is minted, named
// TempName when present.
type SubmitGuestEvaluationRequest struct {
	TempID      string `json:"tempId"`
	TempName    string `json:"tempName"`
	CheckStatus *int   `json:"checkStatus"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
}

func (r *SubmitGuestEvaluationRequest) Validate() error {
	if r.CheckStatus == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "checkStatus is required")
	}
	return nil
}
