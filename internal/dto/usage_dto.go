// DTOs for usage limits and plan status
package dto

import (
	"time"
)

// UsageLimit represents a single limit status. Limit is -1 when the plan
// is unlimited (wire format only; internally limits are a tagged type).
type UsageLimit struct {
	Used     int        `json:"used"`
	Limit    int        `json:"limit"`
	CanUse   bool       `json:"can_use"`
	ResetsAt *time.Time `json:"resets_at,omitempty"`
}

// UsageStatusResponse is returned by GET /api/user/usage-status
type UsageStatusResponse struct {
	Plan             PlanInfo    `json:"plan"`
	SessionsToday    UsageLimit  `json:"sessions_today"`
	Questions        *UsageLimit `json:"questions,omitempty"` // Present when a session_id was given
	UpgradeAvailable bool        `json:"upgrade_available"`
}

type PlanInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// PlanResponse is returned by GET /api/plans (public)
type PlanResponse struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Price       float64       `json:"price"`
	Features    []string      `json:"features"`
	Limits      PlanLimitsDTO `json:"limits"`
}

type PlanLimitsDTO struct {
	QuestionsPerSession int `json:"questions_per_session"` // -1 = unlimited
	SessionsPerDay      int `json:"sessions_per_day"`      // -1 = unlimited
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	LimitType  string    `json:"limit_type"` // "sessions_per_day" | "questions_per_session"
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "usage limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	LimitType        string    `json:"limit_type"`
	Limit            int       `json:"limit"`
	Used             int       `json:"used"`
	ResetAfter       time.Time `json:"reset_after"`
	ShowModalPricing bool      `json:"show_modal_pricing"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}

const (
	LimitTypeSessionsPerDay      = "sessions_per_day"
	LimitTypeQuestionsPerSession = "questions_per_session"
)
