// Package model defines shared data structures for the recruiter service.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review status of a CV. Values mirror the cv_status enum in
// PostgreSQL.
type Status string

const (
	StatusNew      Status = "new"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// JobOffer mirrors a job_offers row.
type JobOffer struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"created_at"`
}

// CV mirrors a cvs row. MatchPercentage and MatchedKeywordsCount are derived
// from Keywords and the owning offer's keywords; nothing outside the
// matching package computes them.
type CV struct {
	ID                   int64     `json:"id"`
	JobOfferID           int64     `json:"job_offer_id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Keywords             []string  `json:"keywords"`
	MatchPercentage      *int      `json:"match_percentage"`
	MatchedKeywordsCount *int      `json:"matched_keywords_count"`
	Status               Status    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// JobOfferStats is the aggregate view over the CVs of one job offer.
// It is a projection, never stored.
type JobOfferStats struct {
	TotalCVs int `json:"total_cvs"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// User is a recruiter account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ─── Commands ────────────────────────────────────────────────────────────────

// JobOfferCreate is the payload for POST /job_offers.
type JobOfferCreate struct {
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Keywords    []string `json:"keywords"`
}

// JobOfferUpdate is a partial update; nil fields are left untouched.
// Keywords, when set, replace the whole set.
type JobOfferUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Keywords    *[]string `json:"keywords"`
}

// CVCreate is the payload for submitting a CV to a job offer. The offer id
// comes from the URL path.
type CVCreate struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Keywords  []string `json:"keywords"`
}

// MaxCVKeywords caps the keyword list of a submitted CV.
const MaxCVKeywords = 10
