// Package store declares the persistence contracts used by the recruiter
// service. Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"hrhelper/recruiter-service/internal/model"
)

// ErrNotFound is returned by single-record operations when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("record already exists")

// ScoreFunc computes the derived CV fields from the CV's keywords and the
// owning offer's keywords.
type ScoreFunc func(cvKeywords, offerKeywords []string) (matched, percentage int)

// JobOffers persists job offers. Every single-record operation is scoped by
// the owning user id.
type JobOffers interface {
	CreateJobOffer(ctx context.Context, offer *model.JobOffer) (*model.JobOffer, error)
	// ListJobOffers returns offers newest first. An empty userID lists every
	// offer.
	ListJobOffers(ctx context.Context, userID string) ([]model.JobOffer, error)
	GetJobOffer(ctx context.Context, userID string, id int64) (*model.JobOffer, error)
	// UpdateJobOffer saves title, description and keywords. With a non-nil
	// score the offer's CVs are rescored against the saved keywords in the
	// same transaction, and the number of CVs whose scores changed is
	// returned.
	UpdateJobOffer(ctx context.Context, offer *model.JobOffer, score ScoreFunc) (*model.JobOffer, int, error)
	// RescoreJobOffer rescores the offer's CVs against its current keywords
	// while holding the offer's row lock.
	RescoreJobOffer(ctx context.Context, id int64, score ScoreFunc) (int, error)
	DeleteJobOffer(ctx context.Context, userID string, id int64) error
}

// CVs persists CVs attached to job offers.
type CVs interface {
	// CreateCV inserts cv. With a non-nil score the derived fields are
	// computed against the offer's keywords as seen by the insert.
	CreateCV(ctx context.Context, cv *model.CV, score ScoreFunc) (*model.CV, error)
	// ListCVs returns the offer's CVs ordered by id. An empty status lists
	// all of them.
	ListCVs(ctx context.Context, jobOfferID int64, status model.Status) ([]model.CV, error)
	GetCV(ctx context.Context, jobOfferID, id int64) (*model.CV, error)
	UpdateCVStatus(ctx context.Context, jobOfferID, id int64, status model.Status) (*model.CV, error)
}

// Users persists recruiter accounts.
type Users interface {
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Store bundles every repository.
type Store interface {
	JobOffers
	CVs
	Users
}
