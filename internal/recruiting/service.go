// Package recruiting contains the business logic for job offers and the CVs
// submitted to them. It is transport-agnostic: used by the HTTP handlers,
// the gRPC server, the scheduler and the CLI.
package recruiting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/events"
	"hrhelper/recruiter-service/internal/matching"
	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/review"
	"hrhelper/recruiter-service/internal/store"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates offer and CV business logic.
type Service struct {
	store    store.Store
	pub      events.Publisher
	log      *zap.Logger
	sanitize *sanitizer
}

// NewService returns a configured Service. A nil publisher disables events.
func NewService(st store.Store, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, pub: pub, log: log, sanitize: newSanitizer()}
}

// ─── Job offers ──────────────────────────────────────────────────────────────

// ListJobOffers returns the offers owned by userID, newest first. The result
// is never nil.
func (s *Service) ListJobOffers(ctx context.Context, userID string) ([]model.JobOffer, error) {
	offers, err := s.store.ListJobOffers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list job offers: %w", err)
	}
	if offers == nil {
		offers = []model.JobOffer{}
	}
	return offers, nil
}

// CreateJobOffer validates and stores a new offer.
func (s *Service) CreateJobOffer(ctx context.Context, in model.JobOfferCreate) (*model.JobOffer, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Msg: "Invalid input: user_id and title are required fields."}
	}
	if _, err := uuid.Parse(strings.TrimSpace(in.UserID)); err != nil {
		return nil, &ValidationError{Msg: "Invalid input: user_id must be a UUID."}
	}

	title, err := s.sanitize.field("title", in.Title)
	if err != nil {
		return nil, err
	}
	desc, err := s.description(in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.sanitize.keywords("keywords", in.Keywords); err != nil {
		return nil, err
	}

	offer, err := s.store.CreateJobOffer(ctx, &model.JobOffer{
		UserID:      strings.TrimSpace(in.UserID),
		Title:       title,
		Description: desc,
		Keywords:    matching.NormalizeKeywords(in.Keywords),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ValidationError{Msg: "user_id does not reference an existing user"}
		}
		return nil, fmt.Errorf("create job offer: %w", err)
	}
	return offer, nil
}

// GetJobOffer returns the offer, or (nil, nil) when it does not exist or is
// not owned by userID.
func (s *Service) GetJobOffer(ctx context.Context, userID string, id int64) (*model.JobOffer, error) {
	offer, err := s.store.GetJobOffer(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job offer %d: %w", id, err)
	}
	return offer, nil
}

// UpdateJobOffer applies a partial update. When keywords change, every CV of
// the offer is rescored in the same store transaction as the keyword write.
func (s *Service) UpdateJobOffer(ctx context.Context, userID string, id int64, upd model.JobOfferUpdate) (*model.JobOffer, error) {
	offer, err := s.mustGetOffer(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title, err := s.sanitize.field("title", *upd.Title)
		if err != nil {
			return nil, err
		}
		if title == "" {
			return nil, &ValidationError{Msg: "title cannot be empty"}
		}
		offer.Title = title
	}
	if upd.Description != nil {
		desc, err := s.description(upd.Description)
		if err != nil {
			return nil, err
		}
		offer.Description = desc
	}
	keywordsChanged := false
	if upd.Keywords != nil {
		if err := s.sanitize.keywords("keywords", *upd.Keywords); err != nil {
			return nil, err
		}
		offer.Keywords = matching.NormalizeKeywords(*upd.Keywords)
		keywordsChanged = true
	}

	var score store.ScoreFunc
	if keywordsChanged {
		score = scoreCV
	}
	updated, n, err := s.store.UpdateJobOffer(ctx, offer, score)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update job offer %d: %w", id, err)
	}

	if keywordsChanged {
		s.pub.OfferKeywordsUpdated(ctx, events.OfferKeywordsUpdated{
			JobOfferID: updated.ID,
			UserID:     updated.UserID,
			Keywords:   updated.Keywords,
			Rescored:   n,
		})
	}
	return updated, nil
}

// ReplaceKeywords replaces the offer's keyword set wholesale and rescores
// its CVs.
func (s *Service) ReplaceKeywords(ctx context.Context, userID string, id int64, keywords []string) (*model.JobOffer, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return s.UpdateJobOffer(ctx, userID, id, model.JobOfferUpdate{Keywords: &keywords})
}

// DeleteJobOffer removes the offer and its CVs.
func (s *Service) DeleteJobOffer(ctx context.Context, userID string, id int64) error {
	err := s.store.DeleteJobOffer(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete job offer %d: %w", id, err)
	}
	return nil
}

// ─── CVs ─────────────────────────────────────────────────────────────────────

// ListCVs returns the offer's CVs, optionally filtered by status.
func (s *Service) ListCVs(ctx context.Context, userID string, offerID int64, statusFilter string) ([]model.CV, error) {
	var status review.Status
	if statusFilter != "" {
		st, err := review.ParseStatus(statusFilter)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		status = st
	}
	if _, err := s.mustGetOffer(ctx, userID, offerID); err != nil {
		return nil, err
	}

	cvs, err := s.store.ListCVs(ctx, offerID, status)
	if err != nil {
		return nil, fmt.Errorf("list cvs of offer %d: %w", offerID, err)
	}
	if cvs == nil {
		cvs = []model.CV{}
	}
	return cvs, nil
}

// CreateCV attaches a CV to an offer and scores it against the offer's
// keywords.
func (s *Service) CreateCV(ctx context.Context, userID string, offerID int64, in model.CVCreate) (*model.CV, error) {
	first, err := s.sanitize.field("first_name", in.FirstName)
	if err != nil {
		return nil, err
	}
	last, err := s.sanitize.field("last_name", in.LastName)
	if err != nil {
		return nil, err
	}
	if first == "" || last == "" {
		return nil, &ValidationError{Msg: "first_name and last_name are required fields"}
	}
	if err := s.sanitize.keywords("keywords", in.Keywords); err != nil {
		return nil, err
	}
	keywords := matching.NormalizeKeywords(in.Keywords)
	if len(keywords) > model.MaxCVKeywords {
		return nil, &ValidationError{Msg: fmt.Sprintf("a CV may list at most %d keywords", model.MaxCVKeywords)}
	}

	offer, err := s.mustGetOffer(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}

	// Scored by the store against the keywords current at insert time.
	cv, err := s.store.CreateCV(ctx, &model.CV{
		JobOfferID: offer.ID,
		FirstName:  first,
		LastName:   last,
		Keywords:   keywords,
		Status:     review.StatusNew,
	}, scoreCV)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create cv: %w", err)
	}
	return cv, nil
}

// MoveCV sets a CV's status to accepted or rejected.
// Returns ErrNotFound if the offer or CV does not exist or is not owned by
// userID, and a ValidationError for an invalid target status.
func (s *Service) MoveCV(ctx context.Context, userID string, offerID, cvID int64, newStatus string) (*model.CV, error) {
	target, err := review.ParseTarget(newStatus)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	if _, err := s.mustGetOffer(ctx, userID, offerID); err != nil {
		return nil, err
	}

	current, err := s.store.GetCV(ctx, offerID, cvID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cv %d: %w", cvID, err)
	}

	if !review.IsTransitionAllowed(current.Status, target) {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", current.Status, target),
		}
	}

	cv, err := s.store.UpdateCVStatus(ctx, offerID, cvID, target)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update cv %d status: %w", cvID, err)
	}

	if current.Status != target {
		s.pub.CVStatusChanged(ctx, events.CVStatusChanged{
			CVID:       cvID,
			JobOfferID: offerID,
			UserID:     userID,
			From:       string(current.Status),
			To:         string(target),
		})
	}
	return cv, nil
}

// Persister returns a review.Persister that records transitions for the CVs
// of one offer on behalf of userID.
func (s *Service) Persister(userID string, offerID int64) review.Persister {
	return review.PersisterFunc(func(ctx context.Context, cvID int64, status review.Status) error {
		_, err := s.MoveCV(ctx, userID, offerID, cvID, string(status))
		return err
	})
}

// Stats returns the status counters of one offer, derived from its CVs.
func (s *Service) Stats(ctx context.Context, userID string, offerID int64) (model.JobOfferStats, error) {
	cvs, err := s.ListCVs(ctx, userID, offerID, "")
	if err != nil {
		return model.JobOfferStats{}, err
	}
	return review.ComputeStats(cvs), nil
}

// ─── Read models ─────────────────────────────────────────────────────────────

// OfferSummary is an offer with its stats, as listed on the dashboard.
type OfferSummary struct {
	model.JobOffer
	Stats model.JobOfferStats `json:"stats"`
}

// OfferDetails is everything the offer page shows.
type OfferDetails struct {
	Offer model.JobOffer      `json:"offer"`
	Stats model.JobOfferStats `json:"stats"`
	CVs   []model.CV          `json:"cvs"`
}

// Dashboard lists the user's offers together with their stats.
func (s *Service) Dashboard(ctx context.Context, userID string) ([]OfferSummary, error) {
	offers, err := s.ListJobOffers(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]OfferSummary, 0, len(offers))
	for _, o := range offers {
		cvs, err := s.store.ListCVs(ctx, o.ID, "")
		if err != nil {
			return nil, fmt.Errorf("list cvs of offer %d: %w", o.ID, err)
		}
		out = append(out, OfferSummary{JobOffer: o, Stats: review.ComputeStats(cvs)})
	}
	return out, nil
}

// OfferDetails returns the offer with its CVs and stats, or ErrNotFound.
func (s *Service) OfferDetails(ctx context.Context, userID string, offerID int64) (*OfferDetails, error) {
	offer, err := s.mustGetOffer(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}
	cvs, err := s.store.ListCVs(ctx, offerID, "")
	if err != nil {
		return nil, fmt.Errorf("list cvs of offer %d: %w", offerID, err)
	}
	if cvs == nil {
		cvs = []model.CV{}
	}
	return &OfferDetails{Offer: *offer, Stats: review.ComputeStats(cvs), CVs: cvs}, nil
}

// ─── Scoring ─────────────────────────────────────────────────────────────────

// RescoreOffer recomputes the derived fields of every CV attached to the
// offer and returns how many rows changed. An offer deleted in the meantime
// rescores nothing.
func (s *Service) RescoreOffer(ctx context.Context, offerID int64) (int, error) {
	n, err := s.store.RescoreJobOffer(ctx, offerID, scoreCV)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rescore offer %d: %w", offerID, err)
	}
	return n, nil
}

// RescoreAll walks every offer in the store and rescores its CVs. It
// returns the total number of CVs whose derived fields changed.
func (s *Service) RescoreAll(ctx context.Context) (int, error) {
	offers, err := s.store.ListJobOffers(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list job offers: %w", err)
	}

	total := 0
	for i := range offers {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.RescoreOffer(ctx, offers[i].ID)
		if err != nil {
			return total, err
		}
		if n > 0 {
			s.log.Info("rescored offer", zap.Int64("offer_id", offers[i].ID), zap.Int("changed", n))
		}
		total += n
	}
	return total, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Service) mustGetOffer(ctx context.Context, userID string, id int64) (*model.JobOffer, error) {
	offer, err := s.GetJobOffer(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrNotFound
	}
	return offer, nil
}

func (s *Service) description(d *string) (*string, error) {
	if d == nil {
		return nil, nil
	}
	v, err := s.sanitize.field("description", *d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scoreCV(cvKeywords, offerKeywords []string) (matched, percentage int) {
	r := matching.Score(cvKeywords, offerKeywords)
	return r.Matched, r.Percentage
}
