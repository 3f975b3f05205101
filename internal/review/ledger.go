package review

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"hrhelper/recruiter-service/internal/model"
)

// ApplyStatusChange returns a copy of cvs where the record with cvID has its
// status replaced by newStatus. Every other record is unchanged. An unknown
// cvID, or a target that is not accepted/rejected, yields an unchanged copy.
func ApplyStatusChange(cvs []model.CV, cvID int64, newStatus Status) []model.CV {
	out := slices.Clone(cvs)
	if !IsTarget(newStatus) {
		return out
	}
	for i := range out {
		if out[i].ID == cvID {
			if IsTransitionAllowed(out[i].Status, newStatus) {
				out[i].Status = newStatus
			}
			break
		}
	}
	return out
}

// ComputeStats counts cvs by status.
func ComputeStats(cvs []model.CV) model.JobOfferStats {
	stats := model.JobOfferStats{TotalCVs: len(cvs)}
	for _, cv := range cvs {
		switch cv.Status {
		case StatusAccepted:
			stats.Accepted++
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// Persister durably records a status change. It is usually backed by the
// recruiting service.
type Persister interface {
	SetCVStatus(ctx context.Context, cvID int64, status Status) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, cvID int64, status Status) error

func (f PersisterFunc) SetCVStatus(ctx context.Context, cvID int64, status Status) error {
	return f(ctx, cvID, status)
}

// Ledger is the in-memory view of one job offer's CVs and their stats,
// owned by a single session. Transitions are applied optimistically and
// rolled back when the persister fails.
type Ledger struct {
	mu    sync.Mutex
	cvs   []model.CV
	stats model.JobOfferStats
}

// NewLedger builds a ledger over a copy of cvs.
func NewLedger(cvs []model.CV) *Ledger {
	l := &Ledger{cvs: slices.Clone(cvs)}
	l.stats = ComputeStats(l.cvs)
	return l
}

// CVs returns a copy of the current records.
func (l *Ledger) CVs() []model.CV {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.cvs)
}

// Stats returns the current projection.
func (l *Ledger) Stats() model.JobOfferStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Transition moves cvID to status. The local state is updated before p is
// called and restored if p returns an error. An id the ledger does not hold
// is a no-op and p is not called. Calls on the same ledger are serialized,
// so the last call to return wins.
func (l *Ledger) Transition(ctx context.Context, p Persister, cvID int64, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !slices.ContainsFunc(l.cvs, func(cv model.CV) bool { return cv.ID == cvID }) {
		return nil
	}

	prevCVs, prevStats := l.cvs, l.stats

	l.cvs = ApplyStatusChange(l.cvs, cvID, status)
	l.stats = ComputeStats(l.cvs)

	if err := p.SetCVStatus(ctx, cvID, status); err != nil {
		l.cvs, l.stats = prevCVs, prevStats
		return fmt.Errorf("persist status of cv %d: %w", cvID, err)
	}
	return nil
}
