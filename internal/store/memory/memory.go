// Package memory is an in-process store.Store. It backs `serve --storage
// memory` and the service tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/store"
)

// Store keeps every record in maps guarded by a single RWMutex.
type Store struct {
	mu      sync.RWMutex
	offers  map[int64]model.JobOffer
	cvs     map[int64]model.CV
	users   map[uuid.UUID]model.User
	offerID int64
	cvID    int64
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		offers: make(map[int64]model.JobOffer),
		cvs:    make(map[int64]model.CV),
		users:  make(map[uuid.UUID]model.User),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ─── Job offers ──────────────────────────────────────────────────────────────

func (s *Store) CreateJobOffer(_ context.Context, offer *model.JobOffer) (*model.JobOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := uuid.Parse(offer.UserID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	if _, ok := s.users[uid]; !ok {
		return nil, store.ErrNotFound
	}
	s.offerID++
	o := cloneOffer(*offer)
	o.ID = s.offerID
	o.CreatedAt = s.now()
	s.offers[o.ID] = o

	out := cloneOffer(o)
	return &out, nil
}

func (s *Store) ListJobOffers(_ context.Context, userID string) ([]model.JobOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]model.JobOffer, 0, len(s.offers))
	for _, o := range s.offers {
		if userID != "" && o.UserID != userID {
			continue
		}
		offers = append(offers, cloneOffer(o))
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].ID > offers[j].ID })
	return offers, nil
}

func (s *Store) GetJobOffer(_ context.Context, userID string, id int64) (*model.JobOffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.offers[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return nil, store.ErrNotFound
	}
	out := cloneOffer(o)
	return &out, nil
}

func (s *Store) UpdateJobOffer(_ context.Context, offer *model.JobOffer, score store.ScoreFunc) (*model.JobOffer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.offers[offer.ID]
	if !ok || cur.UserID != offer.UserID {
		return nil, 0, store.ErrNotFound
	}
	cur.Title = offer.Title
	cur.Description = cloneString(offer.Description)
	cur.Keywords = slices.Clone(offer.Keywords)
	s.offers[cur.ID] = cur

	changed := 0
	if score != nil {
		changed = s.rescoreLocked(cur, score)
	}
	out := cloneOffer(cur)
	return &out, changed, nil
}

func (s *Store) RescoreJobOffer(_ context.Context, id int64, score store.ScoreFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	return s.rescoreLocked(o, score), nil
}

// rescoreLocked rewrites the derived fields of offer's CVs. s.mu must be held
// for writing.
func (s *Store) rescoreLocked(offer model.JobOffer, score store.ScoreFunc) int {
	changed := 0
	for id, cv := range s.cvs {
		if cv.JobOfferID != offer.ID {
			continue
		}
		m, p := score(cv.Keywords, offer.Keywords)
		if cv.MatchedKeywordsCount != nil && cv.MatchPercentage != nil &&
			*cv.MatchedKeywordsCount == m && *cv.MatchPercentage == p {
			continue
		}
		cv.MatchedKeywordsCount = &m
		cv.MatchPercentage = &p
		s.cvs[id] = cv
		changed++
	}
	return changed
}

func (s *Store) DeleteJobOffer(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return store.ErrNotFound
	}
	delete(s.offers, id)
	for cvID, cv := range s.cvs {
		if cv.JobOfferID == id {
			delete(s.cvs, cvID)
		}
	}
	return nil
}

// ─── CVs ─────────────────────────────────────────────────────────────────────

func (s *Store) CreateCV(_ context.Context, cv *model.CV, score store.ScoreFunc) (*model.CV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[cv.JobOfferID]
	if !ok {
		return nil, store.ErrNotFound
	}
	s.cvID++
	c := cloneCV(*cv)
	if score != nil {
		m, p := score(c.Keywords, offer.Keywords)
		c.MatchedKeywordsCount = &m
		c.MatchPercentage = &p
	}
	c.ID = s.cvID
	c.CreatedAt = s.now()
	if c.Status == "" {
		c.Status = model.StatusNew
	}
	s.cvs[c.ID] = c

	out := cloneCV(c)
	return &out, nil
}

func (s *Store) ListCVs(_ context.Context, jobOfferID int64, status model.Status) ([]model.CV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cvs := make([]model.CV, 0)
	for _, cv := range s.cvs {
		if cv.JobOfferID != jobOfferID {
			continue
		}
		if status != "" && cv.Status != status {
			continue
		}
		cvs = append(cvs, cloneCV(cv))
	}
	sort.Slice(cvs, func(i, j int) bool { return cvs[i].ID < cvs[j].ID })
	return cvs, nil
}

func (s *Store) GetCV(_ context.Context, jobOfferID, id int64) (*model.CV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cv, ok := s.cvs[id]
	if !ok || cv.JobOfferID != jobOfferID {
		return nil, store.ErrNotFound
	}
	out := cloneCV(cv)
	return &out, nil
}

func (s *Store) UpdateCVStatus(_ context.Context, jobOfferID, id int64, status model.Status) (*model.CV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cv, ok := s.cvs[id]
	if !ok || cv.JobOfferID != jobOfferID {
		return nil, store.ErrNotFound
	}
	cv.Status = status
	s.cvs[id] = cv

	out := cloneCV(cv)
	return &out, nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, store.ErrConflict
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return nil, store.ErrConflict
	}
	c := *u
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = s.now()
	s.users[c.ID] = c

	out := c
	return &out, nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)

	uid := id.String()
	for offerID, o := range s.offers {
		if o.UserID != uid {
			continue
		}
		delete(s.offers, offerID)
		for cvID, cv := range s.cvs {
			if cv.JobOfferID == offerID {
				delete(s.cvs, cvID)
			}
		}
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func cloneOffer(o model.JobOffer) model.JobOffer {
	o.Description = cloneString(o.Description)
	o.Keywords = slices.Clone(o.Keywords)
	return o
}

func cloneCV(cv model.CV) model.CV {
	cv.Keywords = slices.Clone(cv.Keywords)
	cv.MatchPercentage = cloneInt(cv.MatchPercentage)
	cv.MatchedKeywordsCount = cloneInt(cv.MatchedKeywordsCount)
	return cv
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
