// Package postgres implements store.Store on top of a pgxpool connection
// pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/store"
)

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const offerColumns = `id, user_id::text, title, description, keywords, created_at`

const cvColumns = `id, job_offer_id, first_name, last_name, keywords,
	match_percentage, matched_keywords_count, status::text, created_at`

// ─── Job offers ──────────────────────────────────────────────────────────────

func (s *Store) CreateJobOffer(ctx context.Context, offer *model.JobOffer) (*model.JobOffer, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO job_offers (user_id, title, description, keywords)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING `+offerColumns,
		offer.UserID, offer.Title, offer.Description, offer.Keywords,
	)
	o, err := scanOffer(row)
	if err != nil {
		return nil, fmt.Errorf("createJobOffer: %w", mapErr(err))
	}
	return o, nil
}

func (s *Store) ListJobOffers(ctx context.Context, userID string) ([]model.JobOffer, error) {
	var (
		rows pgx.Rows
		err  error
	)
	const base = `SELECT ` + offerColumns + ` FROM job_offers`
	if userID != "" {
		rows, err = s.pool.Query(ctx, base+` WHERE user_id = $1::uuid ORDER BY created_at DESC, id DESC`, userID)
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY created_at DESC, id DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("listJobOffers query: %w", err)
	}
	defer rows.Close()

	offers := make([]model.JobOffer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("listJobOffers scan: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (s *Store) GetJobOffer(ctx context.Context, userID string, id int64) (*model.JobOffer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM job_offers
		 WHERE id = $1 AND ($2 = '' OR user_id::text = $2)`,
		id, userID,
	)
	o, err := scanOffer(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (s *Store) UpdateJobOffer(ctx context.Context, offer *model.JobOffer, score store.ScoreFunc) (*model.JobOffer, int, error) {
	var (
		out     *model.JobOffer
		changed int
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE job_offers
			 SET title = $1, description = $2, keywords = $3
			 WHERE id = $4 AND user_id = $5::uuid
			 RETURNING `+offerColumns,
			offer.Title, offer.Description, offer.Keywords, offer.ID, offer.UserID,
		)
		o, err := scanOffer(row)
		if err != nil {
			return err
		}
		out = o
		if score == nil {
			return nil
		}
		// The UPDATE holds the offer row lock until commit.
		changed, err = rescoreTx(ctx, tx, o.ID, o.Keywords, score)
		return err
	})
	if err != nil {
		return nil, 0, mapErr(err)
	}
	return out, changed, nil
}

func (s *Store) RescoreJobOffer(ctx context.Context, id int64, score store.ScoreFunc) (int, error) {
	var changed int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var keywords []string
		if err := tx.QueryRow(ctx,
			`SELECT keywords FROM job_offers WHERE id = $1 FOR UPDATE`, id,
		).Scan(&keywords); err != nil {
			return err
		}
		n, err := rescoreTx(ctx, tx, id, keywords, score)
		changed = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("rescoreJobOffer %d: %w", id, mapErr(err))
	}
	return changed, nil
}

// rescoreTx rewrites the derived fields of the offer's CVs that differ from
// score. The caller must hold the offer row lock.
func rescoreTx(ctx context.Context, tx pgx.Tx, offerID int64, offerKeywords []string, score store.ScoreFunc) (int, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, keywords, matched_keywords_count, match_percentage
		 FROM cvs WHERE job_offer_id = $1 ORDER BY id FOR UPDATE`,
		offerID,
	)
	if err != nil {
		return 0, fmt.Errorf("select cvs: %w", err)
	}

	type scored struct {
		id         int64
		matched    int
		percentage int
	}
	var updates []scored
	for rows.Next() {
		var (
			id       int64
			keywords []string
			matched  *int
			pct      *int
		)
		if err := rows.Scan(&id, &keywords, &matched, &pct); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cv: %w", err)
		}
		m, p := score(keywords, offerKeywords)
		if matched != nil && pct != nil && *matched == m && *pct == p {
			continue
		}
		updates = append(updates, scored{id: id, matched: m, percentage: p})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select cvs: %w", err)
	}

	for _, u := range updates {
		if _, err := tx.Exec(ctx,
			`UPDATE cvs SET matched_keywords_count = $1, match_percentage = $2 WHERE id = $3`,
			u.matched, u.percentage, u.id,
		); err != nil {
			return 0, fmt.Errorf("update cv %d scores: %w", u.id, err)
		}
	}
	return len(updates), nil
}

func (s *Store) DeleteJobOffer(ctx context.Context, userID string, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM job_offers WHERE id = $1 AND ($2 = '' OR user_id::text = $2)`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleteJobOffer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ─── CVs ─────────────────────────────────────────────────────────────────────

func (s *Store) CreateCV(ctx context.Context, cv *model.CV, score store.ScoreFunc) (*model.CV, error) {
	status := cv.Status
	if status == "" {
		status = model.StatusNew
	}
	matched, percentage := cv.MatchedKeywordsCount, cv.MatchPercentage

	var out *model.CV
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if score != nil {
			// FOR SHARE blocks a concurrent keyword update until this CV is
			// in, so the rescore that follows sees it.
			var offerKeywords []string
			if err := tx.QueryRow(ctx,
				`SELECT keywords FROM job_offers WHERE id = $1 FOR SHARE`, cv.JobOfferID,
			).Scan(&offerKeywords); err != nil {
				return err
			}
			m, p := score(cv.Keywords, offerKeywords)
			matched, percentage = &m, &p
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO cvs (job_offer_id, first_name, last_name, keywords,
			                  match_percentage, matched_keywords_count, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7::cv_status)
			 RETURNING `+cvColumns,
			cv.JobOfferID, cv.FirstName, cv.LastName, cv.Keywords,
			percentage, matched, string(status),
		)
		c, err := scanCV(row)
		out = c
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("createCV: %w", mapErr(err))
	}
	return out, nil
}

func (s *Store) ListCVs(ctx context.Context, jobOfferID int64, status model.Status) ([]model.CV, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+cvColumns+` FROM cvs
		 WHERE job_offer_id = $1 AND ($2 = '' OR status::text = $2)
		 ORDER BY id`,
		jobOfferID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("listCVs query: %w", err)
	}
	defer rows.Close()

	cvs := make([]model.CV, 0)
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, fmt.Errorf("listCVs scan: %w", err)
		}
		cvs = append(cvs, *cv)
	}
	return cvs, rows.Err()
}

func (s *Store) GetCV(ctx context.Context, jobOfferID, id int64) (*model.CV, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+cvColumns+` FROM cvs WHERE id = $1 AND job_offer_id = $2`,
		id, jobOfferID,
	)
	cv, err := scanCV(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return cv, nil
}

func (s *Store) UpdateCVStatus(ctx context.Context, jobOfferID, id int64, status model.Status) (*model.CV, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE cvs SET status = $1::cv_status
		 WHERE id = $2 AND job_offer_id = $3
		 RETURNING `+cvColumns,
		string(status), id, jobOfferID,
	)
	cv, err := scanCV(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return cv, nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

const userColumns = `id::text, email, password_hash, created_at`

func (s *Store) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	id := u.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1::uuid, $2, $3)
		 RETURNING `+userColumns,
		id.String(), u.Email, u.PasswordHash,
	)
	out, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("createUser: %w", mapErr(err))
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id.String())
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("listUsers query: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("listUsers scan: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2::uuid`, passwordHash, id.String())
	if err != nil {
		return fmt.Errorf("updateUserPassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("deleteUser: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func scanOffer(row pgx.Row) (*model.JobOffer, error) {
	var o model.JobOffer
	if err := row.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &o.Keywords, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanCV(row pgx.Row) (*model.CV, error) {
	var (
		cv     model.CV
		status string
	)
	if err := row.Scan(
		&cv.ID, &cv.JobOfferID, &cv.FirstName, &cv.LastName, &cv.Keywords,
		&cv.MatchPercentage, &cv.MatchedKeywordsCount, &status, &cv.CreatedAt,
	); err != nil {
		return nil, err
	}
	cv.Status = model.Status(status)
	return &cv, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u  model.User
		id string
	)
	if err := row.Scan(&id, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", id, err)
	}
	u.ID = parsed
	return &u, nil
}

// mapErr turns driver errors into store sentinels.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return store.ErrConflict
		case "23503": // foreign_key_violation
			return store.ErrNotFound
		}
	}
	return err
}
