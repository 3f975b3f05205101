// Package fixtures loads YAML seed data and writes it through the
// recruiting service so every CV is scored like a real submission.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/review"
)

//go:embed sample.yaml
var sample []byte

// File is a seed document.
type File struct {
	Offers []Offer `yaml:"offers"`
}

// Offer is a job offer together with the CVs submitted to it.
type Offer struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	CVs         []CV     `yaml:"cvs"`
}

// CV is one candidate. Status defaults to new.
type CV struct {
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Keywords  []string `yaml:"keywords"`
	Status    string   `yaml:"status"`
}

// Seeder is the subset of recruiting.Service used to write fixtures.
type Seeder interface {
	CreateJobOffer(ctx context.Context, in model.JobOfferCreate) (*model.JobOffer, error)
	CreateCV(ctx context.Context, userID string, offerID int64, in model.CVCreate) (*model.CV, error)
	MoveCV(ctx context.Context, userID string, offerID, cvID int64, status string) (*model.CV, error)
}

// Result counts what Seed created.
type Result struct {
	Offers int
	CVs    int
}

// Sample returns the built-in demo data.
func Sample() (*File, error) {
	return Parse(bytes.NewReader(sample))
}

// LoadFile parses the seed document at path.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	for i, o := range f.Offers {
		if strings.TrimSpace(o.Title) == "" {
			return fmt.Errorf("offers[%d]: title is required", i)
		}
		for j, cv := range o.CVs {
			if cv.Status == "" {
				continue
			}
			if _, err := review.ParseStatus(cv.Status); err != nil {
				return fmt.Errorf("offers[%d].cvs[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// Seed creates every offer and CV in f on behalf of userID.
func Seed(ctx context.Context, s Seeder, userID string, f *File) (Result, error) {
	var res Result
	for _, o := range f.Offers {
		in := model.JobOfferCreate{
			UserID:   userID,
			Title:    o.Title,
			Keywords: o.Keywords,
		}
		if o.Description != "" {
			d := o.Description
			in.Description = &d
		}
		offer, err := s.CreateJobOffer(ctx, in)
		if err != nil {
			return res, fmt.Errorf("create offer %q: %w", o.Title, err)
		}
		res.Offers++

		for _, c := range o.CVs {
			cv, err := s.CreateCV(ctx, userID, offer.ID, model.CVCreate{
				FirstName: c.FirstName,
				LastName:  c.LastName,
				Keywords:  c.Keywords,
			})
			if err != nil {
				return res, fmt.Errorf("create cv %s %s: %w", c.FirstName, c.LastName, err)
			}
			res.CVs++

			if c.Status != "" && model.Status(c.Status) != model.StatusNew {
				if _, err := s.MoveCV(ctx, userID, offer.ID, cv.ID, c.Status); err != nil {
					return res, fmt.Errorf("move cv %d to %s: %w", cv.ID, c.Status, err)
				}
			}
		}
	}
	return res, nil
}
