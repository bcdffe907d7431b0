// Package records owns the monthly work/salary records.
package records

import (
	"context"
	"sort"
	"time"

	"github.com/lemroudj/factory-backend/internal/common"
	"github.com/lemroudj/factory-backend/internal/server/models"
	"github.com/lemroudj/factory-backend/internal/server/storage"
)

type Service struct {
	store storage.Store
	now   func() time.Time
}

func NewService(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateParams carries a validated record creation request. Zero values for
// the numeric fields are legitimate; presence is the transport's concern.
type CreateParams struct {
	UserID     int64
	Month      int
	Year       int
	DaysWorked int
	Salary     float64
	Expenses   float64
	Notes      string
}

// ListForUser returns the user's records, most recent first: year
// descending, ties broken by month descending.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]models.Record, error) {
	out := []models.Record{}
	err := s.store.View(ctx, func(d *storage.Data) error {
		for _, r := range d.Records {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// ListAll returns every record in stored order.
func (s *Service) ListAll(ctx context.Context) ([]models.Record, error) {
	out := []models.Record{}
	err := s.store.View(ctx, func(d *storage.Data) error {
		out = append(out, d.Records...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create appends a record with a records-scoped max+1 id and the creation
// instant in Unix milliseconds.
func (s *Service) Create(ctx context.Context, p CreateParams) (models.Record, error) {
	if p.UserID <= 0 {
		return models.Record{}, common.ErrValidation
	}

	var created models.Record
	err := s.store.Update(ctx, func(d *storage.Data) error {
		created = models.Record{
			ID:         nextRecordID(d.Records),
			UserID:     p.UserID,
			Month:      p.Month,
			Year:       p.Year,
			DaysWorked: p.DaysWorked,
			Salary:     p.Salary,
			Expenses:   p.Expenses,
			Notes:      p.Notes,
			Timestamp:  s.now().UnixMilli(),
		}
		d.Records = append(d.Records, created)
		return nil
	})
	if err != nil {
		return models.Record{}, err
	}
	return created, nil
}

func nextRecordID(records []models.Record) int64 {
	var max int64
	for _, r := range records {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}
