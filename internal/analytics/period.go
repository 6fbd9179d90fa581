package analytics

import (
	"fmt"
	"time"

	"github.com/rocjay1/rm-finance/internal/models"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewPeriod normalizes start and end to dates and rejects an end before the start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: models.DateOf(start), End: models.DateOf(end)}
	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("%w: end %s is before start %s", models.ErrInvalidPeriod,
			p.End.Format(models.DateLayout), p.Start.Format(models.DateLayout))
	}
	return p, nil
}

// Days is the inclusive length of the period.
func (p Period) Days() int {
	return models.DaysBetween(p.Start, p.End) + 1
}

// Previous is the window of equal length that ends the day before p starts.
func (p Period) Previous() Period {
	n := models.DaysBetween(p.Start, p.End)
	return Period{
		Start: p.Start.AddDate(0, 0, -(n + 1)),
		End:   p.Start.AddDate(0, 0, -1),
	}
}

// Contains reports whether t falls on a day inside p.
func (p Period) Contains(t time.Time) bool {
	d := models.DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Union is the smallest period covering both p and q.
func (p Period) Union(q Period) Period {
	out := p
	if q.Start.Before(out.Start) {
		out.Start = q.Start
	}
	if q.End.After(out.End) {
		out.End = q.End
	}
	return out
}

// TrendWindow runs from the first day of the month monthsBack-1 months
// before today through today.
func TrendWindow(today time.Time, monthsBack int) Period {
	today = models.DateOf(today)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: first.AddDate(0, -(monthsBack - 1), 0), End: today}
}

func filter(transactions []models.Transaction, p Period) []models.Transaction {
	var out []models.Transaction
	for _, t := range transactions {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
