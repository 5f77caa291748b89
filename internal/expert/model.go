// Package expert provides the subject-matter expert model, its nested
// monthly/weekly work plans, and data access.
package expert

import (
	"time"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/dates"
)

// Stats are counters kept on the expert document. They are set directly and
// are not derived from visit records.
type Stats struct {
	EventsAttended    int `json:"eventsAttended"`
	RegistrationsDone int `json:"registrationsDone"`
	MomsCreated       int `json:"momsCreated"`
}

// WeeklyEntry is one week of a monthly plan.
type WeeklyEntry struct {
	WeekNumber  int    `json:"weekNumber"`
	WeekLabel   string `json:"weekLabel"`
	StartDate   string `json:"startDate"` // YYYY-MM-DD, inclusive
	EndDate     string `json:"endDate"`   // YYYY-MM-DD, inclusive
	Plan        string `json:"plan"`      // newline-separated bullets
	Achievement string `json:"achievement"`
	Additional  string `json:"additional"`
	Remarks     string `json:"remarks"`
	Status      string `json:"status"`
}

// MonthlyPlan groups the weekly entries for one month.
type MonthlyPlan struct {
	Month     string        `json:"month"`
	Year      int           `json:"year"`
	IsCurrent bool          `json:"isCurrent"`
	Weeks     []WeeklyEntry `json:"weeks"`
}

// MoM is a minutes-of-meeting entry.
type MoM struct {
	Date      string   `json:"date"`
	EventName string   `json:"eventName"`
	Location  string   `json:"location"`
	Summary   string   `json:"summary"`
	Attendees []string `json:"attendees"`
}

// Expert is a subject-matter consultant tracked with plans and meeting minutes.
type Expert struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Designation  string        `json:"designation"`
	Expertise    []string      `json:"expertise"`
	Contact      string        `json:"contact"`
	ProfileImage string        `json:"profileImage"`
	Stats        Stats         `json:"stats"`
	Plans        []MonthlyPlan `json:"plans"`
	Moms         []MoM         `json:"moms"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Patch is a partial update of top-level expert fields; nil fields are unchanged.
type Patch struct {
	Name         *string        `json:"name"`
	Designation  *string        `json:"designation"`
	Expertise    *[]string      `json:"expertise"`
	Contact      *string        `json:"contact"`
	ProfileImage *string        `json:"profileImage"`
	Stats        *Stats         `json:"stats"`
	Plans        *[]MonthlyPlan `json:"plans"`
	Moms         *[]MoM         `json:"moms"`
}

// Apply copies the non-nil patch fields onto e.
func (p Patch) Apply(e *Expert) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Designation != nil {
		e.Designation = *p.Designation
	}
	if p.Expertise != nil {
		e.Expertise = *p.Expertise
	}
	if p.Contact != nil {
		e.Contact = *p.Contact
	}
	if p.ProfileImage != nil {
		e.ProfileImage = *p.ProfileImage
	}
	if p.Stats != nil {
		e.Stats = *p.Stats
	}
	if p.Plans != nil {
		e.Plans = *p.Plans
	}
	if p.Moms != nil {
		e.Moms = *p.Moms
	}
}

// prepare validates e and normalizes it for storage: nil collections become
// empty, dates become YYYY-MM-DD, and weeks get their default label and status.
func (e *Expert) prepare() error {
	if e.Name == "" {
		return apperr.Validation("name is required")
	}

	if e.Expertise == nil {
		e.Expertise = []string{}
	}
	if e.Plans == nil {
		e.Plans = []MonthlyPlan{}
	}
	if e.Moms == nil {
		e.Moms = []MoM{}
	}

	for i := range e.Plans {
		p := &e.Plans[i]
		if p.Weeks == nil {
			p.Weeks = []WeeklyEntry{}
		}
		for j := range p.Weeks {
			if err := p.Weeks[j].normalize(); err != nil {
				return apperr.Validation("plan %d week %d: %v", i, j, err)
			}
		}
	}

	for i := range e.Moms {
		m := &e.Moms[i]
		if m.Date == "" {
			m.Date = dates.Today().Format(dates.Layout)
		} else {
			d, err := dates.Normalize(m.Date)
			if err != nil {
				return apperr.Validation("mom %d: %v", i, err)
			}
			m.Date = d
		}
		if m.Attendees == nil {
			m.Attendees = []string{}
		}
	}

	return nil
}

func (w *WeeklyEntry) normalize() error {
	for _, d := range []*string{&w.StartDate, &w.EndDate} {
		if *d == "" {
			continue
		}
		n, err := dates.Normalize(*d)
		if err != nil {
			return err
		}
		*d = n
	}
	if w.WeekLabel == "" && w.WeekNumber > 0 {
		w.WeekLabel = weekLabel(w.WeekNumber)
	}
	if w.Status == "" {
		w.Status = StatusPending
	}
	return nil
}
