package expert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/dates"
)

// Week statuses.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Months lists month names in calendar order. Plans whose month is not in
// this list sort after all known months of the same year.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthIndex(name string) int {
	for i, m := range Months {
		if strings.EqualFold(m, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func weekLabel(n int) string {
	return fmt.Sprintf("Week %d", n)
}

// WeekInput is the editable content of a weekly entry. A zero WeekNumber
// means "next number" when adding and "keep the current number" when editing.
type WeekInput struct {
	WeekNumber  int    `json:"weekNumber"`
	WeekLabel   string `json:"weekLabel"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Plan        string `json:"plan"`
	Achievement string `json:"achievement"`
	Additional  string `json:"additional"`
	Remarks     string `json:"remarks"`
	Status      string `json:"status"`
}

// ActiveWeek locates the week of the current plan that contains a given day.
type ActiveWeek struct {
	PlanIndex int          `json:"planIndex"`
	Plan      *MonthlyPlan `json:"plan"`
	WeekIndex int          `json:"weekIndex"`
	Week      *WeeklyEntry `json:"week"`
}

// AddMonth appends an empty, non-current plan and returns its index.
func (e *Expert) AddMonth(month string, year int) (int, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return 0, apperr.Validation("month is required")
	}
	if year <= 0 {
		return 0, apperr.Validation("year must be positive")
	}

	e.Plans = append(e.Plans, MonthlyPlan{Month: month, Year: year, Weeks: []WeeklyEntry{}})
	return len(e.Plans) - 1, nil
}

// SetCurrent marks plan i as the only current plan.
func (e *Expert) SetCurrent(i int) error {
	if err := e.checkPlan(i); err != nil {
		return err
	}
	for j := range e.Plans {
		e.Plans[j].IsCurrent = j == i
	}
	return nil
}

// SaveWeek adds a week to plan planIdx, or replaces week *weekIdx when
// weekIdx is non-nil. The plan's weeks are then stably sorted by week number
// and the entry's index after sorting is returned.
func (e *Expert) SaveWeek(planIdx int, weekIdx *int, in WeekInput) (int, error) {
	if err := e.checkPlan(planIdx); err != nil {
		return 0, err
	}
	plan := &e.Plans[planIdx]
	if weekIdx != nil {
		if err := checkWeek(plan, *weekIdx); err != nil {
			return 0, err
		}
	}

	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" {
		return 0, apperr.Validation("startDate and endDate are required")
	}
	start, err := dates.Normalize(in.StartDate)
	if err != nil {
		return 0, apperr.Validation("startDate: %v", err)
	}
	end, err := dates.Normalize(in.EndDate)
	if err != nil {
		return 0, apperr.Validation("endDate: %v", err)
	}

	entry := WeeklyEntry{
		WeekNumber:  in.WeekNumber,
		WeekLabel:   in.WeekLabel,
		StartDate:   start,
		EndDate:     end,
		Plan:        in.Plan,
		Achievement: in.Achievement,
		Additional:  in.Additional,
		Remarks:     in.Remarks,
		Status:      in.Status,
	}

	var pos int
	if weekIdx == nil {
		if entry.WeekNumber <= 0 {
			entry.WeekNumber = len(plan.Weeks) + 1
		}
		plan.Weeks = append(plan.Weeks, entry)
		pos = len(plan.Weeks) - 1
	} else {
		if entry.WeekNumber <= 0 {
			entry.WeekNumber = plan.Weeks[*weekIdx].WeekNumber
		}
		plan.Weeks[*weekIdx] = entry
		pos = *weekIdx
	}
	if entry.WeekLabel == "" {
		plan.Weeks[pos].WeekLabel = weekLabel(entry.WeekNumber)
	}
	if entry.Status == "" {
		plan.Weeks[pos].Status = StatusPending
	}

	return sortWeeks(plan, pos), nil
}

// sortWeeks stably orders the weeks by number and returns the new index of
// the entry that was at pos.
func sortWeeks(plan *MonthlyPlan, pos int) int {
	order := make([]int, len(plan.Weeks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return plan.Weeks[order[a]].WeekNumber < plan.Weeks[order[b]].WeekNumber
	})

	sorted := make([]WeeklyEntry, len(plan.Weeks))
	newPos := pos
	for i, j := range order {
		sorted[i] = plan.Weeks[j]
		if j == pos {
			newPos = i
		}
	}
	plan.Weeks = sorted
	return newPos
}

// DeleteWeek removes week weekIdx from plan planIdx.
func (e *Expert) DeleteWeek(planIdx, weekIdx int) error {
	if err := e.checkPlan(planIdx); err != nil {
		return err
	}
	plan := &e.Plans[planIdx]
	if err := checkWeek(plan, weekIdx); err != nil {
		return err
	}

	weeks := make([]WeeklyEntry, 0, len(plan.Weeks)-1)
	weeks = append(weeks, plan.Weeks[:weekIdx]...)
	plan.Weeks = append(weeks, plan.Weeks[weekIdx+1:]...)
	return nil
}

// DisplayOrder returns plan indexes sorted by year descending, then month
// descending.
func (e *Expert) DisplayOrder() []int {
	order := make([]int, len(e.Plans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := e.Plans[order[a]], e.Plans[order[b]]
		if pa.Year != pb.Year {
			return pa.Year > pb.Year
		}
		return monthIndex(pa.Month) > monthIndex(pb.Month)
	})
	return order
}

// CurrentPlan returns the index of the first plan in display order flagged
// as current, falling back to the first plan in display order. ok is false
// when there are no plans.
func (e *Expert) CurrentPlan() (idx int, ok bool) {
	order := e.DisplayOrder()
	if len(order) == 0 {
		return 0, false
	}
	for _, i := range order {
		if e.Plans[i].IsCurrent {
			return i, true
		}
	}
	return order[0], true
}

// ActiveWeek finds the week of the current plan whose inclusive date range
// contains day. When several weeks match, the last one wins. Week is nil
// when no week matches; ok is false when there is no plan at all.
func (e *Expert) ActiveWeek(day time.Time) (ActiveWeek, bool) {
	pi, ok := e.CurrentPlan()
	if !ok {
		return ActiveWeek{PlanIndex: -1, WeekIndex: -1}, false
	}

	plan := &e.Plans[pi]
	aw := ActiveWeek{PlanIndex: pi, Plan: plan, WeekIndex: -1}
	day = dates.Day(day)
	for i := range plan.Weeks {
		w := &plan.Weeks[i]
		start, err := dates.Parse(w.StartDate)
		if err != nil {
			continue
		}
		end, err := dates.Parse(w.EndDate)
		if err != nil {
			continue
		}
		if !day.Before(start) && !day.After(end) {
			aw.WeekIndex = i
			aw.Week = w
		}
	}
	return aw, true
}

func (e *Expert) checkPlan(i int) error {
	if i < 0 || i >= len(e.Plans) {
		return apperr.NotFound("Plan", fmt.Sprint(i))
	}
	return nil
}

func checkWeek(p *MonthlyPlan, i int) error {
	if i < 0 || i >= len(p.Weeks) {
		return apperr.NotFound("Week", fmt.Sprint(i))
	}
	return nil
}
