package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bfcwefc/msme-desk/internal/expert"
	"github.com/bfcwefc/msme-desk/internal/record"
	"github.com/bfcwefc/msme-desk/internal/stats"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecordSummary prints a single visit record in text format.
func printRecordSummary(w io.Writer, r *record.VisitRecord) {
	fmt.Fprintf(w, "Record %s\n", r.ID)
	fmt.Fprintf(w, "  Date:      %s\n", r.DateOfVisit)
	fmt.Fprintf(w, "  Business:  %s\n", dash(r.BusinessName))
	fmt.Fprintf(w, "  Visitor:   %s\n", dash(r.VisitorName))
	if r.ContactNumber != "" || r.Email != "" {
		fmt.Fprintf(w, "  Contact:   %s\n", strings.TrimSpace(r.ContactNumber+" "+r.Email))
	}
	fmt.Fprintf(w, "  Address:   %s\n", dash(r.Address))
	fmt.Fprintf(w, "  Area:      %s\n", r.Area)
	fmt.Fprintf(w, "  Type:      %s\n", dash(r.EnterpriseType))
	fmt.Fprintf(w, "  Sector:    %s\n", dash(r.Sector))
	fmt.Fprintf(w, "  Purpose:   %s\n", dash(r.PurposeOfVisit))
	fmt.Fprintf(w, "  Experts:   %s\n", dash(strings.Join(r.ExpertName.Names(), ", ")))
	fmt.Fprintf(w, "  Status:    %s\n", r.Status)
	if r.SupportDetails != "" {
		fmt.Fprintf(w, "  Support:   %s\n", r.SupportDetails)
	}
	if r.FollowUpAction != "" {
		fmt.Fprintf(w, "  Follow-up: %s\n", r.FollowUpAction)
	}
	if paths := record.PhotoPaths(r.Photos); len(paths) > 0 {
		fmt.Fprintf(w, "  Photos:    %s\n", strings.Join(paths, ", "))
	}
	if note := record.LegacyPhotoNote(r.Photos); note != "" {
		fmt.Fprintf(w, "  Photo note: %s\n", note)
	}
}

// printRecordTable prints visit records as a formatted table.
func printRecordTable(out io.Writer, recs []*record.VisitRecord) error {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No records found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tBUSINESS\tAREA\tSECTOR\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t--------\t----\t------\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.DateOfVisit, truncate(dash(r.BusinessName), 32), r.Area,
			truncate(dash(r.Sector), 20), r.Status); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d records\n", len(recs))
	return nil
}

// printGlobalStats prints the dashboard counts.
func printGlobalStats(w io.Writer, g *stats.Global) {
	fmt.Fprintf(w, "Total:    %d\n", g.Total)
	fmt.Fprintf(w, "Resolved: %d\n", g.Resolved)
	fmt.Fprintf(w, "Pending:  %d\n", g.Pending)
	printNameValues(w, "By area", g.Area)
	printNameValues(w, "By sector", g.Sector)
	printNameValues(w, "By recorded sector", g.SectorRaw)
}

func printNameValues(w io.Writer, title string, values []stats.NameValue) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(values) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, v := range values {
		fmt.Fprintf(w, "  %-24s %d\n", v.Name, v.Value)
	}
}

// printExpertStats prints one expert's visit counts and recent activity.
func printExpertStats(w io.Writer, name string, s *stats.Expert) {
	fmt.Fprintf(w, "Expert:        %s\n", name)
	fmt.Fprintf(w, "Visits:        %d\n", s.TotalVisits)
	fmt.Fprintf(w, "Resolved:      %d\n", s.Resolved)
	fmt.Fprintf(w, "Pending:       %d\n", s.Pending)
	fmt.Fprintf(w, "Registrations: %d\n", s.Registrations)
	if len(s.RecentActivity) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecent activity:")
	for _, a := range s.RecentActivity {
		fmt.Fprintf(w, "  [%s] %s (%s)\n", a.DateOfVisit, dash(a.BusinessName), a.Status)
	}
}

// printExpertTable prints experts as a formatted table.
func printExpertTable(out io.Writer, experts []*expert.Expert) error {
	if len(experts) == 0 {
		fmt.Fprintln(out, "No experts found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tDESIGNATION\tCONTACT\tPLANS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----------\t-------\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, e := range experts {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			e.ID, truncate(e.Name, 28), truncate(dash(e.Designation), 24),
			dash(e.Contact), len(e.Plans)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d experts\n", len(experts))
	return nil
}

// printExpertSummary prints an expert with plans in display order. The
// printed plan numbers are the stored positions used by plan commands.
func printExpertSummary(w io.Writer, e *expert.Expert) {
	fmt.Fprintf(w, "Expert %s\n", e.ID)
	fmt.Fprintf(w, "  Name:        %s\n", e.Name)
	fmt.Fprintf(w, "  Designation: %s\n", dash(e.Designation))
	fmt.Fprintf(w, "  Contact:     %s\n", dash(e.Contact))
	if len(e.Expertise) > 0 {
		fmt.Fprintf(w, "  Expertise:   %s\n", strings.Join(e.Expertise, ", "))
	}
	fmt.Fprintf(w, "  Events: %d  Registrations: %d  MoMs: %d\n",
		e.Stats.EventsAttended, e.Stats.RegistrationsDone, e.Stats.MomsCreated)

	if len(e.Plans) == 0 {
		fmt.Fprintln(w, "\nNo plans.")
		return
	}

	fmt.Fprintln(w, "\nPlans:")
	for _, i := range e.DisplayOrder() {
		p := e.Plans[i]
		marker := ""
		if p.IsCurrent {
			marker = " (current)"
		}
		fmt.Fprintf(w, "  #%d %s %d%s\n", i, p.Month, p.Year, marker)
		for j, wk := range p.Weeks {
			fmt.Fprintf(w, "    %d. %s  %s..%s  %s\n", j, wk.WeekLabel, wk.StartDate, wk.EndDate, wk.Status)
		}
	}
}

// printActiveWeek prints the active week lookup result.
func printActiveWeek(w io.Writer, aw *expert.ActiveWeek) {
	if aw.Plan == nil {
		fmt.Fprintln(w, "No plans.")
		return
	}
	fmt.Fprintf(w, "Plan:  #%d %s %d\n", aw.PlanIndex, aw.Plan.Month, aw.Plan.Year)
	if aw.Week == nil {
		fmt.Fprintln(w, "Week:  no active week")
		return
	}
	fmt.Fprintf(w, "Week:  %d. %s  %s..%s  %s\n",
		aw.WeekIndex, aw.Week.WeekLabel, aw.Week.StartDate, aw.Week.EndDate, aw.Week.Status)
	for _, line := range strings.Split(aw.Week.Plan, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
