// Package importer loads visitor-log and expert-roster spreadsheets into the
// database.
package importer

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/dates"
	"github.com/bfcwefc/msme-desk/internal/expert"
	"github.com/bfcwefc/msme-desk/internal/record"
)

// Visitor-log column headers. The sheet's header is on its second row.
const (
	colSerialNo         = "Sr. No."
	colDate             = "Date of visit to DITC (DD/MM/YY)"
	colAssistedBy       = "Assisted by BFC or WEFC"
	colVisitorName      = "Name of Visitor"
	colVisitorCategory  = "Category of visitor (Existing MSME/aspiring MSME/SHG Member/Others)"
	colCategoryOther    = "Pls specify details if Others"
	colGender           = "Gender (M/F)"
	colCaste            = "Caste (General/SC/ST/OBC)"
	colContact          = "Contact Number"
	colEmail            = "E-Mail ID"
	colAddress          = "Address (preferably address of business unit)"
	colBusinessName     = "Name of Business Unit"
	colUdyam            = "Udyam Registration Number"
	colEnterpriseType   = "Type of Buisness (Micro, Small, Medium)"
	colSector           = "Sector (Manufacturing, Service, Retail Trade)"
	colPurpose          = "Puropose of Visit"
	colExpert           = "Name of BFC or WEFC Expert met"
	colSupport          = "Details of support rendered"
	colPhotos           = "Photos"
	colFollowUp         = "Follow up action required"
	colQueryResolution  = "Assitance required by BFC & WEFC Expert to resolve MSME query, if any"
	visitHeaderRow      = 1
	rosterHeaderRow     = 0
	defaultDesignation  = "Consultant"
	defaultExpertiseTag = "General Support"
)

// Roster column headers.
const (
	colName        = "Name"
	colDesignation = "Designation"
	colCompanyMail = "Company Email ID"
)

// Importer writes parsed spreadsheets through the repositories.
type Importer struct {
	records *record.Repository
	experts *expert.Repository
	now     func() time.Time
}

// New creates an importer.
func New(records *record.Repository, experts *expert.Repository) *Importer {
	return &Importer{records: records, experts: experts, now: time.Now}
}

// ImportVisits reads a visitor log and inserts its rows. With replace set,
// existing records are removed first. The sheet is fully parsed before
// anything is deleted.
func (im *Importer) ImportVisits(ctx context.Context, r io.Reader, replace bool) (int, error) {
	recs, err := ReadVisits(r, im.now())
	if err != nil {
		return 0, err
	}

	if replace {
		n, err := im.records.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		zap.L().Info("cleared visit records", zap.Int64("count", n))
	}

	return im.records.InsertMany(ctx, recs)
}

// ImportExperts reads an expert roster and inserts its rows.
func (im *Importer) ImportExperts(ctx context.Context, r io.Reader, replace bool) (int, error) {
	experts, err := ReadExperts(r)
	if err != nil {
		return 0, err
	}

	if replace {
		n, err := im.experts.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		zap.L().Info("cleared experts", zap.Int64("count", n))
	}

	return im.experts.InsertMany(ctx, experts)
}

// ReadVisits parses the first sheet of a visitor log. Dates that cannot be
// read fall back to today's date.
func ReadVisits(r io.Reader, today time.Time) ([]*record.VisitRecord, error) {
	rows, err := readSheet(r, visitHeaderRow)
	if err != nil {
		return nil, err
	}

	recs := make([]*record.VisitRecord, 0, len(rows))
	for _, row := range rows {
		rec := &record.VisitRecord{
			SerialNo:                row.get(colSerialNo),
			DateOfVisit:             parseVisitDate(row.get(colDate), today).Format(dates.Layout),
			AssistedBy:              row.get(colAssistedBy),
			VisitorName:             row.get(colVisitorName),
			VisitorCategory:         row.get(colVisitorCategory),
			VisitorCategoryOther:    row.get(colCategoryOther),
			Gender:                  row.get(colGender),
			Caste:                   row.get(colCaste),
			ContactNumber:           row.get(colContact),
			Email:                   row.get(colEmail),
			Address:                 row.get(colAddress),
			BusinessName:            row.get(colBusinessName),
			UdyamRegistrationNo:     row.get(colUdyam),
			EnterpriseType:          titleCase(row.get(colEnterpriseType)),
			Sector:                  titleCase(row.get(colSector)),
			PurposeOfVisit:          row.get(colPurpose),
			ExpertName:              record.NameList(row.get(colExpert)),
			SupportDetails:          row.get(colSupport),
			Photos:                  row.get(colPhotos),
			FollowUpAction:          row.get(colFollowUp),
			QueryResolutionRequired: row.get(colQueryResolution),
		}
		if err := record.Prepare(rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", row.line, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadExperts parses the first sheet of an expert roster. Rows without a
// name are skipped.
func ReadExperts(r io.Reader) ([]*expert.Expert, error) {
	rows, err := readSheet(r, rosterHeaderRow)
	if err != nil {
		return nil, err
	}

	experts := make([]*expert.Expert, 0, len(rows))
	for _, row := range rows {
		name := row.get(colName)
		if name == "" {
			continue
		}
		designation := row.get(colDesignation)
		if designation == "" {
			designation = defaultDesignation
		}
		experts = append(experts, &expert.Expert{
			Name:        name,
			Designation: designation,
			Contact:     row.get(colCompanyMail),
			Expertise:   []string{defaultExpertiseTag},
		})
	}
	return experts, nil
}

type sheetRow struct {
	line   int // 1-based spreadsheet row
	header map[string]int
	cells  []string
}

func (r sheetRow) get(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// readSheet returns the non-blank rows below the header row of the first
// sheet, keyed by trimmed header text.
func readSheet(r io.Reader, headerRow int) (rows []sheetRow, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(all) <= headerRow {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheets[0], headerRow+1)
	}

	header := make(map[string]int, len(all[headerRow]))
	for i, h := range all[headerRow] {
		if h = strings.TrimSpace(h); h != "" {
			if _, dup := header[h]; !dup {
				header[h] = i
			}
		}
	}

	for i, cells := range all[headerRow+1:] {
		if blank(cells) {
			continue
		}
		rows = append(rows, sheetRow{line: headerRow + i + 2, header: header, cells: cells})
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseVisitDate reads DD/MM/YY or DD/MM/YYYY (two-digit years are 20YY),
// an Excel date serial, or an ISO date. Anything else yields today.
func parseVisitDate(s string, today time.Time) time.Time {
	if s == "" {
		return dates.Day(today)
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD == nil && errM == nil && errY == nil {
			if year < 100 {
				year += 2000
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			if t.Day() == day && int(t.Month()) == month {
				return t
			}
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return dates.Day(t)
		}
	}

	if t, err := dates.Parse(s); err == nil {
		return t
	}

	zap.L().Warn("unreadable visit date, using today", zap.String("value", s))
	return dates.Day(today)
}

var wordPattern = regexp.MustCompile(`\w\S*`)

// titleCase upper-cases the first letter of each word and lower-cases the rest.
func titleCase(s string) string {
	return wordPattern.ReplaceAllStringFunc(s, func(w string) string {
		first, size := utf8.DecodeRuneInString(w)
		return string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	})
}
