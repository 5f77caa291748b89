package record

import (
	"net/url"
	"strings"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/dates"
)

// Filter holds the optional list filters. Empty fields are not applied.
type Filter struct {
	Area           string
	Sector         string // case-insensitive substring
	RawSector      string // case-insensitive exact; wins over Sector
	EnterpriseType string
	Status         string
	Search         string // businessName or visitorName substring
	StartDate      string // inclusive
	EndDate        string // inclusive
}

// FilterFromQuery reads a Filter from URL query parameters.
func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Area:           q.Get("area"),
		Sector:         q.Get("sector"),
		RawSector:      q.Get("rawSector"),
		EnterpriseType: q.Get("enterpriseType"),
		Status:         q.Get("status"),
		Search:         q.Get("search"),
		StartDate:      q.Get("startDate"),
		EndDate:        q.Get("endDate"),
	}
}

// Query encodes the filter as URL query parameters, omitting empty fields.
func (f Filter) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("area", f.Area)
	set("sector", f.Sector)
	set("rawSector", f.RawSector)
	set("enterpriseType", f.EnterpriseType)
	set("status", f.Status)
	set("search", f.Search)
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	return q
}

// where compiles the filter into SQL conditions and bind arguments.
// All user values are bound as parameters; LIKE patterns are escaped so they
// match literally.
func (f Filter) where() ([]string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	if f.Area != "" {
		conditions = append(conditions, "area = ?")
		args = append(args, f.Area)
	}

	switch {
	case f.RawSector != "":
		conditions = append(conditions, "lower(sector) = lower(?)")
		args = append(args, f.RawSector)
	case f.Sector != "":
		conditions = append(conditions, `sector LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(f.Sector))
	}

	if f.EnterpriseType != "" {
		conditions = append(conditions, "enterprise_type = ?")
		args = append(args, f.EnterpriseType)
	}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}

	if f.Search != "" {
		p := containsPattern(f.Search)
		conditions = append(conditions, `(business_name LIKE ? ESCAPE '\' OR visitor_name LIKE ? ESCAPE '\')`)
		args = append(args, p, p)
	}

	if f.StartDate != "" {
		d, err := dates.Normalize(f.StartDate)
		if err != nil {
			return nil, nil, apperr.Validation("startDate: %v", err)
		}
		conditions = append(conditions, "date_of_visit >= ?")
		args = append(args, d)
	}

	if f.EndDate != "" {
		d, err := dates.Normalize(f.EndDate)
		if err != nil {
			return nil, nil, apperr.Validation("endDate: %v", err)
		}
		conditions = append(conditions, "date_of_visit <= ?")
		args = append(args, d)
	}

	return conditions, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
