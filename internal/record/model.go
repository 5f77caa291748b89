// Package record provides the visit record domain model, filtering and data access.
package record

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bfcwefc/msme-desk/internal/area"
)

// Status values used by the front desk. The column is free text; these are
// the values the UI writes.
const (
	StatusPending  = "Pending"
	StatusResolved = "Resolved"
)

// VisitRecord is one logged interaction between a visitor or business and the
// facilitation centre.
type VisitRecord struct {
	ID                      string    `json:"id"`
	SerialNo                string    `json:"serialNo"`
	DateOfVisit             string    `json:"dateOfVisit"` // YYYY-MM-DD
	AssistedBy              string    `json:"assistedBy"`
	VisitorName             string    `json:"visitorName"`
	VisitorCategory         string    `json:"visitorCategory"`
	VisitorCategoryOther    string    `json:"visitorCategoryOther"`
	Gender                  string    `json:"gender"`
	Caste                   string    `json:"caste"`
	ContactNumber           string    `json:"contactNumber"`
	Email                   string    `json:"email"`
	Address                 string    `json:"address"`
	BusinessName            string    `json:"businessName"`
	UdyamRegistrationNo     string    `json:"udyamRegistrationNo"`
	EnterpriseType          string    `json:"enterpriseType"`
	Sector                  string    `json:"sector"`
	PurposeOfVisit          string    `json:"purposeOfVisit"`
	ExpertName              NameList  `json:"expertName"`
	Status                  string    `json:"status"`
	SupportDetails          string    `json:"supportDetails"`
	Photos                  string    `json:"photos"`
	FollowUpAction          string    `json:"followUpAction"`
	QueryResolutionRequired string    `json:"queryResolutionRequired"`
	Area                    area.Area `json:"area"`
	CreatedAt               time.Time `json:"createdAt"`
}

// nameSeparator joins expert names into the stored single-string form.
const nameSeparator = ", "

// NameList is a set of expert names persisted as one comma-joined string.
// It decodes from either a JSON string or an array of strings and always
// encodes as a string.
type NameList string

// JoinNames builds a NameList from individual names, skipping blanks.
func JoinNames(names []string) NameList {
	var kept []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return NameList(strings.Join(kept, nameSeparator))
}

// Names splits the stored string back into individual names.
func (n NameList) Names() []string {
	var names []string
	for _, part := range strings.Split(string(n), ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// UnmarshalJSON accepts "A, B" or ["A", "B"].
func (n *NameList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*n = JoinNames(list)
		return nil
	}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*n = ""
		return nil
	}
	*n = NameList(*s)
	return nil
}

// Summary is the projection used in per-expert recent activity.
type Summary struct {
	ID             string `json:"id"`
	BusinessName   string `json:"businessName"`
	DateOfVisit    string `json:"dateOfVisit"`
	Status         string `json:"status"`
	PurposeOfVisit string `json:"purposeOfVisit"`
}
