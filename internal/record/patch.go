package record

import (
	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/area"
	"github.com/bfcwefc/msme-desk/internal/dates"
)

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	SerialNo                *string    `json:"serialNo"`
	DateOfVisit             *string    `json:"dateOfVisit"`
	AssistedBy              *string    `json:"assistedBy"`
	VisitorName             *string    `json:"visitorName"`
	VisitorCategory         *string    `json:"visitorCategory"`
	VisitorCategoryOther    *string    `json:"visitorCategoryOther"`
	Gender                  *string    `json:"gender"`
	Caste                   *string    `json:"caste"`
	ContactNumber           *string    `json:"contactNumber"`
	Email                   *string    `json:"email"`
	Address                 *string    `json:"address"`
	BusinessName            *string    `json:"businessName"`
	UdyamRegistrationNo     *string    `json:"udyamRegistrationNo"`
	EnterpriseType          *string    `json:"enterpriseType"`
	Sector                  *string    `json:"sector"`
	PurposeOfVisit          *string    `json:"purposeOfVisit"`
	ExpertName              *NameList  `json:"expertName"`
	Status                  *string    `json:"status"`
	SupportDetails          *string    `json:"supportDetails"`
	Photos                  *string    `json:"photos"`
	FollowUpAction          *string    `json:"followUpAction"`
	QueryResolutionRequired *string    `json:"queryResolutionRequired"`
	Area                    *area.Area `json:"area"`
}

// assignments returns the SET clauses and their arguments for the non-nil fields.
func (p Patch) assignments() ([]string, []interface{}, error) {
	var sets []string
	var args []interface{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}

	if p.DateOfVisit != nil {
		d, err := dates.Normalize(*p.DateOfVisit)
		if err != nil {
			return nil, nil, apperr.Validation("dateOfVisit: %v", err)
		}
		add("date_of_visit", &d)
	}
	if p.Area != nil {
		if !p.Area.IsValid() {
			return nil, nil, apperr.Validation("area must be one of North Goa, South Goa, Unknown")
		}
		a := string(*p.Area)
		add("area", &a)
	}
	if p.ExpertName != nil {
		n := string(*p.ExpertName)
		add("expert_name", &n)
	}

	add("serial_no", p.SerialNo)
	add("assisted_by", p.AssistedBy)
	add("visitor_name", p.VisitorName)
	add("visitor_category", p.VisitorCategory)
	add("visitor_category_other", p.VisitorCategoryOther)
	add("gender", p.Gender)
	add("caste", p.Caste)
	add("contact_number", p.ContactNumber)
	add("email", p.Email)
	add("address", p.Address)
	add("business_name", p.BusinessName)
	add("udyam_registration_no", p.UdyamRegistrationNo)
	add("enterprise_type", p.EnterpriseType)
	add("sector", p.Sector)
	add("purpose_of_visit", p.PurposeOfVisit)
	add("status", p.Status)
	add("support_details", p.SupportDetails)
	add("photos", p.Photos)
	add("follow_up_action", p.FollowUpAction)
	add("query_resolution_required", p.QueryResolutionRequired)

	return sets, args, nil
}
