package models

import "time"

// ApplicationStatus tracks an application through its lifecycle. Pending is
// the only initial state; Approved and Rejected are terminal under strict
// transitions.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Application categories form a closed set matching the service desks the
// office operates.
const (
	CategoryAdministration = "Administration"
	CategoryLegal          = "Legal"
	CategoryBusiness       = "Business"
	CategoryDisasterRelief = "Disaster Relief"
	CategoryFinance        = "Finance"
	CategoryEducation      = "Education"
	CategoryOther          = "Other"
)

// Categories lists every accepted application category.
var Categories = []string{
	CategoryAdministration,
	CategoryLegal,
	CategoryBusiness,
	CategoryDisasterRelief,
	CategoryFinance,
	CategoryEducation,
	CategoryOther,
}

// Application is a citizen service request. UserID is an opaque owner
// reference with no enforced referential integrity: an application may
// outlive the account that created it.
type Application struct {
	ID            string            `db:"id" json:"id"`
	FullName      string            `db:"full_name" json:"fullName"`
	Age           int               `db:"age" json:"age"`
	ContactNumber string            `db:"contact_number" json:"contactNumber"`
	Gender        string            `db:"gender" json:"gender"`
	District      string            `db:"district" json:"district"`
	RevenueCircle string            `db:"revenue_circle" json:"revenueCircle"`
	Category      string            `db:"category" json:"category"`
	VillageWard   string            `db:"village_ward" json:"villageWard"`
	Remarks       string            `db:"remarks" json:"remarks"`
	DocumentURL   string            `db:"document_url" json:"documentUrl"`
	Status        ApplicationStatus `db:"status" json:"status"`
	UserID        string            `db:"user_id" json:"userId"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}

// ApplicationFilter narrows application listings. The zero value lists
// everything newest first.
type ApplicationFilter struct {
	UserID    string
	SortOrder string
}

// ApplicationCounts aggregates lifecycle totals for the admin dashboard.
type ApplicationCounts struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}
