package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Alumni is one graduate's directory record.
type Alumni struct {
	ID                   string          `db:"id" json:"id"`
	UID                  string          `db:"uid" json:"uid"`
	Name                 string          `db:"name" json:"name"`
	YearOfPassingOut     *int            `db:"year_of_passing_out" json:"year_of_passing_out"`
	Course               string          `db:"course" json:"course"`
	Department           string          `db:"department" json:"department"`
	Address              string          `db:"address" json:"address"`
	Email                string          `db:"email" json:"email"`
	ContactNo            string          `db:"contact_no" json:"contact_no"`
	RegisterNo           *string         `db:"register_no" json:"register_no,omitempty"`
	Occupation           string          `db:"occupation" json:"occupation"`
	PlaceOfWork          string          `db:"place_of_work" json:"place_of_work"`
	Designation          string          `db:"designation" json:"designation"`
	OfficialAddress      string          `db:"official_address" json:"official_address"`
	HigherEducation      HigherEducation `db:"higher_education" json:"higher_education"`
	HighestDegree        HighestDegree   `db:"highest_degree" json:"highest_degree"`
	AreaOfExpertise      string          `db:"area_of_expertise" json:"area_of_expertise"`
	ContactsOfBatchmates string          `db:"contacts_of_batchmates" json:"contacts_of_batchmates"`
	WillingToContact     bool            `db:"willing_to_contact" json:"willing_to_contact"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// HigherEducation is stored as a JSONB sub-document.
type HigherEducation struct {
	Course      string `json:"course"`
	Institution string `json:"institution"`
	Year        *int   `json:"year"`
}

func (h HigherEducation) Value() (driver.Value, error) { return json.Marshal(h) }

func (h *HigherEducation) Scan(src interface{}) error { return scanJSON(src, h) }

// HighestDegree is stored as a JSONB sub-document.
type HighestDegree struct {
	Specify string `json:"specify"`
	Year    *int   `json:"year"`
}

func (d HighestDegree) Value() (driver.Value, error) { return json.Marshal(d) }

func (d *HighestDegree) Scan(src interface{}) error { return scanJSON(src, d) }

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
}

// AlumniFilter narrows directory listings.
type AlumniFilter struct {
	Search     string
	Department string
	Course     string
	Year       *int
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// RecentAlumni is an alumni row joined with the account that most recently
// linked an identity to it.
type RecentAlumni struct {
	UID              string    `db:"uid" json:"uid"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Department       string    `db:"department" json:"department"`
	Course           string    `db:"course" json:"course"`
	YearOfPassingOut *int      `db:"year_of_passing_out" json:"year_of_passing_out"`
	Address          string    `db:"address" json:"address"`
	Occupation       string    `db:"occupation" json:"occupation"`
	ExternalID       string    `db:"external_id" json:"external_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Recipient is the projection the mail dispatcher needs.
type Recipient struct {
	UID   string `db:"uid" json:"uid"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
