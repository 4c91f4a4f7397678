package dto

import "github.com/noah-isme/alumni-network-api/internal/models"

// DirectoryQuery mirrors supported directory filters.
type DirectoryQuery struct {
	Search     string `form:"search"`
	Department string `form:"department"`
	Course     string `form:"course"`
	Year       *int   `form:"year" validate:"omitempty,min=1900,max=2100"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by" validate:"omitempty,oneof=name year department created_at"`
	SortOrder  string `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// Filter converts the query into a repository filter.
func (q DirectoryQuery) Filter() models.AlumniFilter {
	return models.AlumniFilter{
		Search:     q.Search,
		Department: q.Department,
		Course:     q.Course,
		Year:       q.Year,
		Page:       q.Page,
		PageSize:   q.PageSize,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}
}

// RegistrationRequest is a self-service alumni registration. The register
// number becomes the alumni uid.
type RegistrationRequest struct {
	RegNo                string                 `json:"reg_no" validate:"required,max=64"`
	Name                 string                 `json:"name" validate:"required"`
	Email                string                 `json:"email" validate:"required,email"`
	YearOfPassingOut     int                    `json:"year_of_passing_out" validate:"required,min=1900,max=2100"`
	Course               string                 `json:"course"`
	Department           string                 `json:"department"`
	Address              string                 `json:"address"`
	ContactNo            string                 `json:"contact_no"`
	Occupation           string                 `json:"occupation"`
	PlaceOfWork          string                 `json:"place_of_work"`
	Designation          string                 `json:"designation"`
	OfficialAddress      string                 `json:"official_address"`
	HigherEducation      models.HigherEducation `json:"higher_education"`
	HighestDegree        models.HighestDegree   `json:"highest_degree"`
	AreaOfExpertise      string                 `json:"area_of_expertise"`
	ContactsOfBatchmates string                 `json:"contacts_of_batchmates"`
	WillingToContact     bool                   `json:"willing_to_contact"`
}

// ProfileUpdateRequest is a partial alumni update. Nil fields are left alone.
type ProfileUpdateRequest struct {
	Name                 *string                 `json:"name" validate:"omitempty,min=1"`
	Email                *string                 `json:"email" validate:"omitempty,email"`
	Course               *string                 `json:"course"`
	Department           *string                 `json:"department"`
	Address              *string                 `json:"address"`
	ContactNo            *string                 `json:"contact_no"`
	Occupation           *string                 `json:"occupation"`
	PlaceOfWork          *string                 `json:"place_of_work"`
	Designation          *string                 `json:"designation"`
	OfficialAddress      *string                 `json:"official_address"`
	HigherEducation      *models.HigherEducation `json:"higher_education"`
	HighestDegree        *models.HighestDegree   `json:"highest_degree"`
	AreaOfExpertise      *string                 `json:"area_of_expertise"`
	ContactsOfBatchmates *string                 `json:"contacts_of_batchmates"`
	WillingToContact     *bool                   `json:"willing_to_contact"`
}

// Fields returns the column updates carried by the request.
func (r ProfileUpdateRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("name", r.Name)
	set("email", r.Email)
	set("course", r.Course)
	set("department", r.Department)
	set("address", r.Address)
	set("contact_no", r.ContactNo)
	set("occupation", r.Occupation)
	set("place_of_work", r.PlaceOfWork)
	set("designation", r.Designation)
	set("official_address", r.OfficialAddress)
	set("area_of_expertise", r.AreaOfExpertise)
	set("contacts_of_batchmates", r.ContactsOfBatchmates)
	if r.HigherEducation != nil {
		fields["higher_education"] = *r.HigherEducation
	}
	if r.HighestDegree != nil {
		fields["highest_degree"] = *r.HighestDegree
	}
	if r.WillingToContact != nil {
		fields["willing_to_contact"] = *r.WillingToContact
	}
	return fields
}
