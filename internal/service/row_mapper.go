package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

// Spreadsheet header contract. Values are matched exactly after trimming
// surrounding whitespace.
const (
	HeaderName                  = "Name"
	HeaderYearOfPassingOut      = "Year of passing out"
	HeaderCourse                = "Course"
	HeaderDepartment            = "Department"
	HeaderAddress               = "Address"
	HeaderEmail                 = "E-mail"
	HeaderContactNo             = "Contact No."
	HeaderOccupation            = "Occupation"
	HeaderPlaceOfWork           = "Place of work"
	HeaderDesignation           = "Position( Designation)"
	HeaderOfficialAddress       = "Official address"
	HeaderHigherEduCourse       = "Higher education if any: A) Course"
	HeaderHigherEduInstitution  = "Higher education if any: B) Institution"
	HeaderHigherEduYear         = "Higher education if any: C) Year of passing"
	HeaderHighestDegreeSpecify  = "Highest degree A) Specify"
	HeaderHighestDegreeYear     = "Highest degree B) year"
	HeaderAreaOfExpertise       = "Area of expertise"
	HeaderContactsOfBatchmates  = "Any contact of your classmates/ batchmates/friends"
	HeaderWillingToContact      = "Are you willing us to contact you for any area of your expertise"
)

// ImportHeaders lists every column the mapper reads, in spreadsheet order.
var ImportHeaders = []string{
	HeaderName, HeaderYearOfPassingOut, HeaderCourse, HeaderDepartment, HeaderAddress, HeaderEmail,
	HeaderContactNo, HeaderOccupation, HeaderPlaceOfWork, HeaderDesignation, HeaderOfficialAddress,
	HeaderHigherEduCourse, HeaderHigherEduInstitution, HeaderHigherEduYear, HeaderHighestDegreeSpecify,
	HeaderHighestDegreeYear, HeaderAreaOfExpertise, HeaderContactsOfBatchmates, HeaderWillingToContact,
}

var fourDigitYear = regexp.MustCompile(`^\d{4}$`)

// MappedRow is a mapped spreadsheet row together with its validation outcome.
// A row is Valid when Reasons is empty.
type MappedRow struct {
	Row     int
	Entry   models.ImportEntry
	Reasons []string
}

func (m MappedRow) Valid() bool { return len(m.Reasons) == 0 }

// RowMapper turns header-keyed spreadsheet rows into alumni records.
type RowMapper struct {
	ids *IdentifierGenerator
}

func NewRowMapper(ids *IdentifierGenerator) *RowMapper {
	if ids == nil {
		ids = NewIdentifierGenerator(nil)
	}
	return &RowMapper{ids: ids}
}

// Map converts a row without rejecting anything. Non-numeric years become nil.
func (m *RowMapper) Map(row map[string]string) models.ImportEntry {
	get := func(header string) string { return strings.TrimSpace(row[header]) }

	uid := m.ids.Generate(get(HeaderName), get(HeaderYearOfPassingOut))
	return models.ImportEntry{
		UID: uid,
		Alumni: models.Alumni{
			UID:              uid,
			Name:             get(HeaderName),
			YearOfPassingOut: parseYear(get(HeaderYearOfPassingOut)),
			Course:           get(HeaderCourse),
			Department:       get(HeaderDepartment),
			Address:          get(HeaderAddress),
			Email:            get(HeaderEmail),
			ContactNo:        get(HeaderContactNo),
			Occupation:       get(HeaderOccupation),
			PlaceOfWork:      get(HeaderPlaceOfWork),
			Designation:      get(HeaderDesignation),
			OfficialAddress:  get(HeaderOfficialAddress),
			HigherEducation: models.HigherEducation{
				Course:      get(HeaderHigherEduCourse),
				Institution: get(HeaderHigherEduInstitution),
				Year:        parseYear(get(HeaderHigherEduYear)),
			},
			HighestDegree: models.HighestDegree{
				Specify: get(HeaderHighestDegreeSpecify),
				Year:    parseYear(get(HeaderHighestDegreeYear)),
			},
			AreaOfExpertise:      get(HeaderAreaOfExpertise),
			ContactsOfBatchmates: get(HeaderContactsOfBatchmates),
			WillingToContact:     strings.EqualFold(get(HeaderWillingToContact), "yes"),
		},
	}
}

// MapAndValidate maps a row and records every reason it cannot be imported.
func (m *RowMapper) MapAndValidate(rowNumber int, row map[string]string) MappedRow {
	entry := m.Map(row)
	entry.Row = rowNumber
	return MappedRow{Row: rowNumber, Entry: entry, Reasons: validateRow(row)}
}

// ValidateEntry checks an already-mapped entry submitted as JSON.
func ValidateEntry(entry models.ImportEntry) []string {
	var reasons []string
	if strings.TrimSpace(entry.UID) == "" {
		reasons = append(reasons, "uid is required")
	}
	a := entry.Alumni
	if strings.TrimSpace(a.Name) == "" {
		reasons = append(reasons, "name is required")
	}
	if a.YearOfPassingOut == nil || *a.YearOfPassingOut < 1000 || *a.YearOfPassingOut > 9999 {
		reasons = append(reasons, "year of passing out must be a four-digit year")
	}
	if !plausibleEmail(a.Email) {
		reasons = append(reasons, "e-mail is missing or malformed")
	}
	return reasons
}

func validateRow(row map[string]string) []string {
	var reasons []string
	if strings.TrimSpace(row[HeaderName]) == "" {
		reasons = append(reasons, "name is required")
	}
	if !fourDigitYear.MatchString(strings.TrimSpace(row[HeaderYearOfPassingOut])) {
		reasons = append(reasons, "year of passing out must be a four-digit year")
	}
	if !plausibleEmail(row[HeaderEmail]) {
		reasons = append(reasons, "e-mail is missing or malformed")
	}
	for _, header := range []string{HeaderHigherEduYear, HeaderHighestDegreeYear} {
		if v := strings.TrimSpace(row[header]); v != "" && parseYear(v) == nil {
			reasons = append(reasons, header+" must be numeric")
		}
	}
	return reasons
}

// MissingHeaders returns contract columns absent from the uploaded header row.
func MissingHeaders(headers []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, h := range ImportHeaders {
		if _, ok := present[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

func parseYear(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// plausibleEmail is the recipient filter used across imports and broadcasts:
// non-empty after trimming and containing '@'.
func plausibleEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}
