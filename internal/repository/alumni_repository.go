package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

const alumniColumns = `id, uid, name, year_of_passing_out, course, department, address, email, contact_no, register_no,
        occupation, place_of_work, designation, official_address, higher_education, highest_degree,
        area_of_expertise, contacts_of_batchmates, willing_to_contact, created_at, updated_at`

// maxExportRows bounds unpaginated directory reads.
const maxExportRows = 10000

// alumniPatchColumns lists the columns a profile update may touch.
var alumniPatchColumns = map[string]struct{}{
	"name": {}, "year_of_passing_out": {}, "course": {}, "department": {}, "address": {}, "email": {},
	"contact_no": {}, "occupation": {}, "place_of_work": {}, "designation": {}, "official_address": {},
	"higher_education": {}, "highest_degree": {}, "area_of_expertise": {}, "contacts_of_batchmates": {},
	"willing_to_contact": {},
}

// AlumniRepository persists alumni directory records.
type AlumniRepository struct {
	db *sqlx.DB
}

func NewAlumniRepository(db *sqlx.DB) *AlumniRepository {
	return &AlumniRepository{db: db}
}

func (r *AlumniRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert stores one alumni row. Driver errors are wrapped with %w so callers can
// inspect the underlying *pq.Error.
func (r *AlumniRepository) Insert(ctx context.Context, exec sqlx.ExtContext, alumni *models.Alumni) error {
	if alumni.ID == "" {
		alumni.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if alumni.CreatedAt.IsZero() {
		alumni.CreatedAt = now
	}
	alumni.UpdatedAt = now

	const query = `INSERT INTO alumni (` + alumniColumns + `)
        VALUES (:id, :uid, :name, :year_of_passing_out, :course, :department, :address, :email, :contact_no, :register_no,
        :occupation, :place_of_work, :designation, :official_address, :higher_education, :highest_degree,
        :area_of_expertise, :contacts_of_batchmates, :willing_to_contact, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, alumni); err != nil {
		return fmt.Errorf("insert alumni %s: %w", alumni.UID, err)
	}
	return nil
}

// Delete removes an alumni row by storage id.
func (r *AlumniRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alumni WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete alumni %s: %w", id, err)
	}
	return nil
}

// FindByUID fetches one alumni record. sql.ErrNoRows is returned unwrapped.
func (r *AlumniRepository) FindByUID(ctx context.Context, uid string) (*models.Alumni, error) {
	var alumni models.Alumni
	if err := r.db.GetContext(ctx, &alumni, `SELECT `+alumniColumns+` FROM alumni WHERE uid = $1`, uid); err != nil {
		return nil, err
	}
	return &alumni, nil
}

func buildAlumniWhere(filter models.AlumniFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Course != "" {
		args = append(args, filter.Course)
		conditions = append(conditions, fmt.Sprintf("course = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("year_of_passing_out = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(uid) LIKE $%d OR LOWER(occupation) LIKE $%d OR LOWER(place_of_work) LIKE $%d)", n, n, n, n))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func alumniOrder(filter models.AlumniFilter) string {
	allowed := map[string]string{
		"name":       "name",
		"year":       "year_of_passing_out",
		"department": "department",
		"created_at": "created_at",
	}
	column, ok := allowed[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, uid ASC", column, order)
}

// List returns one page of the directory and the total match count.
func (r *AlumniRepository) List(ctx context.Context, filter models.AlumniFilter) ([]models.Alumni, int, error) {
	where, args := buildAlumniWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM alumni %s %s LIMIT %d OFFSET %d`, alumniColumns, where, alumniOrder(filter), size, (page-1)*size)
	alumni := []models.Alumni{}
	if err := r.db.SelectContext(ctx, &alumni, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list alumni: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM alumni "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count alumni: %w", err)
	}
	return alumni, total, nil
}

// ListAll returns every matching record for exports, capped at maxExportRows.
func (r *AlumniRepository) ListAll(ctx context.Context, filter models.AlumniFilter) ([]models.Alumni, error) {
	where, args := buildAlumniWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM alumni %s %s LIMIT %d`, alumniColumns, where, alumniOrder(filter), maxExportRows)
	alumni := []models.Alumni{}
	if err := r.db.SelectContext(ctx, &alumni, query, args...); err != nil {
		return nil, fmt.Errorf("list alumni for export: %w", err)
	}
	return alumni, nil
}

// ListRecipients returns the name and email of every alumni record.
func (r *AlumniRepository) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	recipients := []models.Recipient{}
	if err := r.db.SelectContext(ctx, &recipients, `SELECT uid, name, email FROM alumni ORDER BY created_at, uid`); err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return recipients, nil
}

// ListRecent returns alumni whose accounts were most recently linked to an identity.
func (r *AlumniRepository) ListRecent(ctx context.Context, limit int) ([]models.RecentAlumni, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT al.uid, al.name, al.email, al.department, al.course, al.year_of_passing_out, al.address, al.occupation,
        ac.external_id, COALESCE(ac.linked_at, ac.created_at) AS created_at
        FROM accounts ac JOIN alumni al ON al.uid = ac.uid
        WHERE ac.external_id IS NOT NULL
        ORDER BY COALESCE(ac.linked_at, ac.created_at) DESC LIMIT $1`
	recent := []models.RecentAlumni{}
	if err := r.db.SelectContext(ctx, &recent, query, limit); err != nil {
		return nil, fmt.Errorf("list recent alumni: %w", err)
	}
	return recent, nil
}

// UpdateFields applies a partial update keyed by column name and returns the
// updated row. Unknown columns are rejected.
func (r *AlumniRepository) UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) (*models.Alumni, error) {
	if len(fields) == 0 {
		return r.FindByUID(ctx, uid)
	}
	columns := make([]string, 0, len(fields))
	for column := range fields {
		if _, ok := alumniPatchColumns[column]; !ok {
			return nil, fmt.Errorf("update alumni: column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]interface{}, 0, len(columns)+2)
	for _, column := range columns {
		args = append(args, fields[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, uid)

	query := fmt.Sprintf(`UPDATE alumni SET %s WHERE uid = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), alumniColumns)
	var alumni models.Alumni
	if err := r.db.GetContext(ctx, &alumni, query, args...); err != nil {
		return nil, err
	}
	return &alumni, nil
}
