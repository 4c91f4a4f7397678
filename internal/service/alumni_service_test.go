package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (p *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

type alumniRepoFake struct {
	records   map[string]*models.Alumni
	insertErr error
	listCalls int
	updates   []map[string]interface{}
	recent    []models.RecentAlumni
}

func newAlumniRepoFake() *alumniRepoFake {
	return &alumniRepoFake{records: map[string]*models.Alumni{}}
}

func (f *alumniRepoFake) Insert(_ context.Context, exec sqlx.ExtContext, alumni *models.Alumni) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	alumni.ID = "alumni-" + alumni.UID
	copied := *alumni
	f.records[alumni.UID] = &copied
	return nil
}

func (f *alumniRepoFake) FindByUID(_ context.Context, uid string) (*models.Alumni, error) {
	if a, ok := f.records[uid]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (f *alumniRepoFake) List(_ context.Context, filter models.AlumniFilter) ([]models.Alumni, int, error) {
	f.listCalls++
	out := make([]models.Alumni, 0, len(f.records))
	for _, a := range f.records {
		if filter.Department == "" || a.Department == filter.Department {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *alumniRepoFake) ListRecent(_ context.Context, limit int) ([]models.RecentAlumni, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *alumniRepoFake) UpdateFields(_ context.Context, uid string, fields map[string]interface{}) (*models.Alumni, error) {
	a, ok := f.records[uid]
	if !ok {
		return nil, sql.ErrNoRows
	}
	f.updates = append(f.updates, fields)
	if name, ok := fields["name"].(string); ok {
		a.Name = name
	}
	return a, nil
}

type registrationStoreFake struct {
	inserted  []models.Account
	attached  map[string]string
	insertErr error
}

func (f *registrationStoreFake) Insert(_ context.Context, exec sqlx.ExtContext, account *models.Account) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *account)
	return nil
}

func (f *registrationStoreFake) AttachAlumni(_ context.Context, exec sqlx.ExtContext, id, uid, alumniRef string, verified bool) error {
	if f.attached == nil {
		f.attached = map[string]string{}
	}
	f.attached[id] = uid + "@" + alumniRef
	return nil
}

func registration() dto.RegistrationRequest {
	return dto.RegistrationRequest{RegNo: " 21CS042 ", Name: "Asha Rao", Email: "asha@example.com", YearOfPassingOut: 2021, Department: "CSE"}
}

func TestAlumniRegisterCreatesAccount(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newAlumniRepoFake()
	accounts := &registrationStoreFake{}
	provider := &providerFake{}
	cache := newMemoryCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, nil, true)
	cacheSvc.Set(context.Background(), DirectoryKey(models.AlumniFilter{Page: 1, PageSize: 20}), DirectoryPage{}, time.Minute)
	svc := NewAlumniService(repo, accounts, tx, provider, cacheSvc, nil, nil, time.Minute)

	record, err := svc.Register(context.Background(), &models.Principal{ExternalID: "user_1"}, registration())
	require.NoError(t, err)

	assert.Equal(t, "21CS042", record.UID)
	require.NotNil(t, record.RegisterNo)
	assert.Equal(t, "21CS042", *record.RegisterNo)
	require.Len(t, accounts.inserted, 1)
	account := accounts.inserted[0]
	assert.False(t, account.Verified, "self-registered accounts await admin verification")
	assert.Equal(t, "user_1", *account.ExternalID)
	assert.Equal(t, "alumni-21CS042", *account.AlumniRef)
	assert.Equal(t, "21CS042", provider.uids["user_1"])
	assert.Empty(t, cache.items, "directory cache is invalidated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRegisterAttachesWebhookAccount(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	accounts := &registrationStoreFake{}
	svc := NewAlumniService(newAlumniRepoFake(), accounts, tx, nil, nil, nil, nil, 0)
	principal := &models.Principal{ExternalID: "user_1", Account: &models.Account{ID: "acc-7", Email: "asha@example.com"}}

	_, err := svc.Register(context.Background(), principal, registration())
	require.NoError(t, err)
	assert.Equal(t, "21CS042@alumni-21CS042", accounts.attached["acc-7"])
	assert.Empty(t, accounts.inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRegisterDuplicateRegisterNumber(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newAlumniRepoFake()
	repo.insertErr = &pq.Error{Code: "23505", Constraint: "alumni_uid_key"}
	svc := NewAlumniService(repo, &registrationStoreFake{}, tx, nil, nil, nil, nil, 0)

	_, err := svc.Register(context.Background(), &models.Principal{ExternalID: "user_1"}, registration())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRegisterAccountFailureRollsBack(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewAlumniService(newAlumniRepoFake(), &registrationStoreFake{insertErr: errors.New("db down")}, tx, nil, nil, nil, nil, 0)

	_, err := svc.Register(context.Background(), &models.Principal{ExternalID: "user_1"}, registration())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlumniRegisterGuards(t *testing.T) {
	svc := NewAlumniService(newAlumniRepoFake(), &registrationStoreFake{}, nil, nil, nil, nil, nil, 0)

	_, err := svc.Register(context.Background(), nil, registration())
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	req := registration()
	req.Email = "not-an-email"
	_, err = svc.Register(context.Background(), &models.Principal{ExternalID: "user_1"}, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	uid := "21CS001"
	registered := &models.Principal{ExternalID: "user_1", Account: &models.Account{UID: &uid}}
	_, err = svc.Register(context.Background(), registered, registration())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAlumniListUsesCache(t *testing.T) {
	repo := newAlumniRepoFake()
	repo.records["a"] = &models.Alumni{UID: "a", Department: "CSE"}
	repo.records["b"] = &models.Alumni{UID: "b", Department: "ECE"}
	cacheSvc := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewAlumniService(repo, nil, nil, nil, cacheSvc, nil, nil, time.Minute)

	page, err := svc.List(context.Background(), dto.DirectoryQuery{Department: "CSE"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, page.Pagination)

	_, err = svc.List(context.Background(), dto.DirectoryQuery{Department: "CSE"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.List(context.Background(), dto.DirectoryQuery{SortBy: "salary"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAlumniGetAndRecent(t *testing.T) {
	repo := newAlumniRepoFake()
	repo.records["a"] = &models.Alumni{UID: "a"}
	for i := 0; i < 7; i++ {
		repo.recent = append(repo.recent, models.RecentAlumni{UID: string(rune('a' + i))})
	}
	svc := NewAlumniService(repo, nil, nil, nil, nil, nil, nil, 0)

	got, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.UID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestAlumniUpdateProfile(t *testing.T) {
	repo := newAlumniRepoFake()
	repo.records["21CS042"] = &models.Alumni{UID: "21CS042", Name: "Asha"}
	svc := NewAlumniService(repo, nil, nil, nil, nil, nil, nil, 0)
	uid := "21CS042"
	principal := &models.Principal{ExternalID: "user_1", Account: &models.Account{UID: &uid}}

	name := "Asha Rao"
	updated, err := svc.UpdateProfile(context.Background(), principal, dto.ProfileUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", updated.Name)
	assert.Equal(t, []map[string]interface{}{{"name": "Asha Rao"}}, repo.updates)

	_, err = svc.UpdateProfile(context.Background(), principal, dto.ProfileUpdateRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateProfile(context.Background(), &models.Principal{ExternalID: "user_2"}, dto.ProfileUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
