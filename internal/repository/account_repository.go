package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

const accountColumns = `id, email, name, uid, external_id, invitation_id, invitation_sent, invitation_sent_at, linked_at,
        role, verified, alumni_ref, created_at, updated_at`

// pendingInvitationPredicate selects accounts the provisioning loop has not handled.
const pendingInvitationPredicate = `external_id IS NULL AND invitation_id IS NULL`

// AccountRepository persists login accounts.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert creates an account. Driver errors are wrapped with %w.
func (r *AccountRepository) Insert(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	const query = `INSERT INTO accounts (` + accountColumns + `)
        VALUES (:id, :email, :name, :uid, :external_id, :invitation_id, :invitation_sent, :invitation_sent_at, :linked_at,
        :role, :verified, :alumni_ref, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, account); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.Account, error) {
	var account models.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	if err := r.db.GetContext(ctx, &account, query, arg); err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByUID returns sql.ErrNoRows when no account owns uid.
func (r *AccountRepository) FindByUID(ctx context.Context, uid string) (*models.Account, error) {
	return r.findOne(ctx, "uid = $1", uid)
}

// FindByExternalID returns sql.ErrNoRows when the identity is not linked.
func (r *AccountRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	return r.findOne(ctx, "external_id = $1", externalID)
}

// FindByEmail matches case-insensitively and returns the oldest account.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// ListPendingInvitations returns up to limit accounts with no identity and no invitation.
func (r *AccountRepository) ListPendingInvitations(ctx context.Context, limit int) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + pendingInvitationPredicate + ` ORDER BY created_at, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}
	return accounts, nil
}

// CountPendingInvitations counts accounts still waiting for an invitation.
func (r *AccountRepository) CountPendingInvitations(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM accounts WHERE `+pendingInvitationPredicate); err != nil {
		return 0, fmt.Errorf("count pending invitations: %w", err)
	}
	return total, nil
}

// MarkInvited stamps an invitation. It only touches accounts still matching the
// pending predicate and reports whether a row changed.
func (r *AccountRepository) MarkInvited(ctx context.Context, id, invitationID string, at time.Time) (bool, error) {
	query := `UPDATE accounts SET invitation_id = $2, invitation_sent = TRUE, invitation_sent_at = $3, updated_at = $3
        WHERE id = $1 AND ` + pendingInvitationPredicate
	res, err := r.db.ExecContext(ctx, query, id, invitationID, at)
	if err != nil {
		return false, fmt.Errorf("mark account %s invited: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark account %s invited: %w", id, err)
	}
	return affected > 0, nil
}

// LinkIdentity ties an existing account to an identity provider user.
func (r *AccountRepository) LinkIdentity(ctx context.Context, id, externalID string, at time.Time) error {
	const query = `UPDATE accounts SET external_id = $2, invitation_sent = TRUE, invitation_sent_at = COALESCE(invitation_sent_at, $3),
        linked_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, externalID, at); err != nil {
		return fmt.Errorf("link account %s: %w", id, err)
	}
	return nil
}

// UpdateIdentityProfile refreshes name and email for a linked identity and
// reports the number of rows changed.
func (r *AccountRepository) UpdateIdentityProfile(ctx context.Context, externalID, name, email string) (int64, error) {
	const query = `UPDATE accounts SET name = $2, email = $3, updated_at = $4 WHERE external_id = $1`
	res, err := r.db.ExecContext(ctx, query, externalID, name, email, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("update identity profile %s: %w", externalID, err)
	}
	return res.RowsAffected()
}

// AttachAlumni binds a webhook-created account to a freshly registered alumni record.
func (r *AccountRepository) AttachAlumni(ctx context.Context, exec sqlx.ExtContext, id, uid, alumniRef string, verified bool) error {
	const query = `UPDATE accounts SET uid = $2, alumni_ref = $3, verified = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, uid, alumniRef, verified, time.Now().UTC()); err != nil {
		return fmt.Errorf("attach alumni to account %s: %w", id, err)
	}
	return nil
}

// SetVerified toggles verification for the account owning uid and returns the
// updated row, or sql.ErrNoRows.
func (r *AccountRepository) SetVerified(ctx context.Context, uid string, verified bool) (*models.Account, error) {
	query := `UPDATE accounts SET verified = $2, updated_at = $3 WHERE uid = $1 RETURNING ` + accountColumns
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, uid, verified, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &account, nil
}
