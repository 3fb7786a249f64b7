package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/utils"
)

// mysqlDuplicateEntry is the MySQL error number raised when an insert
// violates a unique index.
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique-index violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, email, password_hash, role, coach_id, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		coachID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &coachID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if coachID.Valid {
		cid := uint64(coachID.Int64)
		u.CoachID = &cid
	}
	return u, nil
}

// Create inserts a user and returns its id.  The email is normalized
// to lower case; a duplicate email surfaces as ErrEmailExists.  For
// members, coachID links the account to the coach they train with.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, coachID *uint64, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var cid interface{}
	if coachID != nil {
		cid = *coachID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, coach_id) VALUES (?,?,?,?,?,?)",
		firstName, lastName, email, hash, role, cid)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// CoachSummary is the public projection of a coach account used by
// the browse endpoint members see while registering.
type CoachSummary struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ListCoaches returns every coach account ordered by name.
func (r *UserRepo) ListCoaches(ctx context.Context) ([]CoachSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM users WHERE role=? ORDER BY last_name, first_name",
		model.RoleCoach)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coaches := make([]CoachSummary, 0)
	for rows.Next() {
		var c CoachSummary
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}
