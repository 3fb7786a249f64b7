package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-booking-service/internal/model"
)

// bcrypt's minimum cost keeps the hashing in these tests fast.
const testBcryptCost = 4

func newUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	insertQ := regexp.QuoteMeta("INSERT INTO users (first_name, last_name, email, password_hash, role, coach_id)")

	t.Run("member with coach link", func(t *testing.T) {
		repo, mock := newUserRepo(t)
		coachID := uint64(3)

		mock.ExpectExec(insertQ).
			WithArgs("Iris", "Webb", "iris@example.com", sqlmock.AnyArg(), model.RoleMember, coachID).
			WillReturnResult(sqlmock.NewResult(21, 1))

		id, err := repo.Create(ctx, "Iris", "Webb", "Iris@Example.com", "secret", model.RoleMember, &coachID, testBcryptCost)
		require.NoError(t, err)
		assert.Equal(t, uint64(21), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("coach without link stores NULL coach_id", func(t *testing.T) {
		repo, mock := newUserRepo(t)

		mock.ExpectExec(insertQ).
			WithArgs("Dana", "Cole", "dana@example.com", sqlmock.AnyArg(), model.RoleCoach, nil).
			WillReturnResult(sqlmock.NewResult(3, 1))

		id, err := repo.Create(ctx, "Dana", "Cole", "dana@example.com", "secret", model.RoleCoach, nil, testBcryptCost)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to ErrEmailExists", func(t *testing.T) {
		repo, mock := newUserRepo(t)

		mock.ExpectExec(insertQ).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		_, err := repo.Create(ctx, "Iris", "Webb", "iris@example.com", "secret", model.RoleMember, nil, testBcryptCost)
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListCoaches(t *testing.T) {
	repo, mock := newUserRepo(t)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name"}).
		AddRow(3, "Dana", "Cole").
		AddRow(9, "Omar", "Reyes")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role=? ORDER BY last_name, first_name")).
		WithArgs(model.RoleCoach).
		WillReturnRows(rows)

	coaches, err := repo.ListCoaches(context.Background())
	require.NoError(t, err)
	require.Len(t, coaches, 2)
	assert.Equal(t, "Dana", coaches[0].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
