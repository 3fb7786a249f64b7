package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-booking-service/internal/config"
	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/repository"
	"github.com/iliyamo/coach-booking-service/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func jsonContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterValidation(t *testing.T) {
	t.Run("member without coach_id is rejected", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/register",
			`{"first_name":"Iris","last_name":"Webb","email":"iris@example.com","password":"secret","role":"MEMBER"}`)

		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "coach_id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("coach_id pointing at a member is rejected", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
			WithArgs(uint64(21)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password_hash", "role", "coach_id", "created_at", "updated_at"}).
				AddRow(21, "Iris", "Webb", "iris@example.com", "x", model.RoleMember, nil, now, now))

		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/register",
			`{"first_name":"Noa","last_name":"Lim","email":"noa@example.com","password":"secret","role":"MEMBER","coach_id":21}`)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing names are rejected", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/register",
			`{"email":"iris@example.com","password":"secret","role":"COACH"}`)

		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLogin(t *testing.T) {
	userCols := []string{"id", "first_name", "last_name", "email", "password_hash", "role", "coach_id", "created_at", "updated_at"}

	t.Run("unknown email", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows(userCols))

		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"ghost@example.com","password":"secret"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		hash, err := utils.HashPassword("right-password", 4)
		require.NoError(t, err)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
			WithArgs("iris@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(21, "Iris", "Webb", "iris@example.com", hash, model.RoleMember, nil, now, now))

		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"iris@example.com","password":"wrong-password"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("successful login returns both tokens", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		hash, err := utils.HashPassword("right-password", 4)
		require.NoError(t, err)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
			WithArgs("iris@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(21, "Iris", "Webb", "iris@example.com", hash, model.RoleMember, 3, now, now))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WillReturnResult(sqlmock.NewResult(1, 1))

		c, rec := jsonContext(t, http.MethodPost, "/v1/auth/login",
			`{"email":"iris@example.com","password":"right-password"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"access"`)
		assert.Contains(t, rec.Body.String(), `"refresh"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
