package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "middle_name", "last_name", "handle", "email", "contact_number", "age", "gender", "password_hash", "verified", "created_at", "updated_at"})
}

func TestUserRepositoryFindByIdentifier(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().
		AddRow("u1", "Asha", nil, "Devi", "asha01", "asha@example.com", "9876543210", 32, "Female", "hash", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, middle_name, last_name, handle, email, contact_number, age, gender, password_hash, verified, created_at, updated_at FROM users WHERE email = $1 OR contact_number = $1 LIMIT 1`)).
		WithArgs("asha@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByIdentifier(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "asha01", user.Handle)
	assert.True(t, user.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIdentifierNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIdentifier(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryFindConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"email", "handle", "contact_number"}).
		AddRow("asha@example.com", "other", "1111111111")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT email, handle, contact_number FROM users WHERE email = $1 OR handle = $2 OR contact_number = $3 LIMIT 1`)).
		WithArgs("asha@example.com", "asha01", "9876543210").
		WillReturnRows(rows)

	field, err := repo.FindConflict(context.Background(), "asha@example.com", "asha01", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "email", field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindConflictNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT email, handle, contact_number").WillReturnError(sql.ErrNoRows)

	field, err := repo.FindConflict(context.Background(), "new@example.com", "new01", "2222222222")
	require.NoError(t, err)
	assert.Empty(t, field)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{FirstName: "Asha", LastName: "Devi", Handle: "asha01", Email: "asha@example.com", ContactNumber: "9876543210", Age: 32, Gender: "Female", PasswordHash: "hash"}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().
		AddRow("u1", "Asha", nil, "Devi", "asha01", "asha@example.com", "9876543210", 32, "Female", "hash", false, time.Now(), time.Now()).
		AddRow("u2", "Binod", nil, "Das", "binod02", "binod@example.com", "9123456780", 41, "Male", "hash", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, first_name, middle_name, last_name, handle, email, contact_number, age, gender, password_hash, verified, created_at, updated_at FROM users ORDER BY created_at ASC`)).
		WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryVerify(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET verified = TRUE, updated_at = $2 WHERE id = $1`)).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Verify(context.Background(), "u1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryVerifyMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET verified").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Verify(context.Background(), "missing", time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"total", "verified", "pending"}).AddRow(10, 7, 3)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(rows)

	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Total)
	assert.Equal(t, 7, counts.Verified)
	assert.Equal(t, 3, counts.Pending)
}
