package tokens

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`
	findQuery   = `(?s)^SELECT\s+user_id,\s*expires_at,\s*renewable\s+FROM\s+tokens\s+WHERE\s+token\s*=\s*\$1\s+AND\s+\(expires_at\s+IS\s+NULL\s+OR\s+expires_at\s*>\s*\$2\)\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	value := bytes.Repeat([]byte{0xAB}, models.TokenSize)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(insertQuery).
		WithArgs(value, "u1", sql.NullTime{Time: exp, Valid: true}, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Token{UserID: "u1", Value: value, Expiry: &exp, Renewable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_NoExpiry(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), "u1", sql.NullTime{}, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), &models.Token{UserID: "u1", Value: []byte("x")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), false).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Token{UserID: "u1", Value: []byte("x")})
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	mock.ExpectQuery(findQuery).
		WithArgs([]byte("tok"), now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "renewable"}).AddRow("u1", exp, true))

	got, err := repo.Find(context.Background(), []byte("tok"), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || !got.Renewable || got.Expiry == nil || !got.Expiry.Equal(exp) || string(got.Value) != "tok" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFind_NeverExpires(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).
		WithArgs([]byte("tok"), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "renewable"}).AddRow("u1", nil, false))

	got, err := repo.Find(context.Background(), []byte("tok"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Expiry != nil {
		t.Fatalf("expected no expiry, got %v", got.Expiry)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).
		WithArgs([]byte("missing"), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), []byte("missing"), time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).
		WithArgs([]byte("tok"), sqlmock.AnyArg()).
		WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), []byte("tok"), time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
