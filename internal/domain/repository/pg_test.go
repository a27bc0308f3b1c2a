package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"billed/internal/common"
	"billed/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billRowColumns = []string{
	"id", "email", "type", "name", "date", "amount", "vat", "pct", "commentary",
	"file_url", "file_name", "status", "comment_admin", "draft", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestPgBills_CreateDraftCommitsBillAndFile(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2024, 4, 24, 10, 0, 0, 0, time.UTC)

	bill := &model.Bill{ID: "b1", Email: "e@e", FileURL: "http://billed.test/files/f1", FileName: "ticket.png", Status: model.BillStatusPending}
	file := &model.StoredFile{ID: "f1", FileName: "ticket.png", ContentType: "image/png", Data: []byte("img")}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bills (id, email, file_url, file_name, status, draft)`)).
		WithArgs("b1", "e@e", "http://billed.test/files/f1", "ticket.png", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bill_files (id, bill_id, file_name, content_type, data)`)).
		WithArgs("f1", "b1", "ticket.png", "image/png", []byte("img")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	require.NoError(t, NewPgBillRepository(db).CreateDraft(context.Background(), bill, file))
	assert.True(t, bill.Draft)
	assert.Equal(t, created, bill.CreatedAt)
	assert.Equal(t, "b1", file.BillID)
	assert.Equal(t, created, file.CreatedAt)
}

func TestPgBills_CreateDraftRollsBackOnFileError(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bills`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bill_files`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	bill := &model.Bill{ID: "b1", Email: "e@e", Status: model.BillStatusPending}
	err := NewPgBillRepository(db).CreateDraft(context.Background(), bill, &model.StoredFile{ID: "f1"})
	assert.ErrorContains(t, err, "insert file: disk full")
	assert.False(t, bill.Draft)
}

func TestPgBills_ListHidesDrafts(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(billRowColumns).
			AddRow("b1", "e@e", "Transports", "Avion", "2024-04-24", 26, 56, 4, "vol", "http://billed.test/files/f1", "ticket.png", "accepted", "ok", false, now, now)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills WHERE draft = FALSE AND email = $1 ORDER BY date DESC, created_at DESC`)).
		WithArgs("e@e").
		WillReturnRows(rows())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills WHERE draft = FALSE ORDER BY date DESC, created_at DESC`)).
		WillReturnRows(rows())

	repo := NewPgBillRepository(db)
	bills, err := repo.List(context.Background(), "e@e")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, model.BillStatusAccepted, bills[0].Status)
	assert.Equal(t, 26, bills[0].Amount)
	assert.Equal(t, "ok", bills[0].CommentAdmin)

	bills, err = repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestPgBills_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgBillRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE bills`)).
		WillReturnError(sql.ErrNoRows)
	err = repo.Update(ctx, &model.Bill{ID: "missing"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bill_files WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindFile(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills WHERE id = $1`)).
		WithArgs("b1").
		WillReturnError(errors.New("connection reset"))
	_, err = repo.FindByID(ctx, "b1")
	assert.ErrorContains(t, err, "pgBillRepository.FindByID: connection reset")
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestPgBills_UpdateSubmitsDraft(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	bill := &model.Bill{
		ID: "b1", Type: "Transports", Name: "Avion", Date: "2024-04-24", Amount: 26, VAT: 56, Pct: 4,
		Commentary: "vol", Status: model.BillStatusPending, Draft: true,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`draft = FALSE, updated_at = now()`)).
		WithArgs("b1", "Transports", "Avion", "2024-04-24", int64(26), int64(56), int64(4), "vol", "pending", "").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	require.NoError(t, NewPgBillRepository(db).Update(context.Background(), bill))
	assert.False(t, bill.Draft)
	assert.Equal(t, now, bill.UpdatedAt)
}

func TestPgBills_DeleteDraft(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgBillRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bills WHERE id = $1 AND draft = TRUE`)).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteDraft(ctx, "b1"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bills WHERE id = $1 AND draft = TRUE`)).
		WithArgs("submitted").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteDraft(ctx, "submitted"), common.ErrNotFound)
}

func TestPgUsers_CreateConflict(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (id, email, hashed_password, type)`)).
		WithArgs("u1", "e@e", "hash", "Employee").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := NewPgUserRepository(db).Create(context.Background(), &model.User{
		ID: "u1", Email: "e@e", HashedPassword: "hash", Type: model.UserTypeEmployee,
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestPgUsers_Find(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgUserRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("a@a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "type", "created_at", "updated_at"}).
			AddRow("u1", "a@a", "hash", "Admin", now, now))
	user, err := repo.FindByEmail(ctx, "a@a")
	require.NoError(t, err)
	assert.Equal(t, model.UserTypeAdmin, user.Type)
	assert.Equal(t, "hash", user.HashedPassword)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
