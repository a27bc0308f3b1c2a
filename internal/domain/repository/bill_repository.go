package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billed/internal/common"
	"billed/internal/domain/model"
)

type BillRepository interface {
	// CreateDraft stores a draft bill together with its receipt.
	CreateDraft(ctx context.Context, bill *model.Bill, file *model.StoredFile) error
	FindByID(ctx context.Context, id string) (*model.Bill, error)
	// List returns submitted bills, most recent first. An empty email lists
	// every user's bills.
	List(ctx context.Context, email string) ([]model.Bill, error)
	Update(ctx context.Context, bill *model.Bill) error
	FindFile(ctx context.Context, id string) (*model.StoredFile, error)
	// DeleteDraft removes a bill that was never submitted, with its receipt.
	DeleteDraft(ctx context.Context, id string) error
}

type pgBillRepository struct {
	db *sql.DB
}

func NewPgBillRepository(db *sql.DB) BillRepository {
	return &pgBillRepository{db: db}
}

const billColumns = `id, email, type, name, date, amount, vat, pct, commentary,
	file_url, file_name, status, comment_admin, draft, created_at, updated_at`

func (r *pgBillRepository) CreateDraft(ctx context.Context, bill *model.Bill, file *model.StoredFile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgBillRepository.CreateDraft: begin transaction: %w", err)
	}
	defer tx.Rollback()

	billQuery := `INSERT INTO bills (id, email, file_url, file_name, status, draft)
	              VALUES ($1, $2, $3, $4, $5, TRUE)
	              RETURNING created_at, updated_at`
	err = tx.QueryRowContext(ctx, billQuery, bill.ID, bill.Email, bill.FileURL, bill.FileName, string(bill.Status)).
		Scan(&bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgBillRepository.CreateDraft: insert bill: %w", err)
	}

	fileQuery := `INSERT INTO bill_files (id, bill_id, file_name, content_type, data)
	              VALUES ($1, $2, $3, $4, $5)
	              RETURNING created_at`
	err = tx.QueryRowContext(ctx, fileQuery, file.ID, bill.ID, file.FileName, file.ContentType, file.Data).
		Scan(&file.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgBillRepository.CreateDraft: insert file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgBillRepository.CreateDraft: commit: %w", err)
	}
	bill.Draft = true
	file.BillID = bill.ID
	return nil
}

func (r *pgBillRepository) FindByID(ctx context.Context, id string) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	bill, err := scanBill(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgBillRepository.FindByID: %w", err)
	}
	return bill, nil
}

func (r *pgBillRepository) List(ctx context.Context, email string) ([]model.Bill, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + billColumns + ` FROM bills WHERE draft = FALSE`)
	args := []interface{}{}
	if email != "" {
		args = append(args, email)
		sb.WriteString(` AND email = $1`)
	}
	sb.WriteString(` ORDER BY date DESC, created_at DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgBillRepository.List: %w", err)
	}
	defer rows.Close()

	bills := []model.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBillRepository.List: scan: %w", err)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBillRepository.List: rows: %w", err)
	}
	return bills, nil
}

func (r *pgBillRepository) Update(ctx context.Context, bill *model.Bill) error {
	query := `UPDATE bills
	          SET type = $2, name = $3, date = $4, amount = $5, vat = $6, pct = $7,
	              commentary = $8, status = $9, comment_admin = $10, draft = FALSE, updated_at = now()
	          WHERE id = $1
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		bill.ID, bill.Type, bill.Name, bill.Date, bill.Amount, bill.VAT, bill.Pct,
		bill.Commentary, string(bill.Status), bill.CommentAdmin,
	).Scan(&bill.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("bill %s: %w", bill.ID, common.ErrNotFound)
		}
		return fmt.Errorf("pgBillRepository.Update: %w", err)
	}
	bill.Draft = false
	return nil
}

func (r *pgBillRepository) FindFile(ctx context.Context, id string) (*model.StoredFile, error) {
	query := `SELECT id, bill_id, file_name, content_type, data, created_at
	          FROM bill_files WHERE id = $1`
	file := &model.StoredFile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.BillID, &file.FileName, &file.ContentType, &file.Data, &file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgBillRepository.FindFile: %w", err)
	}
	return file, nil
}

func (r *pgBillRepository) DeleteDraft(ctx context.Context, id string) error {
	// bill_files rows go with the bill (ON DELETE CASCADE).
	query := `DELETE FROM bills WHERE id = $1 AND draft = TRUE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgBillRepository.DeleteDraft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgBillRepository.DeleteDraft: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("draft bill %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*model.Bill, error) {
	bill := &model.Bill{}
	var status string
	err := row.Scan(
		&bill.ID, &bill.Email, &bill.Type, &bill.Name, &bill.Date, &bill.Amount, &bill.VAT, &bill.Pct,
		&bill.Commentary, &bill.FileURL, &bill.FileName, &status, &bill.CommentAdmin, &bill.Draft,
		&bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	bill.Status = model.BillStatus(status)
	return bill, nil
}
