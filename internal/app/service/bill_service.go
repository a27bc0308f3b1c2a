package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type BillService struct {
	billRepo      repository.BillRepository
	publicBaseURL string
	log           *zap.Logger
}

func NewBillService(billRepo repository.BillRepository, publicBaseURL string, log *zap.Logger) *BillService {
	return &BillService{
		billRepo:      billRepo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// UploadResult is what the store returns for a receipt upload: the public URL
// of the file and the key of the draft bill created for it.
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	Key      string `json:"key"`
	FileName string `json:"fileName"`
}

// Upload stores a receipt and opens a draft bill for it.
func (s *BillService) Upload(ctx context.Context, email string, file model.FileAttachment) (*UploadResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, common.Errorf("missing uploader email: %w", common.ErrBadRequest)
	}
	if !file.IsAllowed() {
		return nil, common.Errorf("file %q: %w", file.Name, common.ErrUnsupportedFileType)
	}
	if len(file.Data) == 0 {
		return nil, common.Errorf("file %q is empty: %w", file.Name, common.ErrValidation)
	}

	ext := file.Extension()
	stored := &model.StoredFile{
		ID:          uuid.NewString(),
		FileName:    storedFileName(file.Name, ext),
		ContentType: model.AllowedFileExtensions[ext],
		Data:        file.Data,
	}
	bill := &model.Bill{
		ID:       uuid.NewString(),
		Email:    email,
		FileURL:  s.publicBaseURL + "/files/" + stored.ID,
		FileName: file.Name,
		Status:   model.BillStatusPending,
	}

	if err := s.billRepo.CreateDraft(ctx, bill, stored); err != nil {
		return nil, common.Errorf("failed to store receipt: %w", err)
	}

	s.log.Info("receipt uploaded",
		zap.String("bill_id", bill.ID),
		zap.String("file_id", stored.ID),
		zap.String("email", email),
		zap.Int("bytes", len(file.Data)))
	return &UploadResult{FileURL: bill.FileURL, Key: bill.ID, FileName: bill.FileName}, nil
}

func storedFileName(name, ext string) string {
	base := slug.Make(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "receipt"
	}
	return base + "." + ext
}

// List returns the bills visible to the requester: every submitted bill for an
// admin, the requester's own bills otherwise.
func (s *BillService) List(ctx context.Context, requester model.Session) ([]model.Bill, error) {
	email := requester.Email
	if requester.IsAdmin() {
		email = ""
	}
	bills, err := s.billRepo.List(ctx, email)
	if err != nil {
		return nil, common.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (s *BillService) Get(ctx context.Context, requester model.Session, id string) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Draft || (!requester.IsAdmin() && bill.Email != requester.Email) {
		// Not revealing other users' bills.
		return nil, common.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	return bill, nil
}

// Update completes a draft bill or changes a submitted one. Employees can only
// edit their own bills and keep them pending; admins only decide the status.
func (s *BillService) Update(ctx context.Context, requester model.Session, id string, patch model.Bill) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if requester.IsAdmin() {
		if bill.Draft {
			return nil, common.Errorf("bill %s has not been submitted: %w", id, common.ErrBadRequest)
		}
		if !patch.Status.Valid() {
			return nil, common.Errorf("invalid status %q: %w", patch.Status, common.ErrValidation)
		}
		bill.Status = patch.Status
		bill.CommentAdmin = patch.CommentAdmin
	} else {
		if bill.Email != requester.Email {
			return nil, common.Errorf("bill %s: %w", id, common.ErrForbidden)
		}
		if patch.Status != "" && patch.Status != model.BillStatusPending {
			return nil, common.Errorf("employees cannot set status %q: %w", patch.Status, common.ErrForbidden)
		}
		if err := validateBillFields(patch); err != nil {
			return nil, err
		}
		bill.Type = patch.Type
		bill.Name = patch.Name
		bill.Date = patch.Date
		bill.Amount = patch.Amount
		bill.VAT = patch.VAT
		bill.Pct = patch.Pct
		bill.Commentary = patch.Commentary
		bill.Status = model.BillStatusPending
	}

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, common.Errorf("failed to update bill: %w", err)
	}
	s.log.Info("bill updated",
		zap.String("bill_id", bill.ID),
		zap.String("status", string(bill.Status)),
		zap.String("by", requester.Email))
	return bill, nil
}

// DiscardDraft drops a receipt upload that will not be submitted. Only the
// uploader or an admin may discard it, and submitted bills are kept.
func (s *BillService) DiscardDraft(ctx context.Context, requester model.Session, id string) error {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() && bill.Email != requester.Email {
		return common.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	if !bill.Draft {
		return common.Errorf("bill %s has been submitted: %w", id, common.ErrConflict)
	}
	if err := s.billRepo.DeleteDraft(ctx, id); err != nil {
		return common.Errorf("failed to discard draft: %w", err)
	}
	s.log.Info("draft discarded", zap.String("bill_id", id), zap.String("by", requester.Email))
	return nil
}

func validateBillFields(b model.Bill) error {
	if strings.TrimSpace(b.Type) == "" {
		return common.Errorf("expense type is required: %w", common.ErrValidation)
	}
	if _, err := time.Parse(model.BillDateLayout, b.Date); err != nil {
		return common.Errorf("invalid date %q: %w", b.Date, common.ErrValidation)
	}
	if b.Amount < 0 || b.VAT < 0 || b.Pct < 0 {
		return common.Errorf("amount, vat and pct must be positive: %w", common.ErrValidation)
	}
	return nil
}

// File returns a stored receipt.
func (s *BillService) File(ctx context.Context, id string) (*model.StoredFile, error) {
	return s.billRepo.FindFile(ctx, id)
}

