package store

import (
	"context"

	"billed/internal/app/service"
	"billed/internal/common"
	"billed/internal/domain/model"
)

// Local serves the store in-process from the bill service, on behalf of one
// session user.
type Local struct {
	bills *service.BillService
	user  model.Session
}

func NewLocal(bills *service.BillService, user model.Session) *Local {
	return &Local{bills: bills, user: user}
}

func (l *Local) Bills() BillsAPI {
	return localBills{l}
}

type localBills struct{ l *Local }

func (b localBills) List(ctx context.Context) ([]model.Bill, error) {
	bills, err := b.l.bills.List(ctx, b.l.user)
	if err != nil {
		return nil, common.StoreErrorFrom(err)
	}
	return bills, nil
}

func (b localBills) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	email := req.Email
	if email == "" {
		email = b.l.user.Email
	}
	if email != b.l.user.Email && !b.l.user.IsAdmin() {
		return nil, common.StoreErrorFrom(common.ErrForbidden)
	}
	res, err := b.l.bills.Upload(ctx, email, req.File)
	if err != nil {
		return nil, common.StoreErrorFrom(err)
	}
	return &CreateResponse{FileURL: res.FileURL, Key: res.Key}, nil
}

func (b localBills) Update(ctx context.Context, req UpdateRequest) (*model.Bill, error) {
	bill, err := b.l.bills.Update(ctx, b.l.user, req.Selector, req.Bill)
	if err != nil {
		return nil, common.StoreErrorFrom(err)
	}
	return bill, nil
}

func (b localBills) Discard(ctx context.Context, selector string) error {
	if err := b.l.bills.DiscardDraft(ctx, b.l.user, selector); err != nil {
		return common.StoreErrorFrom(err)
	}
	return nil
}
