// Package store is the client side of the bills API: the boundary every page
// controller talks to.
package store

import (
	"context"

	"billed/internal/domain/model"
)

// Store exposes the remote collections. Only bills are used by the pages.
type Store interface {
	Bills() BillsAPI
}

// BillsAPI rejects with *common.StoreError carrying a "Erreur <status>" message.
type BillsAPI interface {
	List(ctx context.Context) ([]model.Bill, error)
	// Create uploads a receipt and opens the draft bill it belongs to.
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	// Update completes or changes the bill identified by req.Selector.
	Update(ctx context.Context, req UpdateRequest) (*model.Bill, error)
	// Discard drops a draft bill that will not be submitted.
	Discard(ctx context.Context, selector string) error
}

type CreateRequest struct {
	File  model.FileAttachment
	Email string
}

type CreateResponse struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}

type UpdateRequest struct {
	Selector string
	Bill     model.Bill
}
