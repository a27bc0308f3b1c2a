// Package storetest provides a testify mock of store.Store.
package storetest

import (
	"context"

	"billed/internal/domain/model"
	"billed/internal/store"

	"github.com/stretchr/testify/mock"
)

// MockStore returns its Bills mock from Bills(). Calls to Bills() are recorded
// only when an expectation is set for them.
type MockStore struct {
	mock.Mock
	BillsAPI *MockBills
}

func NewMockStore() *MockStore {
	return &MockStore{BillsAPI: &MockBills{}}
}

func (m *MockStore) Bills() store.BillsAPI {
	for _, c := range m.ExpectedCalls {
		if c.Method == "Bills" {
			args := m.Called()
			return args.Get(0).(store.BillsAPI)
		}
	}
	return m.BillsAPI
}

type MockBills struct {
	mock.Mock
}

func (m *MockBills) List(ctx context.Context) ([]model.Bill, error) {
	args := m.Called(ctx)
	bills, _ := args.Get(0).([]model.Bill)
	return bills, args.Error(1)
}

func (m *MockBills) Create(ctx context.Context, req store.CreateRequest) (*store.CreateResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*store.CreateResponse)
	return resp, args.Error(1)
}

func (m *MockBills) Update(ctx context.Context, req store.UpdateRequest) (*model.Bill, error) {
	args := m.Called(ctx, req)
	bill, _ := args.Get(0).(*model.Bill)
	return bill, args.Error(1)
}

func (m *MockBills) Discard(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

// Fixtures mirrors the bills shown on the employee page in the demo data.
func Fixtures() []model.Bill {
	return []model.Bill{
		{
			ID: "47qAXb6fIm2zOKkLzMro", Email: "a@a", Type: "Hôtel et logement", Name: "encore",
			Date: "2004-04-04", Amount: 400, VAT: 80, Pct: 20, Commentary: "séminaire billed",
			FileURL: "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg", FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status: model.BillStatusPending,
		},
		{
			ID: "BeKy5Mo4jkmdfPGYpTxZ", Email: "a@a", Type: "Transports", Name: "test1",
			Date: "2001-01-01", Amount: 100, VAT: 0, Pct: 20, Commentary: "plop",
			FileURL: "https://test.storage.tld/v0/b/billable-677b6.a…61.jpeg", FileName: "1592770761.jpeg",
			Status: model.BillStatusRefused, CommentAdmin: "en fait non",
		},
		{
			ID: "UIUZtnPQvnbFnB0ozvJh", Email: "a@a", Type: "Services en ligne", Name: "test3",
			Date: "2003-03-03", Amount: 300, VAT: 60, Pct: 20, Commentary: "",
			FileURL: "https://test.storage.tld/v0/b/billable-677b6.a…dur.png", FileName: "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			Status: model.BillStatusAccepted, CommentAdmin: "bon bah d'accord",
		},
		{
			ID: "qcCK3SzECmaZAGRrHjaC", Email: "a@a", Type: "Restaurants et bars", Name: "test2",
			Date: "2002-02-02", Amount: 200, VAT: 40, Pct: 20, Commentary: "test2",
			FileURL: "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg", FileName: "preview-facture-free-201801-pdf-1.jpg",
			Status: model.BillStatusRefused, CommentAdmin: "pas la bonne facture",
		},
	}
}
