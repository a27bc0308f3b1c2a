package router

import (
	"context"
	"net/http"
	"testing"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/storage"
	"billed/internal/store"
	"billed/internal/store/storetest"
	"billed/internal/ui/containers"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var employee = model.Session{Type: model.UserTypeEmployee, Email: "a@a", Status: model.SessionStatusConnected}

type fixture struct {
	doc     *dom.Document
	storage *storage.Memory
	store   *storetest.MockStore
	errs    []error
}

func newFixture(t *testing.T, user *model.Session) *fixture {
	t.Helper()
	f := &fixture{doc: dom.NewDocument(), storage: storage.NewMemory(), store: storetest.NewMockStore()}
	f.doc.CreateRoot()
	if user != nil {
		require.NoError(t, storage.SaveUser(context.Background(), f.storage, *user))
	}
	return f
}

func (f *fixture) router(t *testing.T) *Router {
	t.Helper()
	r, err := New(context.Background(), Config{
		Document: f.doc,
		Storage:  f.storage,
		Store:    func(model.Session) store.Store { return f.store },
		Auth: containers.AuthenticatorFunc(func(context.Context, string, string, model.UserType) error {
			return nil
		}),
		OnError: func(err error) { f.errs = append(f.errs, err) },
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	return r
}

func TestRouter_NewBillHighlightsMailIcon(t *testing.T) {
	f := newFixture(t, &employee)
	r := f.router(t)

	require.NoError(t, r.OnNavigate(context.Background(), routes.NewBill))

	mail, err := f.doc.GetByTestID("icon-mail")
	require.NoError(t, err)
	assert.Equal(t, "active-icon", mail.ClassName())
	window, err := f.doc.GetByTestID("icon-window")
	require.NoError(t, err)
	assert.Empty(t, window.ClassName())
	assert.NotNil(t, r.NewBill())
	assert.NotNil(t, f.doc.QueryByTestID("form-new-bill"))
}

func TestRouter_BillsHighlightsWindowIcon(t *testing.T) {
	f := newFixture(t, &employee)
	f.store.BillsAPI.On("List", mock.Anything).Return(storetest.Fixtures(), nil)
	r := f.router(t)

	require.NoError(t, r.OnNavigate(context.Background(), routes.NewBill))
	require.NoError(t, r.OnNavigate(context.Background(), routes.Bills))

	window, _ := f.doc.GetByTestID("icon-window")
	assert.Equal(t, "active-icon", window.ClassName())
	mail, _ := f.doc.GetByTestID("icon-mail")
	assert.Empty(t, mail.ClassName())
	assert.Len(t, f.doc.QueryAllByTestID("bill-row"), 4)
	assert.Nil(t, r.NewBill())
	assert.Equal(t, routes.Bills, r.Pathname())
}

func TestRouter_BillsListErrors(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		f := newFixture(t, &employee)
		storeErr := common.NewStoreError(status, nil)
		f.store.BillsAPI.On("List", mock.Anything).Return(nil, storeErr).Once()
		r := f.router(t)

		err := r.OnNavigate(context.Background(), routes.Bills)
		assert.ErrorIs(t, err, storeErr)

		msg, err := f.doc.GetByText(storeErr.Error())
		require.NoError(t, err)
		assert.Equal(t, "error-message", msg.TestID())
		assert.Len(t, f.errs, 1)
	}
}

func TestRouter_UnknownAndForbiddenPathsLeaveDocument(t *testing.T) {
	f := newFixture(t, &employee)
	r := f.router(t)
	require.NoError(t, r.OnNavigate(context.Background(), routes.NewBill))
	before, err := f.doc.HTML()
	require.NoError(t, err)

	assert.ErrorIs(t, r.OnNavigate(context.Background(), "/nowhere"), routes.ErrUnknownPath)
	err = r.OnNavigate(context.Background(), routes.Dashboard)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.ErrorIs(t, err, common.ErrForbidden)

	after, err := f.doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, routes.NewBill, r.Pathname())
}

func TestRouter_AnonymousOnlyReachesLogin(t *testing.T) {
	f := newFixture(t, nil)
	r := f.router(t)
	assert.Nil(t, r.User())

	assert.ErrorIs(t, r.OnNavigate(context.Background(), routes.Bills), ErrNotAllowed)
	require.NoError(t, r.OnNavigate(context.Background(), routes.Login))
	assert.NotNil(t, r.Login())
	assert.NotNil(t, f.doc.QueryByTestID("form-employee"))
}

func TestRouter_LoginThenSubmitBill(t *testing.T) {
	f := newFixture(t, nil)
	f.store.BillsAPI.On("List", mock.Anything).Return([]model.Bill{}, nil)
	f.store.BillsAPI.On("Create", mock.Anything, mock.Anything).
		Return(&store.CreateResponse{FileURL: "http://billed.test/files/f1", Key: "b1"}, nil).Once()
	f.store.BillsAPI.On("Update", mock.Anything, mock.MatchedBy(func(req store.UpdateRequest) bool {
		return req.Selector == "b1" && req.Bill.Email == "a@a"
	})).Return(&model.Bill{ID: "b1"}, nil).Once()
	r := f.router(t)
	ctx := context.Background()

	require.NoError(t, r.OnNavigate(ctx, routes.Login))
	for testID, v := range map[string]string{"employee-email-input": "a@a", "employee-password-input": "a"} {
		el, err := f.doc.GetByTestID(testID)
		require.NoError(t, err)
		require.NoError(t, dom.FireChange(ctx, el, v))
	}
	btn, err := f.doc.GetByTestID("employee-login-button")
	require.NoError(t, err)
	require.NoError(t, dom.Click(ctx, btn))
	assert.Equal(t, routes.Bills, r.Pathname())
	require.NotNil(t, r.User())

	require.NoError(t, r.OnNavigate(ctx, routes.NewBill))
	input, err := f.doc.GetByTestID("file")
	require.NoError(t, err)
	require.NoError(t, dom.FireFileChange(ctx, input, model.FileAttachment{Name: "image.png", ContentType: "image/png", Data: []byte("img")}))
	for testID, v := range map[string]string{"datepicker": "2024-04-24", "amount": "26"} {
		el, err := f.doc.GetByTestID(testID)
		require.NoError(t, err)
		require.NoError(t, dom.FireChange(ctx, el, v))
	}
	form, err := f.doc.GetByTestID("form-new-bill")
	require.NoError(t, err)
	require.NoError(t, dom.FireSubmit(ctx, form))

	f.store.BillsAPI.AssertExpectations(t)
	assert.Equal(t, routes.Bills, r.Pathname())
	assert.Empty(t, f.errs)
}
