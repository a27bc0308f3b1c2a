package containers

import (
	"context"
	"testing"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/storage"
	"billed/internal/ui/dom"
	"billed/internal/ui/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginFixture struct {
	doc     *dom.Document
	nav     *navRecorder
	errs    *errRecorder
	storage *storage.Memory
	calls   []model.UserType
}

func loginPage(t *testing.T, authErr error) *loginFixture {
	t.Helper()
	markup, err := views.LoginUI()
	f := &loginFixture{
		doc:     mount(t, markup, err),
		nav:     &navRecorder{},
		errs:    &errRecorder{},
		storage: storage.NewMemory(),
	}
	NewLogin(LoginConfig{
		Document:  f.doc,
		Navigator: f.nav,
		Storage:   f.storage,
		OnError:   f.errs.OnError,
		Auth: AuthenticatorFunc(func(_ context.Context, email, password string, userType model.UserType) error {
			f.calls = append(f.calls, userType)
			return authErr
		}),
	})
	return f
}

func (f *loginFixture) submit(t *testing.T, prefix, email, password string) error {
	t.Helper()
	fill(t, f.doc, map[string]string{
		prefix + "-email-input":    email,
		prefix + "-password-input": password,
	})
	form, err := f.doc.GetByTestID("form-" + prefix)
	require.NoError(t, err)
	return dom.FireSubmit(context.Background(), form)
}

func TestLogin_Employee(t *testing.T) {
	f := loginPage(t, nil)

	require.NoError(t, f.submit(t, "employee", "johndoe@email.com", "azerty"))

	user, err := storage.LoadUser(context.Background(), f.storage)
	require.NoError(t, err)
	assert.Equal(t, model.Session{Type: model.UserTypeEmployee, Email: "johndoe@email.com", Status: "connected"}, *user)
	assert.Equal(t, []model.UserType{model.UserTypeEmployee}, f.calls)
	assert.Equal(t, []string{"/bills"}, f.nav.Paths())
}

func TestLogin_Admin(t *testing.T) {
	f := loginPage(t, nil)

	require.NoError(t, f.submit(t, "admin", "admin@company.tld", "admin"))

	user, err := storage.LoadUser(context.Background(), f.storage)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, []string{"/dashboard"}, f.nav.Paths())
}

func TestLogin_RejectedCredentials(t *testing.T) {
	f := loginPage(t, common.ErrUnauthorized)

	err := f.submit(t, "employee", "johndoe@email.com", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = storage.LoadUser(context.Background(), f.storage)
	assert.ErrorIs(t, err, storage.ErrNoSession)
	assert.Empty(t, f.nav.Paths())

	msg, err := f.doc.GetByTestID("login-error")
	require.NoError(t, err)
	assert.False(t, msg.HasAttr("hidden"))
	assert.Len(t, f.errs.Errors(), 1)
}

func TestLogin_EmptyFields(t *testing.T) {
	f := loginPage(t, nil)

	err := f.submit(t, "admin", "", "")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, f.calls)
}
