package containers

import (
	"context"
	"fmt"
	"strings"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/platform/logger"
	"billed/internal/storage"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"

	"go.uber.org/zap"
)

// Authenticator checks credentials for a user type.
type Authenticator interface {
	Login(ctx context.Context, email, password string, userType model.UserType) error
}

type AuthenticatorFunc func(ctx context.Context, email, password string, userType model.UserType) error

func (f AuthenticatorFunc) Login(ctx context.Context, email, password string, userType model.UserType) error {
	return f(ctx, email, password, userType)
}

type LoginConfig struct {
	Document  *dom.Document
	Navigator routes.Navigator
	Storage   storage.Storage
	Auth      Authenticator
	OnError   func(error)
	Logger    *zap.Logger
}

// Login is the controller of the login page.
type Login struct {
	doc     *dom.Document
	nav     routes.Navigator
	storage storage.Storage
	auth    Authenticator
	onError func(error)
	log     *zap.Logger
}

func NewLogin(cfg LoginConfig) *Login {
	l := &Login{
		doc:     cfg.Document,
		nav:     cfg.Navigator,
		storage: cfg.Storage,
		auth:    cfg.Auth,
		onError: cfg.OnError,
		log:     logger.OrNop(cfg.Logger),
	}
	if form := l.doc.QueryByTestID("form-employee"); form != nil {
		form.AddEventListener(dom.EventSubmit, l.HandleSubmitEmployee)
	}
	if form := l.doc.QueryByTestID("form-admin"); form != nil {
		form.AddEventListener(dom.EventSubmit, l.HandleSubmitAdmin)
	}
	return l
}

func (l *Login) HandleSubmitEmployee(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	return l.submit(ctx, "employee", model.UserTypeEmployee)
}

func (l *Login) HandleSubmitAdmin(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	return l.submit(ctx, "admin", model.UserTypeAdmin)
}

func (l *Login) submit(ctx context.Context, prefix string, userType model.UserType) error {
	value := func(testID string) string {
		if el := l.doc.QueryByTestID(testID); el != nil {
			return el.Value()
		}
		return ""
	}
	email := strings.TrimSpace(value(prefix + "-email-input"))
	password := value(prefix + "-password-input")
	if email == "" || password == "" {
		return l.fail(fmt.Errorf("email and password are required: %w", common.ErrValidation))
	}

	if err := l.auth.Login(ctx, email, password, userType); err != nil {
		return l.fail(err)
	}

	user := model.Session{Type: userType, Email: email, Status: model.SessionStatusConnected}
	if err := storage.SaveUser(ctx, l.storage, user); err != nil {
		return l.fail(err)
	}
	l.log.Info("user connected", zap.String("email", email), zap.String("type", string(userType)))
	return l.nav.OnNavigate(ctx, routes.Home(&user))
}

func (l *Login) fail(err error) error {
	if el := l.doc.QueryByTestID("login-error"); el != nil {
		el.SetText(err.Error())
		el.RemoveAttr("hidden")
	}
	if l.onError != nil {
		l.onError(err)
	}
	return err
}
