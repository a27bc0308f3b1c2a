// Package router drives one document: it knows who is connected, mounts the
// page for a path and binds the page controller.
package router

import (
	"context"
	"errors"
	"fmt"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/platform/logger"
	"billed/internal/storage"
	"billed/internal/store"
	"billed/internal/ui/containers"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"
	"billed/internal/ui/views"

	"go.uber.org/zap"
)

// ErrNotAllowed is returned when the connected user may not open a page.
var ErrNotAllowed = fmt.Errorf("page not allowed: %w", common.ErrForbidden)

const (
	loginBackground = "background-color: #0E5AE5;"
	pageBackground  = "background-color: #fff;"
)

// StoreFactory opens the store on behalf of the connected user.
type StoreFactory func(user model.Session) store.Store

type Config struct {
	Document   *dom.Document
	Storage    storage.Storage
	Store      StoreFactory
	Auth       containers.Authenticator
	OnError    func(error)
	Logger     *zap.Logger
	DefaultPct int
}

// Router is the navigation context handed to every controller of a document.
type Router struct {
	cfg  Config
	root *dom.Element
	log  *zap.Logger

	user     *model.Session
	pathname string

	login     *containers.Login
	bills     *containers.Bills
	newBill   *containers.NewBill
	dashboard *containers.Dashboard
}

// New binds a router to the #root element of cfg.Document and loads the
// session user.
func New(ctx context.Context, cfg Config) (*Router, error) {
	root, err := cfg.Document.GetByID("root")
	if err != nil {
		return nil, err
	}
	r := &Router{cfg: cfg, root: root, log: logger.OrNop(cfg.Logger)}
	if err := r.loadUser(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) loadUser(ctx context.Context) error {
	user, err := storage.LoadUser(ctx, r.cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNoSession):
		r.user = nil
	case err != nil:
		return err
	default:
		r.user = user
	}
	return nil
}

// User is the connected user, nil when nobody is.
func (r *Router) User() *model.Session { return r.user }

// Pathname is the path of the page currently mounted.
func (r *Router) Pathname() string { return r.pathname }

func (r *Router) Login() *containers.Login         { return r.login }
func (r *Router) Bills() *containers.Bills         { return r.bills }
func (r *Router) NewBill() *containers.NewBill     { return r.newBill }
func (r *Router) Dashboard() *containers.Dashboard { return r.dashboard }

// OnNavigate mounts the page at path. Unknown or forbidden paths leave the
// document untouched. Errors of the bills list are rendered on the page and
// returned.
func (r *Router) OnNavigate(ctx context.Context, path string) error {
	if err := r.loadUser(ctx); err != nil {
		return err
	}
	if !routes.Known(path) {
		return fmt.Errorf("%q: %w", path, routes.ErrUnknownPath)
	}
	if !routes.Allowed(path, r.user) {
		return fmt.Errorf("%q: %w", path, ErrNotAllowed)
	}

	r.pathname = path
	r.login, r.bills, r.newBill, r.dashboard = nil, nil, nil, nil
	r.log.Debug("navigate", zap.String("path", path))

	switch path {
	case routes.Login:
		return r.mountLogin()
	case routes.Bills:
		return r.mountBills(ctx)
	case routes.NewBill:
		return r.mountNewBill()
	case routes.Dashboard:
		return r.mountDashboard(ctx)
	}
	return nil
}

func (r *Router) mount(data routes.Data) error {
	markup, err := routes.Render(data)
	if err != nil {
		return err
	}
	return r.root.SetInnerHTML(markup)
}

func (r *Router) mountLogin() error {
	if err := r.mount(routes.Data{Pathname: routes.Login}); err != nil {
		return err
	}
	r.cfg.Document.SetTitle("Billed - Connexion")
	r.cfg.Document.Body().SetAttr("style", loginBackground)
	r.login = containers.NewLogin(containers.LoginConfig{
		Document:  r.cfg.Document,
		Navigator: r,
		Storage:   r.cfg.Storage,
		Auth:      r.cfg.Auth,
		OnError:   r.cfg.OnError,
		Logger:    r.log,
	})
	return nil
}

func (r *Router) mountBills(ctx context.Context) error {
	if err := r.mount(routes.Data{Pathname: routes.Bills, Loading: true}); err != nil {
		return err
	}
	r.preparePage("Billed - Mes notes de frais", "icon-window", "icon-mail")

	r.bills = containers.NewBills(containers.BillsConfig{
		Document:  r.cfg.Document,
		Navigator: r,
		Store:     r.cfg.Store(*r.user),
		Logger:    r.log,
	})
	rows, listErr := r.bills.GetBills(ctx)
	if listErr != nil {
		if err := r.mount(routes.Data{Pathname: routes.Bills, Error: listErr.Error()}); err != nil {
			return err
		}
		r.preparePage("Billed - Mes notes de frais", "icon-window", "icon-mail")
		r.report(listErr)
		return listErr
	}
	if err := r.mount(routes.Data{Pathname: routes.Bills, Bills: rows}); err != nil {
		return err
	}
	r.preparePage("Billed - Mes notes de frais", "icon-window", "icon-mail")
	r.bills.Attach()
	return nil
}

func (r *Router) mountNewBill() error {
	if err := r.mount(routes.Data{Pathname: routes.NewBill}); err != nil {
		return err
	}
	r.preparePage("Billed - Nouvelle note de frais", "icon-mail", "icon-window")

	ctrl, err := containers.NewNewBill(containers.NewBillConfig{
		Document:   r.cfg.Document,
		Navigator:  r,
		Store:      r.cfg.Store(*r.user),
		User:       *r.user,
		OnError:    r.cfg.OnError,
		Logger:     r.log,
		DefaultPct: r.cfg.DefaultPct,
	})
	if err != nil {
		return err
	}
	r.newBill = ctrl
	return nil
}

func (r *Router) mountDashboard(ctx context.Context) error {
	markup, err := views.LoadingPage()
	if err != nil {
		return err
	}
	if err := r.root.SetInnerHTML(markup); err != nil {
		return err
	}
	r.cfg.Document.SetTitle("Billed - Administration")
	r.cfg.Document.Body().SetAttr("style", pageBackground)

	r.dashboard = containers.NewDashboard(containers.DashboardConfig{
		Document:  r.cfg.Document,
		Navigator: r,
		Store:     r.cfg.Store(*r.user),
		OnError:   r.cfg.OnError,
		Logger:    r.log,
	})
	return r.dashboard.Render(ctx, "")
}

// preparePage sets the title and highlights the active icon of the vertical
// layout.
func (r *Router) preparePage(title, active, inactive string) {
	r.cfg.Document.SetTitle(title)
	r.cfg.Document.Body().SetAttr("style", pageBackground)
	if el := r.cfg.Document.QueryByTestID(active); el != nil {
		el.SetClassName("active-icon")
	}
	if el := r.cfg.Document.QueryByTestID(inactive); el != nil {
		el.RemoveAttr("class")
	}
}

func (r *Router) report(err error) {
	r.log.Warn("page error", zap.String("path", r.pathname), zap.Error(err))
	if r.cfg.OnError != nil {
		r.cfg.OnError(err)
	}
}
