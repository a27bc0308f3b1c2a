package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"billed/internal/app/service"
	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/storage"
	"billed/internal/store"
	"billed/internal/ui/containers"
	"billed/internal/ui/dom"
	"billed/internal/ui/router"
	"billed/internal/ui/routes"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie holds the id of the visitor's session storage.
const SessionCookie = "billed_session"

// newBillFields are the new bill form fields, named after their test ids.
var newBillFields = []string{"expense-type", "expense-name", "datepicker", "amount", "vat", "pct", "commentary"}

type PageConfig struct {
	MaxUploadBytes int64
	DefaultPct     int
	SessionTTL     time.Duration
	SecureCookie   bool
}

// PageHandler serves the server-rendered pages. Each request builds a fresh
// document and router, replays the form post as DOM events, and writes the
// resulting document back.
type PageHandler struct {
	authService *service.AuthService
	billService *service.BillService
	sessions    storage.Provider
	cfg         PageConfig
	log         *zap.Logger
}

func NewPageHandler(authService *service.AuthService, billService *service.BillService, sessions storage.Provider, cfg PageConfig, log *zap.Logger) *PageHandler {
	return &PageHandler{
		authService: authService,
		billService: billService,
		sessions:    sessions,
		cfg:         cfg,
		log:         log,
	}
}

func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get(routes.Login, h.page(routes.Login))
	r.Post("/login/{userType}", h.login)
	r.Post("/logout", h.logout)
	r.Get(routes.Bills, h.page(routes.Bills))
	r.Get(routes.NewBill, h.page(routes.NewBill))
	r.Post(routes.NewBill, h.submitBill)
	r.Get(routes.Dashboard, h.dashboard)
	r.Post(routes.Dashboard+"/{billID}/{decision}", h.decide)
}

// visit is one request's document with its router.
type visit struct {
	doc     *dom.Document
	router  *router.Router
	storage storage.Storage
	errs    []error
}

func (h *PageHandler) open(w http.ResponseWriter, r *http.Request) (*visit, error) {
	st := h.sessions.Session(h.sessionID(w, r))
	v := &visit{doc: dom.NewDocument(), storage: st}
	v.doc.CreateRoot()

	rt, err := router.New(r.Context(), router.Config{
		Document: v.doc,
		Storage:  st,
		Store: func(user model.Session) store.Store {
			return store.NewLocal(h.billService, user)
		},
		Auth: containers.AuthenticatorFunc(func(ctx context.Context, email, password string, userType model.UserType) error {
			_, err := h.authService.Login(ctx, service.LoginRequest{Email: email, Password: password, Type: userType})
			return err
		}),
		OnError:    func(err error) { v.errs = append(v.errs, err) },
		Logger:     h.log,
		DefaultPct: h.cfg.DefaultPct,
	})
	if err != nil {
		return nil, err
	}
	v.router = rt
	return v, nil
}

// sessionID returns the session id of the visitor, issuing a cookie on the
// first visit.
func (h *PageHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *PageHandler) page(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.open(w, r)
		if err != nil {
			h.fail(w, err)
			return
		}
		if err := v.router.OnNavigate(r.Context(), path); err != nil {
			h.respondNavigation(w, r, v, path, err)
			return
		}
		h.render(w, v, http.StatusOK)
	}
}

func (h *PageHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	v, err := h.open(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := v.router.OnNavigate(r.Context(), routes.Dashboard); err != nil {
		h.respondNavigation(w, r, v, routes.Dashboard, err)
		return
	}
	if billID := r.URL.Query().Get("bill"); billID != "" {
		if err := v.router.Dashboard().HandleEditTicket(r.Context(), billID); err != nil {
			h.render(w, v, common.HTTPStatusFromError(err))
			return
		}
	}
	h.render(w, v, http.StatusOK)
}

func (h *PageHandler) login(w http.ResponseWriter, r *http.Request) {
	var prefix string
	switch chi.URLParam(r, "userType") {
	case "employee":
		prefix = "employee"
	case "admin":
		prefix = "admin"
	default:
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	v, err := h.open(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	ctx := r.Context()
	if err := v.router.OnNavigate(ctx, routes.Login); err != nil {
		h.fail(w, err)
		return
	}
	if err := fillFields(ctx, v.doc, map[string]string{
		prefix + "-email-input":    r.PostFormValue("email"),
		prefix + "-password-input": r.PostFormValue("password"),
	}); err != nil {
		h.fail(w, err)
		return
	}
	form, err := v.doc.GetByTestID("form-" + prefix)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := dom.FireSubmit(ctx, form); err != nil {
		_ = v.router.NewBill().Discard(ctx)
		h.respondFormError(w, v, err)
		return
	}
	http.Redirect(w, r, v.router.Pathname(), http.StatusSeeOther)
}

func (h *PageHandler) logout(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Session(h.sessionID(w, r))
	if err := storage.ClearUser(r.Context(), st); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, routes.Login, http.StatusSeeOther)
}

// submitBill replays the new bill form: the fields are filled, the receipt is
// picked (which uploads it) and the form is submitted. Invalid fields are
// rejected before the upload, and a draft left by a failed submit is dropped.
func (h *PageHandler) submitBill(w http.ResponseWriter, r *http.Request) {
	v, err := h.open(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	ctx := r.Context()
	if err := v.router.OnNavigate(ctx, routes.NewBill); err != nil {
		h.respondNavigation(w, r, v, routes.NewBill, err)
		return
	}
	if err := parseMultipart(w, r, h.cfg.MaxUploadBytes); err != nil {
		h.respondFormError(w, v, err)
		return
	}

	values := make(map[string]string, len(newBillFields))
	for _, field := range newBillFields {
		values[field] = r.PostFormValue(field)
	}
	if err := fillFields(ctx, v.doc, values); err != nil {
		h.fail(w, err)
		return
	}

	file, err := formFile(r, "file")
	switch {
	case errors.Is(err, common.ErrFileRequired):
	case err != nil:
		h.respondFormError(w, v, err)
		return
	default:
		if err := v.router.NewBill().ValidateForm(); err != nil {
			h.respondFormError(w, v, err)
			return
		}
		input, err := v.doc.GetByTestID("file")
		if err != nil {
			h.fail(w, err)
			return
		}
		if err := dom.FireFileChange(ctx, input, file); err != nil {
			h.respondFormError(w, v, err)
			return
		}
	}

	form, err := v.doc.GetByTestID("form-new-bill")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := dom.FireSubmit(ctx, form); err != nil {
		h.respondFormError(w, v, err)
		return
	}
	http.Redirect(w, r, v.router.Pathname(), http.StatusSeeOther)
}

func (h *PageHandler) decide(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form")
		return
	}
	v, err := h.open(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	ctx := r.Context()
	if err := v.router.OnNavigate(ctx, routes.Dashboard); err != nil {
		h.respondNavigation(w, r, v, routes.Dashboard, err)
		return
	}

	billID := chi.URLParam(r, "billID")
	comment := r.PostFormValue("commentAdmin")
	switch chi.URLParam(r, "decision") {
	case "accept":
		err = v.router.Dashboard().HandleAccept(ctx, billID, comment)
	case "refuse":
		err = v.router.Dashboard().HandleRefuse(ctx, billID, comment)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.respondFormError(w, v, err)
		return
	}
	http.Redirect(w, r, routes.Dashboard, http.StatusSeeOther)
}

func fillFields(ctx context.Context, doc *dom.Document, values map[string]string) error {
	for testID, value := range values {
		el, err := doc.GetByTestID(testID)
		if err != nil {
			return err
		}
		if err := dom.FireChange(ctx, el, value); err != nil {
			return err
		}
	}
	return nil
}

// respondNavigation answers a failed navigation: forbidden pages send the
// visitor to their home page, unknown ones are not found, and pages that
// mounted an error are rendered with its status.
func (h *PageHandler) respondNavigation(w http.ResponseWriter, r *http.Request, v *visit, path string, err error) {
	switch {
	case errors.Is(err, router.ErrNotAllowed):
		http.Redirect(w, r, routes.Home(v.router.User()), http.StatusSeeOther)
	case errors.Is(err, routes.ErrUnknownPath):
		http.NotFound(w, r)
	case v.router.Pathname() == path:
		h.render(w, v, common.HTTPStatusFromError(err))
	default:
		h.fail(w, err)
	}
}

// respondFormError renders the page with the error shown in its form.
func (h *PageHandler) respondFormError(w http.ResponseWriter, v *visit, err error) {
	h.log.Debug("form rejected", zap.String("path", v.router.Pathname()), zap.Error(err))
	h.render(w, v, common.HTTPStatusFromError(err))
}

func (h *PageHandler) render(w http.ResponseWriter, v *visit, status int) {
	page, err := v.doc.HTML()
	if err != nil {
		h.fail(w, err)
		return
	}
	common.RespondWithHTML(w, status, page)
}

func (h *PageHandler) fail(w http.ResponseWriter, err error) {
	h.log.Error("page failed", zap.Error(err))
	common.RespondWithHTML(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
