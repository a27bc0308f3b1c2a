package containers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/platform/logger"
	"billed/internal/store"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"

	"go.uber.org/zap"
)

// NewBillState tracks one submission through the new bill form.
type NewBillState int

const (
	StateIdle NewBillState = iota
	StateUploading
	StateUploaded
	StateSubmitting
	StateDone
)

func (s NewBillState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("NewBillState(%d)", int(s))
}

var errAlreadySubmitted = fmt.Errorf("bill already submitted: %w", common.ErrConflict)

// formDateLayouts are the date formats accepted by the date field.
var formDateLayouts = []string{model.BillDateLayout, "02-01-2006"}

const defaultPct = 20

type NewBillConfig struct {
	Document  *dom.Document
	Navigator routes.Navigator
	Store     store.Store
	User      model.Session
	// OnError receives every error returned by the handlers.
	OnError    func(error)
	Logger     *zap.Logger
	DefaultPct int
}

// NewBill is the controller of the new bill form.
type NewBill struct {
	doc        *dom.Document
	nav        routes.Navigator
	store      store.Store
	user       model.Session
	onError    func(error)
	log        *zap.Logger
	defaultPct int

	mu       sync.Mutex
	state    NewBillState
	billID   string
	fileURL  string
	fileName string
}

// NewNewBill binds the controller to the form mounted in cfg.Document.
func NewNewBill(cfg NewBillConfig) (*NewBill, error) {
	form, err := cfg.Document.GetByTestID("form-new-bill")
	if err != nil {
		return nil, err
	}
	file, err := cfg.Document.GetByTestID("file")
	if err != nil {
		return nil, err
	}

	n := &NewBill{
		doc:        cfg.Document,
		nav:        cfg.Navigator,
		store:      cfg.Store,
		user:       cfg.User,
		onError:    cfg.OnError,
		log:        logger.OrNop(cfg.Logger),
		defaultPct: cfg.DefaultPct,
	}
	if n.defaultPct <= 0 {
		n.defaultPct = defaultPct
	}
	form.AddEventListener(dom.EventSubmit, n.HandleSubmit)
	file.AddEventListener(dom.EventChange, n.HandleChangeFile)
	return n, nil
}

func (n *NewBill) State() NewBillState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// BillID is the key returned by the store for the uploaded receipt.
func (n *NewBill) BillID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.billID
}

func (n *NewBill) FileURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fileURL
}

func (n *NewBill) FileName() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fileName
}

// HandleChangeFile validates the picked receipt and uploads it. A rejected
// file clears the input and never reaches the store.
func (n *NewBill) HandleChangeFile(ctx context.Context, ev *dom.Event) error {
	files := ev.Files
	if len(files) == 0 && ev.Target != nil {
		files = ev.Target.Files()
	}
	if len(files) != 1 {
		n.clearInput(ev.Target)
		return n.fail(fmt.Errorf("expected exactly one file, got %d: %w", len(files), common.ErrValidation))
	}
	file := files[0]
	if !file.IsAllowed() {
		n.clearInput(ev.Target)
		return n.fail(fmt.Errorf("file %q: %w", file.Name, common.ErrUnsupportedFileType))
	}

	n.mu.Lock()
	if n.state == StateUploading || n.state == StateSubmitting {
		n.mu.Unlock()
		return n.fail(common.ErrUploadInProgress)
	}
	if n.state == StateDone {
		n.mu.Unlock()
		return n.fail(errAlreadySubmitted)
	}
	prev := n.state
	replaced := n.billID
	n.state = StateUploading
	n.mu.Unlock()

	res, err := n.store.Bills().Create(ctx, store.CreateRequest{File: file, Email: n.user.Email})
	if err != nil {
		n.mu.Lock()
		n.state = prev
		n.mu.Unlock()
		return n.fail(err)
	}

	n.mu.Lock()
	n.billID = res.Key
	n.fileURL = res.FileURL
	n.fileName = file.Name
	n.state = StateUploaded
	n.mu.Unlock()

	n.hideError()
	n.log.Debug("receipt uploaded", zap.String("bill_id", res.Key), zap.String("file", file.Name))
	if prev == StateUploaded && replaced != "" {
		n.discard(ctx, replaced)
	}
	return nil
}

// ValidateForm checks the form fields without calling the store.
func (n *NewBill) ValidateForm() error {
	n.mu.Lock()
	_, err := n.readForm()
	n.mu.Unlock()
	if err != nil {
		return n.fail(err)
	}
	return nil
}

// Discard drops the uploaded draft of an abandoned form. It does nothing
// before an upload or once the bill is submitted.
func (n *NewBill) Discard(ctx context.Context) error {
	n.mu.Lock()
	if n.state != StateUploaded {
		n.mu.Unlock()
		return nil
	}
	billID := n.billID
	n.state = StateIdle
	n.billID, n.fileURL, n.fileName = "", "", ""
	n.mu.Unlock()

	return n.discard(ctx, billID)
}

func (n *NewBill) discard(ctx context.Context, billID string) error {
	if err := n.store.Bills().Discard(ctx, billID); err != nil {
		n.log.Warn("draft bill not discarded", zap.String("bill_id", billID), zap.Error(err))
		return err
	}
	n.log.Debug("draft bill discarded", zap.String("bill_id", billID))
	return nil
}

// HandleSubmit completes the uploaded bill with the form fields, then goes
// back to the bills list. The store is called once per submit.
func (n *NewBill) HandleSubmit(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()

	n.mu.Lock()
	switch n.state {
	case StateUploading, StateSubmitting:
		n.mu.Unlock()
		return n.fail(common.ErrUploadInProgress)
	case StateIdle:
		n.mu.Unlock()
		return n.fail(common.ErrFileRequired)
	case StateDone:
		n.mu.Unlock()
		return n.fail(errAlreadySubmitted)
	}
	bill, err := n.readForm()
	if err != nil {
		n.mu.Unlock()
		return n.fail(err)
	}
	billID := n.billID
	n.state = StateSubmitting
	n.mu.Unlock()

	if _, err := n.store.Bills().Update(ctx, store.UpdateRequest{Selector: billID, Bill: bill}); err != nil {
		n.mu.Lock()
		n.state = StateUploaded
		n.mu.Unlock()
		return n.fail(err)
	}

	n.mu.Lock()
	n.state = StateDone
	n.mu.Unlock()

	n.log.Info("bill submitted", zap.String("bill_id", billID), zap.String("email", n.user.Email))
	if err := n.nav.OnNavigate(ctx, routes.Bills); err != nil {
		return n.fail(err)
	}
	return nil
}

// readForm builds the pending bill from the form fields. Callers hold n.mu.
func (n *NewBill) readForm() (model.Bill, error) {
	value := func(testID string) string {
		el := n.doc.QueryByTestID(testID)
		if el == nil {
			return ""
		}
		return strings.TrimSpace(el.Value())
	}

	date, err := parseFormDate(value("datepicker"))
	if err != nil {
		return model.Bill{}, err
	}
	amount, err := strconv.Atoi(value("amount"))
	if err != nil {
		return model.Bill{}, fmt.Errorf("invalid amount %q: %w", value("amount"), common.ErrValidation)
	}
	vat := 0
	if raw := value("vat"); raw != "" {
		if vat, err = strconv.Atoi(raw); err != nil {
			return model.Bill{}, fmt.Errorf("invalid vat %q: %w", raw, common.ErrValidation)
		}
	}
	pct, err := strconv.Atoi(value("pct"))
	if err != nil || pct == 0 {
		pct = n.defaultPct
	}

	return model.Bill{
		Email:      n.user.Email,
		Type:       value("expense-type"),
		Name:       value("expense-name"),
		Date:       date,
		Amount:     amount,
		VAT:        vat,
		Pct:        pct,
		Commentary: value("commentary"),
		FileURL:    n.fileURL,
		FileName:   n.fileName,
		Status:     model.BillStatusPending,
	}, nil
}

func parseFormDate(raw string) (string, error) {
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(model.BillDateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q: %w", raw, common.ErrValidation)
}

func (n *NewBill) clearInput(el *dom.Element) {
	if el != nil {
		el.SetValue("")
	}
}

func (n *NewBill) fail(err error) error {
	n.showError(err)
	if n.onError != nil {
		n.onError(err)
	}
	if errors.Is(err, common.ErrValidation) {
		n.log.Debug("new bill rejected", zap.Error(err))
	} else {
		n.log.Warn("new bill failed", zap.Error(err))
	}
	return err
}

func (n *NewBill) showError(err error) {
	if el := n.doc.QueryByTestID("form-error"); el != nil {
		el.SetText(err.Error())
		el.RemoveAttr("hidden")
	}
}

func (n *NewBill) hideError() {
	if el := n.doc.QueryByTestID("form-error"); el != nil {
		el.SetText("")
		el.SetAttr("hidden", "")
	}
}
