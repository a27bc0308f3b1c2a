package containers

import (
	"context"
	"fmt"
	"html/template"
	"sort"

	"billed/internal/domain/model"
	"billed/internal/platform/logger"
	"billed/internal/store"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"
	"billed/internal/ui/views"

	"go.uber.org/zap"
)

type BillsConfig struct {
	Document  *dom.Document
	Navigator routes.Navigator
	Store     store.Store
	Logger    *zap.Logger
}

// Bills is the controller of the employee bills page.
type Bills struct {
	doc   *dom.Document
	nav   routes.Navigator
	store store.Store
	log   *zap.Logger
}

func NewBills(cfg BillsConfig) *Bills {
	return &Bills{
		doc:   cfg.Document,
		nav:   cfg.Navigator,
		store: cfg.Store,
		log:   logger.OrNop(cfg.Logger),
	}
}

// Attach binds the listeners of the page currently mounted.
func (b *Bills) Attach() {
	if btn := b.doc.QueryByTestID("btn-new-bill"); btn != nil {
		btn.AddEventListener(dom.EventClick, b.HandleClickNewBill)
	}
	for _, eye := range b.doc.QueryAllByTestID("icon-eye") {
		eye.AddEventListener(dom.EventClick, b.HandleClickIconEye)
	}
}

func (b *Bills) HandleClickNewBill(ctx context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	return b.nav.OnNavigate(ctx, routes.NewBill)
}

// HandleClickIconEye shows the receipt of the clicked bill in the modal.
func (b *Bills) HandleClickIconEye(_ context.Context, ev *dom.Event) error {
	ev.PreventDefault()
	modal, err := b.doc.GetByTestID("modaleFile")
	if err != nil {
		return err
	}
	url := ev.Target.Attr("data-bill-url")
	body := modal.QueryByAttr("class", "modal-body")
	if body == nil {
		body = modal
	}
	markup := fmt.Sprintf(`<div style="text-align: center;" class="bill-proof-container"><img src="%s" alt="Bill"></div>`,
		template.HTMLEscapeString(url))
	if err := body.SetInnerHTML(markup); err != nil {
		return err
	}
	modal.RemoveAttr("hidden")
	return nil
}

// GetBills lists the bills of the user, most recent first, ready for display.
// A bill with a corrupted date keeps its raw date.
func (b *Bills) GetBills(ctx context.Context) ([]views.BillRow, error) {
	bills, err := b.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}
	return formatRows(bills, b.log), nil
}

func formatRows(bills []model.Bill, log *zap.Logger) []views.BillRow {
	sorted := make([]model.Bill, len(bills))
	copy(sorted, bills)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	rows := make([]views.BillRow, 0, len(sorted))
	for _, bill := range sorted {
		formatted, err := views.FormatDate(bill.Date)
		if err != nil {
			log.Warn("corrupted bill date", zap.String("bill_id", bill.ID), zap.Error(err))
			formatted = bill.Date
		}
		rows = append(rows, views.BillRow{Bill: bill, FormattedDate: formatted})
	}
	return rows
}
