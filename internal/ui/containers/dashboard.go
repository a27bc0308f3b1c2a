package containers

import (
	"context"
	"fmt"

	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/platform/logger"
	"billed/internal/store"
	"billed/internal/ui/dom"
	"billed/internal/ui/routes"
	"billed/internal/ui/views"

	"go.uber.org/zap"
)

type DashboardConfig struct {
	Document  *dom.Document
	Navigator routes.Navigator
	Store     store.Store
	OnError   func(error)
	Logger    *zap.Logger
}

// Dashboard is the controller of the admin page: every bill, grouped by
// status, with accept/refuse decisions on pending ones.
type Dashboard struct {
	doc     *dom.Document
	nav     routes.Navigator
	store   store.Store
	onError func(error)
	log     *zap.Logger

	rows []views.BillRow
}

func NewDashboard(cfg DashboardConfig) *Dashboard {
	return &Dashboard{
		doc:     cfg.Document,
		nav:     cfg.Navigator,
		store:   cfg.Store,
		onError: cfg.OnError,
		log:     logger.OrNop(cfg.Logger),
	}
}

// GetBillsAllUsers lists every submitted bill, most recent first.
func (d *Dashboard) GetBillsAllUsers(ctx context.Context) ([]views.BillRow, error) {
	bills, err := d.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}
	d.rows = formatRows(bills, d.log)
	return d.rows, nil
}

// Render fetches the bills and mounts the dashboard into #root, with the bill
// selectedID opened when not empty. A list failure mounts the error page.
func (d *Dashboard) Render(ctx context.Context, selectedID string) error {
	root, err := d.doc.GetByID("root")
	if err != nil {
		return err
	}

	data := views.DashboardData{}
	if _, err := d.GetBillsAllUsers(ctx); err != nil {
		data.Error = err.Error()
		markup, renderErr := views.DashboardUI(data)
		if renderErr != nil {
			return renderErr
		}
		if mountErr := root.SetInnerHTML(markup); mountErr != nil {
			return mountErr
		}
		return d.fail(err)
	}

	for i := range d.rows {
		row := d.rows[i]
		switch row.Status {
		case model.BillStatusPending:
			data.Pending = append(data.Pending, row)
		case model.BillStatusAccepted:
			data.Accepted = append(data.Accepted, row)
		case model.BillStatusRefused:
			data.Refused = append(data.Refused, row)
		}
		if row.ID == selectedID {
			data.Selected = &row
		}
	}

	markup, err := views.DashboardUI(data)
	if err != nil {
		return err
	}
	if err := root.SetInnerHTML(markup); err != nil {
		return err
	}
	d.attach()
	return nil
}

func (d *Dashboard) attach() {
	for _, row := range d.rows {
		id := row.ID
		if card := d.doc.QueryByTestID("open-bill" + id); card != nil {
			card.AddEventListener(dom.EventClick, func(ctx context.Context, ev *dom.Event) error {
				ev.PreventDefault()
				return d.HandleEditTicket(ctx, id)
			})
		}
	}
	if btn := d.doc.QueryByTestID("btn-accept-bill-d"); btn != nil {
		btn.AddEventListener(dom.EventClick, d.decisionListener(model.BillStatusAccepted))
	}
	if btn := d.doc.QueryByTestID("btn-refuse-bill-d"); btn != nil {
		btn.AddEventListener(dom.EventClick, d.decisionListener(model.BillStatusRefused))
	}
}

func (d *Dashboard) decisionListener(status model.BillStatus) dom.Listener {
	return func(ctx context.Context, ev *dom.Event) error {
		ev.PreventDefault()
		form := ev.Target.Closest("form")
		if form == nil {
			return fmt.Errorf("decision button outside a form: %w", dom.ErrElementNotFound)
		}
		comment := ""
		if el := d.doc.QueryByTestID("commentary2"); el != nil {
			comment = el.Value()
		}
		return d.decide(ctx, form.Attr("data-bill-id"), status, comment)
	}
}

// HandleEditTicket opens a bill in the side panel.
func (d *Dashboard) HandleEditTicket(ctx context.Context, billID string) error {
	return d.Render(ctx, billID)
}

func (d *Dashboard) HandleAccept(ctx context.Context, billID, comment string) error {
	return d.decide(ctx, billID, model.BillStatusAccepted, comment)
}

func (d *Dashboard) HandleRefuse(ctx context.Context, billID, comment string) error {
	return d.decide(ctx, billID, model.BillStatusRefused, comment)
}

func (d *Dashboard) decide(ctx context.Context, billID string, status model.BillStatus, comment string) error {
	if billID == "" {
		return d.fail(fmt.Errorf("missing bill id: %w", common.ErrBadRequest))
	}
	_, err := d.store.Bills().Update(ctx, store.UpdateRequest{
		Selector: billID,
		Bill:     model.Bill{Status: status, CommentAdmin: comment},
	})
	if err != nil {
		return d.fail(err)
	}
	d.log.Info("bill decided", zap.String("bill_id", billID), zap.String("status", string(status)))
	return d.nav.OnNavigate(ctx, routes.Dashboard)
}

func (d *Dashboard) fail(err error) error {
	if d.onError != nil {
		d.onError(err)
	}
	return err
}
