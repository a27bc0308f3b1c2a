package dom

import (
	"context"
	"errors"
	"fmt"

	"billed/internal/domain/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	EventChange = "change"
	EventSubmit = "submit"
	EventClick  = "click"
)

// Event is dispatched to the listeners of its target and of every ancestor.
type Event struct {
	Type   string
	Target *Element
	// Files is set on change events of file inputs.
	Files []model.FileAttachment

	defaultPrevented bool
	stopped          bool
}

func (e *Event) PreventDefault()        { e.defaultPrevented = true }
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }
func (e *Event) StopPropagation()       { e.stopped = true }

// Listener handles an event. Errors are collected by Dispatch and returned to
// whoever fired the event.
type Listener func(ctx context.Context, ev *Event) error

// AddEventListener registers l for events of type typ reaching el.
func (e *Element) AddEventListener(typ string, l Listener) {
	byType, ok := e.doc.listeners[e.Node]
	if !ok {
		byType = map[string][]Listener{}
		e.doc.listeners[e.Node] = byType
	}
	byType[typ] = append(byType[typ], l)
}

// Dispatch runs the listeners from the target up to the document root, in
// registration order, and joins their errors. An event without a target is
// rejected with ErrElementNotFound.
func (d *Document) Dispatch(ctx context.Context, ev *Event) error {
	if ev == nil || ev.Target == nil || ev.Target.Node == nil {
		return fmt.Errorf("dispatching event without target: %w", ErrElementNotFound)
	}
	var errs []error
	for n := ev.Target.Node; n != nil && !ev.stopped; n = n.Parent {
		for _, l := range d.listeners[n][ev.Type] {
			if err := l(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// FireChange sets the value of a form control and dispatches a change event.
func FireChange(ctx context.Context, el *Element, value string) error {
	el.SetValue(value)
	return el.doc.Dispatch(ctx, &Event{Type: EventChange, Target: el})
}

// FireFileChange picks files in a file input and dispatches a change event.
func FireFileChange(ctx context.Context, el *Element, files ...model.FileAttachment) error {
	el.setFiles(files)
	return el.doc.Dispatch(ctx, &Event{Type: EventChange, Target: el, Files: files})
}

// FireSubmit dispatches a submit event on a form.
func FireSubmit(ctx context.Context, form *Element) error {
	return form.doc.Dispatch(ctx, &Event{Type: EventSubmit, Target: form})
}

// Click dispatches a click event; clicking a submit button also submits its
// form unless a click listener prevented it.
func Click(ctx context.Context, el *Element) error {
	ev := &Event{Type: EventClick, Target: el}
	err := el.doc.Dispatch(ctx, ev)
	if ev.DefaultPrevented() || !isSubmitter(el.Node) {
		return err
	}
	form := el.Closest("form")
	if form == nil {
		return err
	}
	return errors.Join(err, FireSubmit(ctx, form))
}

func isSubmitter(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button:
		t := attr(n, "type")
		return t == "" || t == "submit"
	case atom.Input:
		return attr(n, "type") == "submit"
	}
	return false
}
