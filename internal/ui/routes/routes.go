// Package routes maps page paths to their views.
package routes

import (
	"context"
	"errors"
	"fmt"

	"billed/internal/domain/model"
	"billed/internal/ui/views"
)

const (
	Login     = "/"
	Bills     = "/bills"
	NewBill   = "/bills/new"
	Dashboard = "/dashboard"
)

var ErrUnknownPath = errors.New("unknown path")

// Navigator moves the page to another path. The router implements it; it is
// handed to every controller.
type Navigator interface {
	OnNavigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) OnNavigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Known reports whether path is a page of the application.
func Known(path string) bool {
	switch path {
	case Login, Bills, NewBill, Dashboard:
		return true
	}
	return false
}

// Allowed reports whether a visitor can open path. user is nil when nobody is
// connected.
func Allowed(path string, user *model.Session) bool {
	switch path {
	case Login:
		return true
	case Bills, NewBill:
		return user != nil && user.Type == model.UserTypeEmployee
	case Dashboard:
		return user != nil && user.Type == model.UserTypeAdmin
	}
	return false
}

// Home is the landing page of a connected user.
func Home(user *model.Session) string {
	switch {
	case user == nil:
		return Login
	case user.IsAdmin():
		return Dashboard
	default:
		return Bills
	}
}

// Data carries the state a page is rendered with.
type Data struct {
	Pathname string
	Bills    []views.BillRow
	Loading  bool
	Error    string
}

// Render returns the markup of the page at data.Pathname.
func Render(data Data) (string, error) {
	switch data.Pathname {
	case Login:
		return views.LoginUI()
	case Bills:
		return views.BillsUI(views.BillsData{Bills: data.Bills, Loading: data.Loading, Error: data.Error})
	case NewBill:
		return views.NewBillUI()
	case Dashboard:
		return views.DashboardUI(views.DashboardData{Loading: data.Loading, Error: data.Error})
	}
	return "", fmt.Errorf("%q: %w", data.Pathname, ErrUnknownPath)
}
