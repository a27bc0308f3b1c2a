// Package views renders the pages of the application as markup. Every function
// is pure: mounting the markup is the caller's job.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"billed/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"status":  FormatStatus,
	"section": newSection,
}).ParseFS(templateFS, "templates/*.html"))

// BillRow is a bill prepared for display.
type BillRow struct {
	model.Bill
	// FormattedDate is the display date, or the raw date when it could not be
	// parsed.
	FormattedDate string
}

type BillsData struct {
	Bills   []BillRow
	Loading bool
	Error   string
}

type DashboardData struct {
	Pending  []BillRow
	Accepted []BillRow
	Refused  []BillRow
	// Selected is the bill opened in the side panel, if any.
	Selected *BillRow
	Loading  bool
	Error    string
}

type dashboardSection struct {
	Index int
	Title string
	Bills []BillRow
}

func newSection(index int, title string, bills []BillRow) dashboardSection {
	return dashboardSection{Index: index, Title: title, Bills: bills}
}

type NewBillData struct {
	ExpenseTypes []string
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// BillsUI renders the employee bills page, its loading state or the error text.
func BillsUI(data BillsData) (string, error) {
	switch {
	case data.Error != "":
		return ErrorPage(data.Error)
	case data.Loading:
		return LoadingPage()
	}
	return render("bills", data)
}

// NewBillUI renders the new bill form.
func NewBillUI() (string, error) {
	return render("newbill", NewBillData{ExpenseTypes: model.ExpenseTypes})
}

func LoginUI() (string, error) {
	return render("login", nil)
}

// DashboardUI renders the admin dashboard, its loading state or the error text.
func DashboardUI(data DashboardData) (string, error) {
	switch {
	case data.Error != "":
		return ErrorPage(data.Error)
	case data.Loading:
		return LoadingPage()
	}
	return render("dashboard", data)
}

// ErrorPage renders msg verbatim.
func ErrorPage(msg string) (string, error) {
	return render("error", msg)
}

func LoadingPage() (string, error) {
	return render("loading", nil)
}
