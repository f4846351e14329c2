// Package ui is the interactive console: a menu, a bill composition screen
// and a saved-bills browser. All backend traffic happens inside tea commands
// so the event loop never blocks on the network.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"sanraw/console/internal/billing"
	"sanraw/console/internal/bills"
	"sanraw/console/internal/catalog"
	"sanraw/console/internal/domain"
)

type view int

const (
	viewMenu view = iota
	viewCompose
	viewCustomerForm
	viewQuantityForm
	viewSearchForm
	viewBills
	viewBillDetail
	viewInvoice
)

type (
	errorMsg struct{ err error }

	catalogLoadedMsg struct {
		category domain.Category
		items    []domain.CatalogItem
	}
	billsLoadedMsg   struct{ bills []domain.PersistedBill }
	billDetailMsg    struct{ bill *domain.PersistedBill }
	billSavedMsg     struct{ billNumber string }
	billPaidMsg      struct{ id string }
	billDeletedMsg   struct{ id string }
	invoiceSavedMsg  struct{ path string }
	editReadyMsg     struct {
		billID string
		draft  *billing.Draft
	}
)

type Model struct {
	catalog   *catalog.Catalog
	bills     *bills.Service
	exportDir string
	demo      bool
	log       *logrus.Logger

	view     view
	prevView view

	// compose state
	draft      *billing.Draft
	editingID  string
	category   domain.Category
	items      []domain.CatalogItem
	cursor     int
	pane       int // 0 catalog, 1 draft lines
	lineCursor int

	inputs     []textinput.Model
	focusIndex int
	targetItem string
	targetLine string

	// browse state
	billList   []domain.PersistedBill
	billCursor int
	filter     domain.PaymentMethod
	nameFilter string
	detail     *domain.PersistedBill

	invoiceText string

	loading bool
	status  string
	errText string
}

func New(cat *catalog.Catalog, svc *bills.Service, exportDir string, demo bool, log *logrus.Logger) Model {
	return Model{
		catalog:   cat,
		bills:     svc,
		exportDir: exportDir,
		demo:      demo,
		log:       log,
		view:      viewMenu,
		category:  domain.CategoryPaddy,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case errorMsg:
		m.loading = false
		m.errText = msg.err.Error()
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		m.errText = ""
		m.category = msg.category
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = 0
		}
		return m, nil

	case billsLoadedMsg:
		m.loading = false
		m.errText = ""
		m.billList = msg.bills
		if m.billCursor >= len(m.billList) {
			m.billCursor = 0
		}
		return m, nil

	case billDetailMsg:
		m.loading = false
		m.errText = ""
		m.detail = msg.bill
		m.view = viewBillDetail
		return m, nil

	case billSavedMsg:
		m.loading = false
		m.draft = nil
		m.editingID = ""
		m.status = "Saved " + msg.billNumber
		m.view = viewBills
		return m, m.loadBills()

	case billPaidMsg:
		m.loading = false
		m.status = "Marked paid"
		if m.detail != nil && m.detail.ID == msg.id {
			m.detail.IsPaid = true
		}
		return m, nil

	case billDeletedMsg:
		m.loading = false
		m.status = "Bill deleted"
		m.detail = nil
		m.view = viewBills
		return m, m.loadBills()

	case invoiceSavedMsg:
		m.loading = false
		m.status = "Invoice written to " + msg.path
		return m, nil

	case editReadyMsg:
		m.loading = true
		m.draft = msg.draft
		m.editingID = msg.billID
		m.view = viewCompose
		return m, m.loadCatalog(m.category)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewMenu:
		return m.handleMenuKeys(key)
	case viewCompose:
		return m.handleComposeKeys(key)
	case viewCustomerForm, viewQuantityForm, viewSearchForm:
		return m.handleFormKeys(msg)
	case viewBills:
		return m.handleBillsKeys(key)
	case viewBillDetail:
		return m.handleDetailKeys(key)
	case viewInvoice:
		if key == "esc" || key == "q" {
			m.view = m.prevView
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleMenuKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "n":
		m.draft = billing.NewDraft()
		m.editingID = ""
		m.view = viewCompose
		m.loading = true
		return m, m.loadCatalog(m.category)
	case "b":
		m.view = viewBills
		m.filter = ""
		m.loading = true
		return m, m.loadBills()
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.view {
	case viewMenu:
		body = m.renderMenu()
	case viewCompose:
		body = m.renderCompose()
	case viewCustomerForm:
		body = m.renderForm("Customer Details", []string{"Name:", "Address:", "Phone:"})
	case viewQuantityForm:
		body = m.renderForm("Line Item", m.formLabels())
	case viewSearchForm:
		body = m.renderForm("Filter Bills", []string{"Customer name contains:"})
	case viewBills:
		body = m.renderBills()
	case viewBillDetail:
		body = m.renderBillDetail()
	case viewInvoice:
		body = m.invoiceText + "\n" + helpStyle.Render("  esc: back")
	}

	var footer strings.Builder
	if m.loading {
		footer.WriteString("\n  Loading...\n")
	}
	if m.errText != "" {
		footer.WriteString("\n  " + errorStyle.Render(m.errText) + "\n")
	}
	if m.status != "" {
		footer.WriteString("\n  " + successStyle.Render(m.status) + "\n")
	}
	return body + footer.String()
}

func (m Model) renderMenu() string {
	var b strings.Builder
	title := " Sanraw Agriculture Console "
	if m.demo {
		title += "(demo) "
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString("  n  new bill\n")
	b.WriteString("  b  browse bills\n")
	b.WriteString("  q  quit\n")
	return boxStyle.Render(b.String())
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != viewCustomerForm && m.view != viewQuantityForm && m.view != viewSearchForm {
		return m, nil
	}
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// background returns the context tea commands run under. Commands are
// short-lived; cancellation happens by the program exiting.
func (m Model) background() context.Context { return context.Background() }
