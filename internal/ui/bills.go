package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sanraw/console/internal/billing"
	"sanraw/console/internal/domain"
	"sanraw/console/internal/render"
)

func (m Model) loadBills() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		var (
			list []domain.PersistedBill
			err  error
		)
		if filter == "" {
			list, err = m.bills.List(m.background())
		} else {
			list, err = m.bills.ListByPayment(m.background(), filter)
		}
		if err != nil {
			return errorMsg{err}
		}
		return billsLoadedMsg{bills: list}
	}
}

func (m Model) loadBillDetail(id string) tea.Cmd {
	return func() tea.Msg {
		bill, err := m.bills.Get(m.background(), id)
		if err != nil {
			return errorMsg{err}
		}
		return billDetailMsg{bill: bill}
	}
}

func (m Model) handleBillsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.view = viewMenu
		m.status = ""
		return m, nil

	case "up", "k":
		if m.billCursor > 0 {
			m.billCursor--
		}
		return m, nil

	case "down", "j":
		if m.billCursor < len(m.visibleBills())-1 {
			m.billCursor++
		}
		return m, nil

	case "/":
		m.initSearchForm()
		m.view = viewSearchForm
		return m, nil

	case "f":
		switch m.filter {
		case "":
			m.filter = domain.PaymentCash
		case domain.PaymentCash:
			m.filter = domain.PaymentCredit
		default:
			m.filter = ""
		}
		m.billCursor = 0
		m.loading = true
		return m, m.loadBills()

	case "r":
		m.loading = true
		return m, m.loadBills()

	case "enter":
		visible := m.visibleBills()
		if len(visible) == 0 {
			return m, nil
		}
		if m.billCursor >= len(visible) {
			m.billCursor = 0
		}
		m.loading = true
		return m, m.loadBillDetail(visible[m.billCursor].ID)
	}
	return m, nil
}

func (m *Model) initSearchForm() {
	m.inputs = []textinput.Model{textinput.New()}
	m.inputs[0].Placeholder = "Customer name"
	m.inputs[0].SetValue(m.nameFilter)
	m.inputs[0].Focus()
	m.focusIndex = 0
}

// visibleBills applies the client-side customer-name filter. The payment
// filter is already applied server-side by loadBills.
func (m Model) visibleBills() []domain.PersistedBill {
	if m.nameFilter == "" {
		return m.billList
	}
	needle := strings.ToLower(m.nameFilter)
	out := make([]domain.PersistedBill, 0, len(m.billList))
	for _, bill := range m.billList {
		if strings.Contains(strings.ToLower(bill.Customer.Name), needle) {
			out = append(out, bill)
		}
	}
	return out
}

func (m Model) handleDetailKeys(key string) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.view = viewBills
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch key {
	case "esc", "q":
		m.detail = nil
		m.view = viewBills
		m.loading = true
		return m, m.loadBills()

	case "m":
		if m.detail.IsPaid {
			return m, nil
		}
		m.loading = true
		return m, m.markPaid(m.detail)

	case "e":
		m.loading = true
		return m, m.beginEdit(m.detail.ID)

	case "x":
		m.loading = true
		return m, m.deleteBill(m.detail.ID)

	case "v":
		m.invoiceText = render.Text(render.FromPersisted(m.detail))
		m.prevView = viewBillDetail
		m.view = viewInvoice
		return m, nil

	case "w":
		m.loading = true
		return m, m.exportWorkbook(m.detail)
	}
	return m, nil
}

// markPaid hands the service a copy: the command goroutine must never write
// the bill the view is rendering. The on-screen flag flips when billPaidMsg
// is processed on the event loop.
func (m Model) markPaid(bill *domain.PersistedBill) tea.Cmd {
	copied := *bill
	return func() tea.Msg {
		if err := m.bills.MarkPaid(m.background(), &copied); err != nil {
			return errorMsg{err}
		}
		return billPaidMsg{id: copied.ID}
	}
}

// beginEdit reloads the bill with items and projects it into a fresh draft.
func (m Model) beginEdit(id string) tea.Cmd {
	return func() tea.Msg {
		bill, err := m.bills.Get(m.background(), id)
		if err != nil {
			return errorMsg{err}
		}
		return editReadyMsg{billID: id, draft: billing.FromPersisted(bill)}
	}
}

func (m Model) deleteBill(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.bills.Remove(m.background(), id); err != nil {
			return errorMsg{err}
		}
		return billDeletedMsg{id: id}
	}
}

func (m Model) exportWorkbook(bill *domain.PersistedBill) tea.Cmd {
	exportDir := m.exportDir
	return func() tea.Msg {
		f, err := render.Workbook(render.FromPersisted(bill))
		if err != nil {
			return errorMsg{err}
		}
		defer f.Close()
		path := filepath.Join(exportDir, bill.BillNumber+".xlsx")
		if err := f.SaveAs(path); err != nil {
			return errorMsg{err}
		}
		return invoiceSavedMsg{path: path}
	}
}

func (m Model) renderBills() string {
	var b strings.Builder

	title := " Bills "
	if m.filter != "" {
		title = fmt.Sprintf(" Bills (%s) ", m.filter)
	}
	b.WriteString(titleStyle.Render(title))
	if m.nameFilter != "" {
		b.WriteString("  " + helpStyle.Render("name ~ "+m.nameFilter))
	}
	b.WriteString("\n\n")

	visible := m.visibleBills()
	if len(visible) == 0 {
		b.WriteString(helpStyle.Render("  no bills") + "\n")
	}
	for i, bill := range visible {
		prefix := "  "
		if i == m.billCursor {
			prefix = selectedStyle.Render("> ")
		}
		badge := unpaidBadge.Render("due")
		if bill.IsPaid {
			badge = paidBadge.Render("paid")
		}
		fmt.Fprintf(&b, "%s%-20s %-24s %-6s %10s  %s\n",
			prefix, bill.BillNumber, bill.Customer.Name, bill.PaymentType,
			bill.NetPrice.StringFixed(2), badge)
	}

	b.WriteString("\n" + helpStyle.Render("  enter: open  f: payment filter  /: name filter  r: reload  esc: menu"))
	return boxStyle.Render(b.String())
}

func (m Model) renderBillDetail() string {
	bill := m.detail
	if bill == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" "+bill.BillNumber+" ") + "\n\n")

	badge := unpaidBadge.Render("due")
	if bill.IsPaid {
		badge = paidBadge.Render("paid")
	}
	fmt.Fprintf(&b, "  Customer: %s\n", bill.Customer.Name)
	if bill.Customer.Address != "" {
		fmt.Fprintf(&b, "  Address:  %s\n", bill.Customer.Address)
	}
	if bill.Customer.Phone != "" {
		fmt.Fprintf(&b, "  Phone:    %s\n", bill.Customer.Phone)
	}
	fmt.Fprintf(&b, "  Date:     %s\n", bill.CreatedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "  Payment:  %s  %s\n\n", bill.PaymentType, badge)

	for _, item := range bill.Items {
		fmt.Fprintf(&b, "  %-28s %8s x %10s  -%8s  = %10s\n",
			item.ProductName, item.Quantity.String(), item.UnitPrice.StringFixed(2),
			item.Discount.StringFixed(2), item.ExtPrice.StringFixed(2))
	}

	fmt.Fprintf(&b, "\n  Total %s   Discount %s   Net %s\n",
		bill.TotalPrice.StringFixed(2), bill.DiscountAmount.StringFixed(2), bill.NetPrice.StringFixed(2))

	b.WriteString("\n" + helpStyle.Render("  m: mark paid  e: edit  x: delete  v: invoice  w: export xlsx  esc: back"))
	return boxStyle.Render(b.String())
}
