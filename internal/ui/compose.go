package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sanraw/console/internal/billing"
	"sanraw/console/internal/domain"
	"sanraw/console/internal/render"
)

func (m Model) loadCatalog(category domain.Category) tea.Cmd {
	return func() tea.Msg {
		items, err := m.catalog.Load(m.background(), category)
		if err != nil {
			return errorMsg{err}
		}
		return catalogLoadedMsg{category: category, items: items}
	}
}

func (m Model) handleComposeKeys(key string) (tea.Model, tea.Cmd) {
	// A save command may be reading this draft from its own goroutine; every
	// key is ignored until the response lands so the draft is never written
	// while in flight.
	if m.loading {
		return m, nil
	}

	switch key {
	case "esc":
		// Draft is abandoned, not saved.
		m.draft = nil
		m.editingID = ""
		m.view = viewMenu
		return m, nil

	case "tab":
		m.pane = (m.pane + 1) % 2
		return m, nil

	case "1", "2", "3":
		categories := domain.Categories()
		next := categories[int(key[0]-'1')]
		if next != m.category {
			m.loading = true
			m.cursor = 0
			return m, m.loadCatalog(next)
		}
		return m, nil

	case "up", "k":
		if m.pane == 0 && m.cursor > 0 {
			m.cursor--
		}
		if m.pane == 1 && m.lineCursor > 0 {
			m.lineCursor--
		}
		return m, nil

	case "down", "j":
		if m.pane == 0 && m.cursor < len(m.items)-1 {
			m.cursor++
		}
		if m.pane == 1 && m.lineCursor < len(m.draft.Lines())-1 {
			m.lineCursor++
		}
		return m, nil

	case "enter", "a":
		if m.pane == 0 {
			if len(m.items) == 0 {
				return m, nil
			}
			m.targetItem = m.items[m.cursor].ID
			m.targetLine = ""
			m.initLineForm(true)
			m.view = viewQuantityForm
			return m, nil
		}
		lines := m.draft.Lines()
		if len(lines) == 0 {
			return m, nil
		}
		m.targetLine = lines[m.lineCursor].LineID
		m.targetItem = ""
		m.initLineForm(false)
		m.view = viewQuantityForm
		return m, nil

	case "d":
		if m.pane != 1 {
			return m, nil
		}
		lines := m.draft.Lines()
		if len(lines) == 0 {
			return m, nil
		}
		m.draft.RemoveLine(lines[m.lineCursor].LineID)
		if m.lineCursor > 0 {
			m.lineCursor--
		}
		return m, nil

	case "c":
		m.initCustomerForm()
		m.view = viewCustomerForm
		return m, nil

	case "p":
		// Payment type is immutable once persisted and never resent on
		// update, so toggling it during an edit would only show a change
		// that cannot be saved.
		if m.editingID != "" {
			return m, nil
		}
		if m.draft.PaymentMethod() == domain.PaymentCash {
			m.draft.SetPaymentMethod(domain.PaymentCredit)
		} else {
			m.draft.SetPaymentMethod(domain.PaymentCash)
		}
		return m, nil

	case "v":
		m.invoiceText = render.Text(render.FromDraft(m.draft, "(unsaved)", time.Now()))
		m.prevView = viewCompose
		m.view = viewInvoice
		return m, nil

	case "s":
		m.loading = true
		m.errText = ""
		m.status = ""
		return m, m.saveDraft()
	}
	return m, nil
}

func (m *Model) initCustomerForm() {
	m.inputs = make([]textinput.Model, 3)
	customer := m.draft.Customer()
	for i, seed := range []struct {
		placeholder string
		value       string
	}{
		{"Customer Name", customer.Name},
		{"Address", customer.Address},
		{"Phone", customer.Phone},
	} {
		m.inputs[i] = textinput.New()
		m.inputs[i].Placeholder = seed.placeholder
		m.inputs[i].SetValue(seed.value)
	}
	m.inputs[0].Focus()
	m.focusIndex = 0
}

// initLineForm builds the quantity form. Adding a new line also asks for a
// discount; requantifying an existing line keeps its discount.
func (m *Model) initLineForm(withDiscount bool) {
	n := 1
	if withDiscount {
		n = 2
	}
	m.inputs = make([]textinput.Model, n)
	m.inputs[0] = textinput.New()
	m.inputs[0].Placeholder = "Quantity"
	m.inputs[0].Focus()
	if withDiscount {
		m.inputs[1] = textinput.New()
		m.inputs[1].Placeholder = "Discount (optional)"
	}
	m.focusIndex = 0
}

func (m Model) formLabels() []string {
	if m.targetLine != "" {
		return []string{"Quantity:"}
	}
	return []string{"Quantity:", "Discount:"}
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.view == viewSearchForm {
			m.view = viewBills
		} else {
			m.view = viewCompose
		}
		return m, nil

	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		return m.refocus()

	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.inputs)) % len(m.inputs)
		return m.refocus()

	case "enter":
		if m.focusIndex < len(m.inputs)-1 {
			m.focusIndex++
			return m.refocus()
		}
		return m.submitForm()
	}

	return m.updateInputs(msg)
}

func (m Model) refocus() (tea.Model, tea.Cmd) {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.view == viewSearchForm {
		m.nameFilter = strings.TrimSpace(m.inputs[0].Value())
		m.billCursor = 0
		m.view = viewBills
		return m, nil
	}

	if m.view == viewCustomerForm {
		m.draft.SetCustomer(m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value())
		m.view = viewCompose
		return m, nil
	}

	if m.targetLine != "" {
		if err := m.draft.UpdateQuantity(m.targetLine, m.inputs[0].Value()); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.errText = ""
		m.view = viewCompose
		return m, nil
	}

	item, ok := m.catalog.Lookup(m.targetItem)
	if !ok {
		m.errText = "item no longer in catalog"
		m.view = viewCompose
		return m, nil
	}
	line, err := billing.BuildLine(item, m.inputs[0].Value(), m.inputs[1].Value())
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.draft.AddLine(line)
	m.errText = ""
	m.pane = 1
	m.lineCursor = len(m.draft.Lines()) - 1
	m.view = viewCompose
	return m, nil
}

func (m Model) saveDraft() tea.Cmd {
	draft, editingID := m.draft, m.editingID
	return func() tea.Msg {
		if editingID == "" {
			result, err := m.bills.Create(m.background(), draft)
			if err != nil {
				return errorMsg{err}
			}
			return billSavedMsg{billNumber: result.BillNumber}
		}
		if err := m.bills.Update(m.background(), editingID, draft); err != nil {
			return errorMsg{err}
		}
		return billSavedMsg{billNumber: "bill " + editingID}
	}
}

func (m Model) renderCompose() string {
	var b strings.Builder

	header := " New Bill "
	if m.editingID != "" {
		header = " Edit Bill " + m.editingID + " "
	}
	b.WriteString(titleStyle.Render(header) + "\n\n")

	b.WriteString("  Category: ")
	for i, category := range domain.Categories() {
		label := fmt.Sprintf("%d %s", i+1, category)
		if category == m.category {
			label = selectedStyle.Render(label)
		}
		b.WriteString(label + "   ")
	}
	b.WriteString("\n\n")

	for i, item := range m.items {
		prefix := "  "
		if m.pane == 0 && i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-28s %10s  stock %s\n",
			prefix, item.DisplayName, item.UnitPrice.StringFixed(2), item.StockQuantity.String())
	}
	if len(m.items) == 0 {
		b.WriteString(helpStyle.Render("  (no items in this category)") + "\n")
	}
	b.WriteString("\n")

	customer := m.draft.Customer()
	name := customer.Name
	if name == "" {
		name = helpStyle.Render("(not set)")
	}
	fmt.Fprintf(&b, "  Customer: %s    Payment: %s\n\n", name, m.draft.PaymentMethod())

	lines := m.draft.Lines()
	if len(lines) == 0 {
		b.WriteString(helpStyle.Render("  no items yet") + "\n")
	}
	for i, line := range lines {
		prefix := "  "
		if m.pane == 1 && i == m.lineCursor {
			prefix = selectedStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-28s %8s x %10s  -%8s  = %10s\n",
			prefix, line.ProductName, line.Quantity.String(), line.UnitPrice.StringFixed(2),
			line.Discount.StringFixed(2), line.ExtPrice.StringFixed(2))
	}

	totals := m.draft.Totals()
	fmt.Fprintf(&b, "\n  Total %s   Discount %s   Net %s\n",
		totals.TotalPrice.StringFixed(2), totals.DiscountAmount.StringFixed(2), totals.NetPrice.StringFixed(2))

	b.WriteString("\n" + helpStyle.Render("  tab: pane  1-3: category  enter: add/requantify  d: remove  c: customer  p: payment  v: preview  s: save  esc: discard"))
	return boxStyle.Render(b.String())
}

func (m Model) renderForm(title string, labels []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" "+title+" ") + "\n\n")
	for i, input := range m.inputs {
		b.WriteString(fmt.Sprintf("  %s\n", labels[i]))
		b.WriteString(fmt.Sprintf("  %s\n\n", input.View()))
	}
	b.WriteString(helpStyle.Render("  enter: confirm  esc: cancel"))
	return boxStyle.Render(b.String())
}
