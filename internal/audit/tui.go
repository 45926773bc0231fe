package audit

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/vacancywatch/internal/model"
	"github.com/amishk599/vacancywatch/internal/notifier"
)

// Lines per vacancy item in the list view (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	newBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	knownBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)
)

// Item is one vacancy as shown in the audit view.
type Item struct {
	ID  string
	URL string
	New bool // not in the known set
}

// BuildItems lists the page's vacancies once each, in page order, marking the
// ones missing from known.
func BuildItems(ids []string, known model.KnownSet, baseURL string) []Item {
	seen := make(map[string]struct{}, len(ids))
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, Item{ID: id, URL: notifier.VacancyURL(baseURL, id), New: !known.Has(id)})
	}
	return items
}

type auditModel struct {
	allItems      []Item
	newItems      []Item
	skipped       int
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailItem     Item
	detailViewport viewport.Model

	opener func(url string)
}

func newAuditModel(items []Item, skipped int) auditModel {
	var fresh []Item
	for _, it := range items {
		if it.New {
			fresh = append(fresh, it)
		}
	}
	return auditModel{
		allItems: items,
		newItems: fresh,
		skipped:  skipped,
		opener:   openURL,
	}
}

func (m auditModel) Init() tea.Cmd {
	return nil
}

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m auditModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil

	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil

	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil

	case "o":
		if it, ok := m.selected(); ok {
			m.opener(it.URL)
		}
		return m, nil

	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m auditModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		m.opener(m.detailItem.URL)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *auditModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.allItems)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.newItems)-1, 0))
	}
}

func (m *auditModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * itemHeight
	cursorBottom := cursorTop + itemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m auditModel) selected() (Item, bool) {
	items, cursor := m.allItems, m.leftCursor
	if m.activePane == 1 {
		items, cursor = m.newItems, m.rightCursor
	}
	if len(items) == 0 {
		return Item{}, false
	}
	return items[cursor], true
}

func (m auditModel) openDetailView() (tea.Model, tea.Cmd) {
	it, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.view = viewDetail
	m.detailItem = it
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *auditModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}
	m.recalcContent()
}

func (m *auditModel) recalcContent() {
	m.leftViewport.SetContent(renderItems(m.allItems, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderItems(m.newItems, m.rightCursor, m.activePane == 1))
}

func (m auditModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m auditModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" On Page (%d)", len(m.allItems))
	rightHeader := fmt.Sprintf(" New (%d)", len(m.newItems))

	leftHeaderRendered, rightHeaderRendered := activeHeaderStyle.Render(leftHeader), inactiveHeaderStyle.Render(rightHeader)
	leftBorder, rightBorder := activeBorderStyle.Width(paneWidth), inactiveBorderStyle.Width(paneWidth)
	if m.activePane == 1 {
		leftHeaderRendered, rightHeaderRendered = inactiveHeaderStyle.Render(leftHeader), activeHeaderStyle.Render(rightHeader)
		leftBorder, rightBorder = inactiveBorderStyle.Width(paneWidth), activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Render(m.leftViewport.View()),
		" ",
		rightBorder.Render(m.rightViewport.View()),
	)

	statusText := fmt.Sprintf(" %d on page | %d new | %d skipped    ←/→/Tab switch  ↑/↓ cursor  Enter detail  o open  q quit",
		len(m.allItems), len(m.newItems), m.skipped)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m auditModel) viewDetail() string {
	title := detailTitleStyle.Render("Vacancy Details")
	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m auditModel) renderDetail() string {
	it := m.detailItem
	var b strings.Builder
	addField := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	addField("Vacancy ID", it.ID)
	addField("Status", statusBadge(it.New))
	addField("URL", it.URL)
	return b.String()
}

func renderItems(items []Item, cursor int, active bool) string {
	if len(items) == 0 {
		return itemSubtitleStyle.Render("  (none)")
	}
	var b strings.Builder
	for i, it := range items {
		title := "Vacancy " + it.ID
		subtitle := statusBadge(it.New) + "  " + it.URL
		if active && i == cursor {
			b.WriteString(selectedTitleStyle.Render("▸ "+title) + "\n")
			b.WriteString(selectedSubtitleStyle.Render("  "+subtitle) + "\n\n")
			continue
		}
		b.WriteString(itemTitleStyle.Render("  "+title) + "\n")
		b.WriteString(itemSubtitleStyle.Render("  "+subtitle) + "\n\n")
	}
	return b.String()
}

func statusBadge(isNew bool) string {
	if isNew {
		return newBadgeStyle.Render("NEW")
	}
	return knownBadgeStyle.Render("known")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunAuditTUI launches the split-pane audit view: every vacancy on the page on
// the left, the ones not yet known on the right. It never modifies the known set.
func RunAuditTUI(items []Item, skipped int) error {
	p := tea.NewProgram(newAuditModel(items, skipped), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
