package ui

import (
	"fmt"
	"regexp"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/structview/internal/clipboard"
	"github.com/oakwood-commons/structview/internal/dom"
	"github.com/oakwood-commons/structview/internal/navigator"
	"github.com/oakwood-commons/structview/internal/structview"
)

const gutterWidth = 2

// Options configures a Model.
type Options struct {
	// Config is the render configuration of the viewed value.
	Config structview.Config
	// Viewer options are passed to structview.New.
	Viewer    []structview.Option
	Theme     Theme
	Clipboard clipboard.Copier
	Logger    logr.Logger
	// Width and Height of 0 leave the size to the terminal.
	Width  int
	Height int
}

// loopStepMsg asks the model to run one deferred viewer task.
type loopStepMsg struct{}

func stepLoop() tea.Msg { return loopStepMsg{} }

// Model hosts a struct viewer in a terminal. Keyboard focus moves between
// the painted hotspots and activating one clicks it in the document.
type Model struct {
	doc    *dom.Document
	viewer *structview.Viewer
	data   any
	cfg    structview.Config
	theme  Theme
	keys   KeyMap
	help   help.Model
	search textinput.Model
	copier *statusCopier
	log    logr.Logger

	root      *html.Node
	focus     *html.Node
	bodyFocus *html.Node
	offset    int
	width     int
	height    int

	status    string
	statusErr bool
	searching bool
	stepping  bool
}

// NewModel renders data into a fresh document.
func NewModel(data any, opts Options) (*Model, error) {
	inner := opts.Clipboard
	if inner == nil {
		inner = clipboard.System{}
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := &Model{
		doc:    dom.NewDocument(),
		data:   data,
		cfg:    opts.Config,
		theme:  opts.Theme,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		search: textinput.New(),
		copier: &statusCopier{inner: inner},
		log:    log,
		width:  opts.Width,
		height: opts.Height,
	}
	m.search.Prompt = "/"
	m.search.Placeholder = "regular expression"
	m.search.CharLimit = 200

	viewerOpts := append([]structview.Option{
		structview.WithClipboard(m.copier),
		structview.WithLogger(log),
	}, opts.Viewer...)
	v, err := structview.New(m.doc, viewerOpts...)
	if err != nil {
		return nil, err
	}
	m.viewer = v
	if err := m.render(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) render() error {
	if m.root != nil {
		m.doc.Detach(m.root)
	}
	m.root = dom.New("div")
	m.doc.Body().AppendChild(m.root)
	if _, err := m.viewer.Render(m.root, m.data, m.cfg); err != nil {
		return fmt.Errorf("render value: %w", err)
	}
	m.focus, m.bodyFocus, m.offset = nil, nil, 0
	m.fixFocus()
	return nil
}

// Document returns the document the value is rendered into.
func (m *Model) Document() *dom.Document { return m.doc }

// Viewer returns the struct viewer.
func (m *Model) Viewer() *structview.Viewer { return m.viewer }

// Focus returns the focused element.
func (m *Model) Focus() *html.Node { return m.focus }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

// Close releases the viewer.
func (m *Model) Close() { m.viewer.Close() }

// Settle runs every deferred viewer task.
func (m *Model) Settle() {
	m.viewer.Loop().Drain(0)
	m.stepping = false
	m.fixFocus()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.scheduleLoop()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureVisible()
	case loopStepMsg:
		m.viewer.Loop().Step()
		if m.viewer.Loop().Pending() > 0 {
			return m, stepLoop
		}
		m.stepping = false
		m.fixFocus()
		return m, nil
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	}
	return m, tea.Batch(cmd, m.scheduleLoop())
}

func (m *Model) scheduleLoop() tea.Cmd {
	if m.stepping || m.viewer.Loop().Pending() == 0 {
		return nil
	}
	m.stepping = true
	return stepLoop
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveFocus(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveFocus(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m.moveFocus(-len(m.activeScreen().Hotspots))
	case key.Matches(msg, m.keys.Bottom):
		m.moveFocus(len(m.activeScreen().Hotspots))
	case key.Matches(msg, m.keys.Activate):
		m.activate()
	case key.Matches(msg, m.keys.Actions):
		m.openValueButton("value-actions")
	case key.Matches(msg, m.keys.Signature):
		if m.viewer.SignaturePopup().Visible() {
			m.viewer.SignaturePopup().Hide()
		} else {
			m.openValueButton("show-signature")
		}
	case key.Matches(msg, m.keys.Close):
		m.closePopups()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		current := ""
		if m.cfg.Match != nil {
			current = m.cfg.Match.String()
		}
		m.search.SetValue(current)
		return m.search.Focus()
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.applyMatch(m.search.Value())
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) applyMatch(expr string) {
	var re *regexp.Regexp
	if expr != "" {
		var err error
		if re, err = regexp.Compile(expr); err != nil {
			m.setStatus(fmt.Sprintf("invalid expression: %v", err), true)
			return
		}
	}
	m.closePopups()
	m.cfg.Match = re
	if err := m.render(); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("", false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// popupOpen reports whether a popup with focusable items is shown.
func (m *Model) popupOpen() bool {
	return len(m.popupScreen().Hotspots) > 0
}

func (m *Model) bodyScreen() Screen {
	focus := m.focus
	if m.popupOpen() {
		focus = m.bodyFocus
	}
	return Paint(m.doc, m.doc.Body(), m.theme, focus, m.contentWidth())
}

func (m *Model) popupScreen() Screen {
	return Paint(m.doc, m.doc.Overlay(), m.theme, m.focus, m.contentWidth())
}

func (m *Model) activeScreen() Screen {
	if s := m.popupScreen(); len(s.Hotspots) > 0 {
		return s
	}
	return m.bodyScreen()
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	return max(m.width-gutterWidth, 1)
}

func (m *Model) moveFocus(delta int) {
	s := m.activeScreen()
	if len(s.Hotspots) == 0 {
		return
	}
	idx := s.HotspotAt(m.focus)
	if idx < 0 {
		idx = 0
	} else {
		idx = min(max(idx+delta, 0), len(s.Hotspots)-1)
	}
	m.setFocus(s.Hotspots[idx].Node)
}

func (m *Model) setFocus(n *html.Node) {
	m.focus = n
	if !m.popupOpen() {
		m.bodyFocus = n
	}
	m.doc.Hover(n)
	m.ensureVisible()
}

// fixFocus moves focus to a painted hotspot after the tree changed: the
// first hotspot inside the old focus, else the nearest one below the old
// focus line, else the last one.
func (m *Model) fixFocus() {
	s := m.activeScreen()
	if len(s.Hotspots) == 0 {
		m.focus = nil
		return
	}
	if s.HotspotAt(m.focus) >= 0 {
		return
	}
	if m.focus != nil && m.doc.IsMounted(m.focus) {
		for _, h := range s.Hotspots {
			if dom.Contains(m.focus, h.Node) {
				m.setFocus(h.Node)
				return
			}
		}
	}
	if b := s.HotspotAt(m.bodyFocus); b >= 0 {
		m.setFocus(m.bodyFocus)
		return
	}
	m.setFocus(s.Hotspots[0].Node)
}

func (m *Model) activate() {
	n := m.focus
	if n == nil {
		return
	}
	if href, ok := dom.Attr(n, "href"); ok && n.Data == "a" {
		if err := OpenURL(href); err != nil {
			m.setStatus(err.Error(), true)
		}
		return
	}
	inPopup := dom.Contains(m.doc.Overlay(), n)
	line := m.focusLine()
	m.doc.Click(n)

	if text, isErr, ok := m.copier.take(); ok {
		m.setStatus(text, isErr)
	}
	if inPopup && !m.popupOpen() {
		m.focus = m.bodyFocus
	}
	if !m.doc.IsMounted(m.focus) || m.activeScreen().HotspotAt(m.focus) < 0 {
		m.refocusNear(line)
	}
	m.ensureVisible()
}

// refocusNear focuses the first hotspot inside the old focus or at or
// below line.
func (m *Model) refocusNear(line int) {
	s := m.activeScreen()
	if m.focus != nil && m.doc.IsMounted(m.focus) {
		for _, h := range s.Hotspots {
			if dom.Contains(m.focus, h.Node) {
				m.setFocus(h.Node)
				return
			}
		}
	}
	for _, h := range s.Hotspots {
		if h.Line >= line {
			m.setFocus(h.Node)
			return
		}
	}
	m.focus = nil
	m.fixFocus()
}

// valueElement returns the value element the focus belongs to.
func (m *Model) valueElement() *html.Node {
	n := m.bodyFocus
	if n == nil {
		n = m.focus
	}
	if n == nil {
		return nil
	}
	return dom.Closest(n, dom.ByClass("value"))
}

func (m *Model) openValueButton(class string) {
	el := m.valueElement()
	if el == nil {
		return
	}
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if dom.HasClass(c, class) {
			m.doc.Click(c)
			break
		}
	}
	if s := m.popupScreen(); len(s.Hotspots) > 0 {
		m.focus = s.Hotspots[0].Node
	}
}

func (m *Model) closePopups() {
	m.viewer.ValueActionsPopup().Hide()
	m.viewer.SignaturePopup().Hide()
	if m.bodyFocus != nil {
		m.focus = m.bodyFocus
	}
	m.fixFocus()
}

func (m *Model) focusLine() int {
	s := m.bodyScreen()
	if i := s.HotspotAt(m.bodyFocus); i >= 0 {
		return s.Hotspots[i].Line
	}
	return 0
}

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	used := 2
	if m.help.ShowAll {
		used = 1 + len(m.keys.FullHelp()[0])
	}
	if p := m.popupScreen(); len(p.Lines) > 0 {
		used += len(p.Lines) + 2
	}
	return max(m.height-used, 1)
}

func (m *Model) ensureVisible() {
	h := m.bodyHeight()
	if h <= 0 {
		return
	}
	line := m.focusLine()
	switch {
	case line < m.offset:
		m.offset = line
	case line >= m.offset+h:
		m.offset = line - h + 1
	}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render draws the frame: the visible body lines with a focus gutter, the
// open popup and the status and help lines.
func (m *Model) Render() string {
	body := m.bodyScreen()
	focusLine := -1
	if i := body.HotspotAt(m.bodyFocus); i >= 0 {
		focusLine = body.Hotspots[i].Line
	}

	lines := body.Lines
	start := 0
	if h := m.bodyHeight(); h > 0 {
		start = min(m.offset, max(len(lines)-1, 0))
		lines = lines[start:min(start+h, len(lines))]
	}

	var b strings.Builder
	for i, l := range lines {
		if start+i == focusLine {
			b.WriteString("› ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if popup := m.popupScreen(); len(popup.Lines) > 0 {
		b.WriteString(m.theme.Popup.Render(strings.Join(popup.Lines, "\n")))
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	switch {
	case m.searching:
		return m.search.View()
	case m.status != "" && m.statusErr:
		return m.theme.Error.Render(m.status)
	case m.status != "":
		return m.theme.Status.Render(m.status)
	}
	parts := []string{}
	if el := m.valueElement(); el != nil {
		parts = append(parts, navigator.FormatPath(m.viewer.Path(el)))
	}
	if n := m.viewer.PendingAnnotations(); n > 0 {
		parts = append(parts, fmt.Sprintf("annotating, %s pending", humanize.Comma(int64(n))))
	}
	return m.theme.Status.Render(strings.Join(parts, "  "))
}

// statusCopier forwards copies and remembers the outcome for the status
// line.
type statusCopier struct {
	inner clipboard.Copier
	text  string
	isErr bool
	fresh bool
}

func (c *statusCopier) Copy(text string) error {
	err := c.inner.Copy(text)
	if err != nil {
		c.text, c.isErr = fmt.Sprintf("copy failed: %v", err), true
	} else {
		c.text, c.isErr = fmt.Sprintf("copied %s bytes", humanize.Comma(int64(len(text)))), false
	}
	c.fresh = true
	return err
}

func (c *statusCopier) take() (string, bool, bool) {
	if !c.fresh {
		return "", false, false
	}
	c.fresh = false
	return c.text, c.isErr, true
}
