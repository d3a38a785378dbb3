// Package picker is a small terminal UI for choosing one bookmark from a
// fuzzy title search.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)
)

// Action is what the user chose to do with the selection.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionCopy
)

// Picker filters bookmarks by title as the user types.
type Picker struct {
	bookmarks []model.Bookmark
	results   []search.FuzzyResult
	input     textinput.Model
	keys      KeyMap
	help      help.Model
	cursor    int
	action    Action
	width     int
	height    int
}

// New creates a Picker over bookmarks with an initial query.
func New(bookmarks []model.Bookmark, query string) Picker {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Search bookmarks..."
	input.CharLimit = 200
	input.SetValue(query)
	input.Focus()

	p := Picker{
		bookmarks: bookmarks,
		input:     input,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		width:     80,
		height:    24,
	}
	p.filter()
	return p
}

// filter reruns the search for the current query. An empty query lists
// every bookmark.
func (p *Picker) filter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.results = make([]search.FuzzyResult, len(p.bookmarks))
		for i, b := range p.bookmarks {
			p.results[i] = search.FuzzyResult{Bookmark: b}
		}
	} else {
		p.results = search.Fuzzy(p.bookmarks, query)
	}
	if p.cursor >= len(p.results) {
		p.cursor = max(len(p.results)-1, 0)
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.help.Width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.action = ActionNone
			return p, tea.Quit
		case key.Matches(msg, p.keys.Open):
			if len(p.results) > 0 {
				p.action = ActionOpen
				return p, tea.Quit
			}
			return p, nil
		case key.Matches(msg, p.keys.Copy):
			if len(p.results) > 0 {
				p.action = ActionCopy
				return p, tea.Quit
			}
			return p, nil
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.filter()
	}
	return p, cmd
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Bookmarks (%d/%d)", len(p.results), len(p.bookmarks))))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	// Two lines per result plus header, input and footer.
	visible := max((p.height-6)/2, 1)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(start+visible, len(p.results))

	if len(p.results) == 0 {
		b.WriteString(urlStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		r := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}
		b.WriteString(cursor)
		b.WriteString(highlight(r.Bookmark.Title, r.MatchedIndexes, style))
		b.WriteString("\n   ")
		b.WriteString(urlStyle.Render(r.Bookmark.URL))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.help.View(p.keys))
	return b.String()
}

// highlight renders title with the matched byte offsets emphasized.
func highlight(title string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return style.Render(title)
	}
	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}

	var b strings.Builder
	for i, r := range title {
		if set[i] {
			b.WriteString(matchStyle.Inherit(style).Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

// Selected returns the chosen bookmark and action. The bookmark is nil when
// the picker was cancelled.
func (p Picker) Selected() (*model.Bookmark, Action) {
	if p.action == ActionNone || p.cursor >= len(p.results) {
		return nil, ActionNone
	}
	b := p.results[p.cursor].Bookmark
	return &b, p.action
}

// Query returns the text typed so far.
func (p Picker) Query() string {
	return p.input.Value()
}

// Run shows the picker on the terminal and returns the selection.
func Run(bookmarks []model.Bookmark, query string) (*model.Bookmark, Action, error) {
	final, err := tea.NewProgram(New(bookmarks, query)).Run()
	if err != nil {
		return nil, ActionNone, err
	}
	b, action := final.(Picker).Selected()
	return b, action, nil
}
