// Package tui is the terminal rendition of the single-page expert form.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"zr3/senmon/internal/expert"
	"zr3/senmon/internal/persona"
)

const emptyQuestionWarning = "Please enter a question."

// Responder is satisfied by *expert.Service.
type Responder interface {
	Respond(ctx context.Context, userText, personaID string) expert.Result
	Catalog() *persona.Catalog
}

type focus int

const (
	focusQuestion focus = iota
	focusPersonas
)

type answerMsg struct {
	result expert.Result
}

type Form struct {
	catalog   *persona.Catalog
	responder Responder

	ids      []string
	selected int
	focus    focus

	question textarea.Model
	spinner  spinner.Model

	width    int
	waiting  bool
	warning  string
	result   *expert.Result
	rendered string
}

// NewForm preselects personaID, or the catalog default when it is unknown.
func NewForm(responder Responder, personaID string) *Form {
	ta := textarea.New()
	ta.Placeholder = "e.g. How do I read a file in Go?"
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(6)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	catalog := responder.Catalog()
	f := &Form{
		catalog:   catalog,
		responder: responder,
		ids:       catalog.IDs(),
		question:  ta,
		spinner:   sp,
	}
	for i, id := range f.ids {
		if id == personaID {
			f.selected = i
		}
	}
	return f
}

// Selected is the persona id currently chosen.
func (f *Form) Selected() string {
	return f.ids[f.selected]
}

func (f *Form) Init() tea.Cmd {
	return textarea.Blink
}

func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		f.question.SetWidth(max(30, msg.Width/2-4))
		return f, nil

	case tea.KeyMsg:
		return f, f.handleKey(msg)

	case spinner.TickMsg:
		if !f.waiting {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case answerMsg:
		f.waiting = false
		f.result = &msg.result
		if msg.result.OK() {
			f.rendered = RenderMarkdown(msg.result.Text, f.answerWidth())
		} else {
			f.rendered = styleError.Render(msg.result.String())
		}
		return f, nil
	}

	var cmd tea.Cmd
	if f.focus == focusQuestion && !f.waiting {
		f.question, cmd = f.question.Update(msg)
	}
	return f, cmd
}

func (f *Form) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		return tea.Quit
	}
	// one question at a time
	if f.waiting {
		return nil
	}

	switch {
	case key.Matches(msg, keys.Submit):
		return f.submit()

	case key.Matches(msg, keys.Switch):
		if f.focus == focusQuestion {
			f.focus = focusPersonas
			f.question.Blur()
			return nil
		}
		f.focus = focusQuestion
		return f.question.Focus()
	}

	if f.focus == focusPersonas {
		switch {
		case key.Matches(msg, keys.Up):
			if f.selected > 0 {
				f.selected--
			}
		case key.Matches(msg, keys.Down):
			if f.selected < len(f.ids)-1 {
				f.selected++
			}
		}
		return nil
	}

	var cmd tea.Cmd
	f.question, cmd = f.question.Update(msg)
	return cmd
}

func (f *Form) submit() tea.Cmd {
	text := f.question.Value()
	if strings.TrimSpace(text) == "" {
		f.warning = emptyQuestionWarning
		return nil
	}

	f.warning = ""
	f.waiting = true
	f.result = nil
	f.rendered = ""
	return tea.Batch(f.spinner.Tick, f.ask(text, f.Selected()))
}

func (f *Form) ask(text, personaID string) tea.Cmd {
	responder := f.responder
	return func() tea.Msg {
		return answerMsg{result: responder.Respond(context.Background(), text, personaID)}
	}
}

func (f *Form) answerWidth() int {
	if f.width <= 0 {
		return defaultWrap
	}
	return max(40, f.width-4)
}

func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("senmon · ask an expert"))
	b.WriteString("\n")
	b.WriteString(styleSubtitle.Render("Pick an expert, type your question and press ctrl+s."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, f.viewPersonas(), "  ", f.viewQuestion()))
	b.WriteString("\n\n")

	switch {
	case f.waiting:
		b.WriteString(f.spinner.View() + " Generating answer...")
		b.WriteString("\n")
	case f.warning != "":
		b.WriteString(styleWarning.Render(f.warning))
		b.WriteString("\n")
	case f.result != nil:
		b.WriteString(styleHeading.Render("Answer"))
		b.WriteString("\n")
		b.WriteString(f.rendered)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render(helpLine()))
	return b.String()
}

func (f *Form) viewPersonas() string {
	var b strings.Builder
	b.WriteString(styleHeading.Render("Choose an expert"))
	b.WriteString("\n")
	for i, id := range f.ids {
		if i == f.selected {
			b.WriteString(styleSelected.Render("(•) " + id))
		} else {
			b.WriteString("( ) " + id)
		}
		b.WriteString("\n")
	}

	p, _ := f.catalog.Get(f.Selected())
	info := styleInfo.Width(40).Render(fmt.Sprintf("%s\n\n%s", p.ID, p.Instruction))
	b.WriteString("\n")
	b.WriteString(info)

	style := styleBox
	if f.focus == focusPersonas {
		style = styleFocused
	}
	return style.Render(b.String())
}

func (f *Form) viewQuestion() string {
	var b strings.Builder
	b.WriteString(styleHeading.Render("Your question"))
	b.WriteString("\n")
	b.WriteString(f.question.View())

	style := styleBox
	if f.focus == focusQuestion {
		style = styleFocused
	}
	return style.Render(b.String())
}

func helpLine() string {
	bindings := []key.Binding{keys.Switch, keys.Up, keys.Down, keys.Submit, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Run blocks until the user quits the form.
func Run(form *Form) error {
	_, err := tea.NewProgram(form, tea.WithAltScreen()).Run()
	return err
}
