// Package picker asks the user to choose packages from a list.
package picker

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/terminal"
)

var (
	// ErrNotInteractive is returned when stdin or stdout is not a terminal.
	ErrNotInteractive = errors.New(messages.InteractiveRequiresTerminal)
	// ErrCancelled is returned when the user aborts the prompt.
	ErrCancelled = errors.New(messages.InteractiveCancelled)
)

// filterThreshold is the option count above which the list becomes filterable.
const filterThreshold = 12

// Picker chooses a subset of options.
type Picker interface {
	Pick(title string, options []string) ([]string, error)
}

// HuhPicker implements Picker with a charmbracelet/huh multi-select.
type HuhPicker struct {
	isTerminal func() bool
	in         io.Reader // nil reads the terminal
	out        io.Writer
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// New returns a HuhPicker drawing on stderr, so stdout stays clean for results.
func New() *HuhPicker {
	return &HuhPicker{isTerminal: terminal.IsInteractive, out: os.Stderr}
}

// Pick shows options and returns the selected ones in option order.
func (p *HuhPicker) Pick(title string, options []string) ([]string, error) {
	checker := p.isTerminal
	if checker == nil {
		checker = terminal.IsInteractive
	}
	if !checker() {
		return nil, ErrNotInteractive
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}
	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Filterable(len(options) > filterThreshold).
				Options(opts...).
				Value(&selected),
		),
	)
	out := p.out
	if out == nil {
		out = os.Stderr
	}
	programOpts := []tea.ProgramOption{
		tea.WithOutput(out),
		tea.WithFilter(interruptFilter),
	}
	if p.in != nil {
		programOpts = append(programOpts, tea.WithInput(p.in))
	}
	form.WithAccessible(false)
	form.WithKeyMap(pickerKeyMap())
	form.WithProgramOptions(programOpts...)

	if err := runFormFunc(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}
		return nil, err
	}
	return inOptionOrder(options, selected), nil
}

// pickerKeyMap makes Esc abort the prompt alongside Ctrl+C.
func pickerKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

// interruptFilter converts InterruptMsg (huh's cancel command or an external
// SIGINT) to QuitMsg so bubbletea takes the graceful path and clears the form.
func interruptFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.InterruptMsg); ok {
		return tea.QuitMsg{}
	}
	return msg
}

func inOptionOrder(options []string, selected []string) []string {
	chosen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		chosen[s] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, o := range options {
		if _, ok := chosen[o]; ok {
			out = append(out, o)
		}
	}
	return out
}
