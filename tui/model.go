package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-rho/config"
	"go-rho/debug"
	"go-rho/midi"
	"go-rho/pads"
	"go-rho/sequencer"
	"go-rho/theme"
	"go-rho/widgets"
)

// DefaultSaveDelay is how long settings must stay unchanged before they are
// written to the config file.
const DefaultSaveDelay = 500 * time.Millisecond

// Runner is the part of sequencer.Runner the UI drives
type Runner interface {
	Send(cmd sequencer.Command) error
	Status() *sequencer.Status
}

// ChannelSetter is the note output's channel control
type ChannelSetter interface {
	Channel() int
	SetChannel(channel int) error
}

// Deps is everything the model talks to. Only Runner and Theme are required.
type Deps struct {
	Runner    Runner
	Updates   <-chan struct{}
	Devices   *midi.DeviceManager
	Bridge    *pads.Bridge
	Output    ChannelSetter
	Config    *config.Config
	Theme     *theme.Theme
	SaveDelay time.Duration
}

type Model struct {
	Deps

	cursorRow  int
	cursorStep int
	message    string
	quitting   bool

	save  func(f func())
	cfgMu *sync.Mutex
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(d Deps) Model {
	if d.SaveDelay <= 0 {
		d.SaveDelay = DefaultSaveDelay
	}
	return Model{
		Deps:  d,
		save:  debounce.New(d.SaveDelay),
		cfgMu: &sync.Mutex{},
	}
}

func ListenForUpdates(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Updates),
		ListenForDevices(m.Devices),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		if m.Bridge != nil {
			m.Bridge.Sync(m.Runner.Status())
		}
		return m, ListenForUpdates(m.Updates)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if m.Bridge != nil {
			m.Bridge.HandleDevice(event)
		}
		if event.Type == midi.DeviceConnected {
			m.message = fmt.Sprintf("connected %s", event.ID)
			if m.remember(event) {
				m.persist()
			}
		} else {
			m.message = fmt.Sprintf("disconnected %s", event.ID)
		}
		return m, ListenForDevices(m.Devices)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	st := m.Runner.Status()
	row := st.Rows[m.cursorRow]
	persist := false

	var cmd sequencer.Command
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.writeConfig()
		return m, tea.Quit

	case "left":
		if m.cursorStep > 0 {
			m.cursorStep--
		}
	case "right":
		if m.cursorStep < sequencer.MaxRowLength-1 {
			m.cursorStep++
		}
	case "up":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down":
		if m.cursorRow < sequencer.NumRows-1 {
			m.cursorRow++
		}

	case " ":
		if m.cursorStep < len(row.Steps) {
			cmd = sequencer.ToggleStepCmd{Row: m.cursorRow, Step: m.cursorStep}
		} else {
			cmd = sequencer.RowLengthCmd{Row: m.cursorRow, Length: m.cursorStep + 1}
		}
	case "[":
		if len(row.Steps) > sequencer.MinRowLength {
			cmd = sequencer.RowLengthCmd{Row: m.cursorRow, Length: len(row.Steps) - 1}
		}
	case "]":
		if len(row.Steps) < sequencer.MaxRowLength {
			cmd = sequencer.RowLengthCmd{Row: m.cursorRow, Length: len(row.Steps) + 1}
		}
	case "a":
		cmd = sequencer.RowActiveCmd{Row: m.cursorRow, Active: !row.Active}

	case "-":
		cmd, persist = sequencer.DensityStepCmd{Delta: -1}, true
	case "=":
		cmd, persist = sequencer.DensityStepCmd{Delta: 1}, true
	case "n":
		cmd = sequencer.RegenerateCmd{}
	case "N":
		cmd = sequencer.RandomizeCmd{}
	case "h":
		cmd, persist = sequencer.HoldCmd{Enabled: !st.Hold}, true
	case "o":
		if o, err := sequencer.ParseOrdering(st.Ordering); err == nil {
			cmd, persist = sequencer.OrderingCmd{Ordering: o.Next()}, true
		}
	case "w":
		if w, err := sequencer.ParseWrapping(st.Wrapping); err == nil {
			cmd, persist = sequencer.WrappingCmd{Wrapping: w.Next()}, true
		}
	case "+":
		if st.Rate+1 < st.SampleRate {
			cmd, persist = sequencer.ClockRateCmd{Rate: st.Rate + 1}, true
		}
	case "_":
		if st.Rate > 1 {
			cmd, persist = sequencer.ClockRateCmd{Rate: st.Rate - 1}, true
		}

	case "c", "C":
		if m.Output != nil {
			delta := 1
			if key == "C" {
				delta = 15
			}
			if err := m.Output.SetChannel((m.Output.Channel() + delta) % 16); err != nil {
				m.message = err.Error()
			}
			persist = true
		}
	}

	if cmd != nil {
		if err := m.Runner.Send(cmd); err != nil {
			m.message = err.Error()
		} else {
			m.message = ""
		}
	}
	if persist {
		m.persist()
	}
	return m, nil
}

// persist schedules a config save once changes settle
func (m Model) persist() {
	if m.Config == nil {
		return
	}
	m.save(m.writeConfig)
}

// remember adds a newly seen controller to the config so it reconnects on
// the next start. It reports whether the config changed.
func (m Model) remember(ev midi.DeviceEvent) bool {
	if m.Config == nil || ev.Controller == nil {
		return false
	}
	m.cfgMu.Lock()
	defer m.cfgMu.Unlock()

	if m.Config.FindController(ev.ID) != nil {
		return false
	}
	typ := config.ControllerKeyboard
	if ev.Controller.Type() == midi.ControllerLaunchpad {
		typ = config.ControllerLaunchpadX
	}
	m.Config.AddController(config.ControllerConfig{PortName: ev.ID, Type: typ, AutoConnect: true})
	return true
}

// writeConfig copies the live settings into the config and saves it
func (m Model) writeConfig() {
	if m.Config == nil {
		return
	}
	m.cfgMu.Lock()
	defer m.cfgMu.Unlock()

	if st := m.Runner.Status(); st != nil {
		m.Config.Clock.Rate = st.Rate
		m.Config.Clock.DutyCycle = st.DutyCycle
		m.Config.Grid.Density = st.Density
		m.Config.Arp.Hold = st.Hold
		m.Config.Arp.Ordering = st.Ordering
		m.Config.Arp.Wrapping = st.Wrapping
	}
	if m.Output != nil {
		m.Config.MIDI.OutChannel = m.Output.Channel()
	}
	if err := m.Config.Save(); err != nil {
		debug.Log("config", "save: %v", err)
	}
}

var keyHelp = []widgets.KeySection{
	{Title: "Grid", Keys: []widgets.KeyBinding{
		{Key: "arrows", Desc: "move"},
		{Key: "space", Desc: "toggle step"},
		{Key: "[ ]", Desc: "row length"},
		{Key: "a", Desc: "row on/off"},
		{Key: "- =", Desc: "density"},
		{Key: "n", Desc: "new distribution"},
		{Key: "N", Desc: "randomize"},
	}},
	{Title: "Arp", Keys: []widgets.KeyBinding{
		{Key: "h", Desc: "hold"},
		{Key: "o", Desc: "ordering"},
		{Key: "w", Desc: "wrapping"},
		{Key: "_ +", Desc: "clock rate"},
		{Key: "c C", Desc: "output channel"},
		{Key: "q", Desc: "quit"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.Runner.Status()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Color(theme.RoleAccent))
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Color(theme.RoleMuted))
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.Color(theme.RoleFG))
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Color(theme.RoleWarning))

	gate := "○"
	if st.Gate {
		gate = "●"
	}
	hold := "off"
	if st.Hold {
		hold = "on"
	}
	channel := "-"
	if m.Output != nil {
		channel = fmt.Sprintf("%d", m.Output.Channel()+1)
	}
	controllers := ""
	if m.Bridge != nil && len(m.Bridge.Surfaces()) > 0 {
		controllers = "  LP:X"
	}

	header := headerStyle.Render(fmt.Sprintf("rho  %s %4.1fHz  density %3.0f%%  hold:%s  order:%s  wrap:%s  ch:%s%s",
		gate, st.Rate, st.Density*100, hold, st.Ordering, st.Wrapping, channel, controllers))

	var rows []string
	for i, row := range st.Rows {
		cursor := -1
		if i == m.cursorRow {
			cursor = m.cursorStep
		}
		steps := widgets.RenderSteps(widgets.StepRow{
			Steps:    row.Steps,
			Playhead: row.Playhead,
			Cursor:   cursor,
			Width:    sequencer.MaxRowLength,
			Color:    m.Theme.RowColor(i, sequencer.NumRows),
			Dimmed:   !row.Active,
		}, m.Theme.Symbols, m.Theme.Color(theme.RoleMuted))

		label := fgStyle.Render(fmt.Sprintf("%d", i+1))
		if !row.Active {
			label = dimStyle.Render(fmt.Sprintf("%d", i+1))
		}
		rows = append(rows, fmt.Sprintf("%s  %s   %s", label, steps, noteNames(row.Notes)))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(strings.Join(rows, "\n"))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("held: " + noteNames(st.HeldNotes)))
	out.WriteString("\n")

	if m.Bridge != nil {
		if f := m.Bridge.Preview(); f != nil {
			out.WriteString("\n")
			out.WriteString(widgets.RenderPadGrid(f.Colors()))
			out.WriteString("\n")
		}
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))

	if st.LastError != "" {
		out.WriteString("\n\n")
		out.WriteString(warnStyle.Render(st.LastError))
	}
	if m.message != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(m.message))
	}
	return out.String()
}

func noteNames(notes []sequencer.Note) string {
	if len(notes) == 0 {
		return "-"
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Name()
	}
	return strings.Join(names, " ")
}
