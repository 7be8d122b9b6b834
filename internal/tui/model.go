// Package tui implements the interactive terminal front end.
//
// All ledger state lives behind the Ledger interface; the model only keeps
// UI state (input mode, cursors, pending input) and a copy of the last
// computed settlement plan.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmynk/dangidongi/internal/models"
)

// Ledger is what the UI needs from the service layer.
type Ledger interface {
	AddParticipant(name string) error
	RemoveParticipant(name string) error
	Participants() []models.User
	Transactions() []models.Transaction
	RecordEqualPayment(payer string, amount float64) (models.Transaction, error)
	RemoveTransaction(index int) (models.Transaction, error)
	SettleUp()
	ComputeSettlement() ([]models.Transfer, error)
	Save(ctx context.Context) error
	Dirty() bool
	Epsilon() float64
}

// ErrAborted is returned by Run when the user force-quits with unsaved
// changes.
var ErrAborted = errors.New("quit without saving")

// InputMode is the state of the input state machine.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeAddingUser
	ModeAddingAmount
	ModeChoosingPayer
	ModeConfirmSettleUp
)

func (m InputMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAddingUser:
		return "adding user"
	case ModeAddingAmount:
		return "adding amount"
	case ModeChoosingPayer:
		return "choosing payer"
	case ModeConfirmSettleUp:
		return "confirm settle up"
	default:
		return "unknown"
	}
}

type pane int

const (
	paneUsers pane = iota
	paneTransactions
)

const minParticipantsHint = "Please add at least two users to start recording transactions."

// Model is the bubbletea model of the application.
type Model struct {
	ledger Ledger
	keys   keyMap
	help   help.Model
	styles Styles

	mode          InputMode
	focus         pane
	nameInput     textinput.Model
	amountInput   string
	pendingAmount float64

	userCursor  int
	txCursor    int
	payerCursor int

	plan    []models.Transfer
	planErr error

	status      string
	statusError bool

	width    int
	height   int
	quitting bool
	aborted  bool
}

// New creates the model for l and computes the initial plan.
func New(l Ledger) Model {
	ti := textinput.New()
	ti.Placeholder = "name"
	ti.Prompt = "> "
	ti.CharLimit = 64

	m := Model{
		ledger:    l,
		keys:      defaultKeyMap(),
		help:      help.New(),
		styles:    DefaultStyles(),
		nameInput: ti,
	}
	m.refreshPlan()
	return m
}

// Run starts the UI on the alternate screen and blocks until it exits.
// A force quit returns ErrAborted so the caller can skip saving.
func Run(l Ledger) error {
	final, err := tea.NewProgram(New(l), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.aborted {
		return ErrAborted
	}
	return nil
}

// Mode returns the current input mode.
func (m Model) Mode() InputMode {
	return m.mode
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			m.quitting = true
			m.aborted = m.ledger.Dirty()
			return m, tea.Quit
		}
		switch m.mode {
		case ModeAddingUser:
			return m.updateAddingUser(msg)
		case ModeAddingAmount:
			return m.updateAddingAmount(msg), nil
		case ModeChoosingPayer:
			return m.updateChoosingPayer(msg), nil
		case ModeConfirmSettleUp:
			return m.updateConfirmSettleUp(msg), nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.ledger.Dirty() {
			if err := m.ledger.Save(context.Background()); err != nil {
				m.setError(fmt.Errorf("not saved, press ctrl+c to quit without saving: %w", err))
				return m, nil
			}
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.AddUser):
		m.mode = ModeAddingUser
		m.nameInput.Reset()
		return m, m.nameInput.Focus()

	case key.Matches(msg, m.keys.AddTx):
		if len(m.ledger.Participants()) < 2 {
			m.setStatus(minParticipantsHint)
			return m, nil
		}
		m.mode = ModeAddingAmount
		m.amountInput = ""

	case key.Matches(msg, m.keys.Tab):
		if m.focus == paneUsers {
			m.focus = paneTransactions
		} else {
			m.focus = paneUsers
		}

	case key.Matches(msg, m.keys.Up):
		if m.focus == paneUsers {
			m.userCursor = clamp(m.userCursor-1, len(m.ledger.Participants()))
		} else {
			m.txCursor = clamp(m.txCursor-1, len(m.ledger.Transactions()))
		}

	case key.Matches(msg, m.keys.Down):
		if m.focus == paneUsers {
			m.userCursor = clamp(m.userCursor+1, len(m.ledger.Participants()))
		} else {
			m.txCursor = clamp(m.txCursor+1, len(m.ledger.Transactions()))
		}

	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()

	case key.Matches(msg, m.keys.Settle):
		m.refreshPlan()
		if m.planErr == nil {
			m.setStatus(fmt.Sprintf("Settlement needs %d transfer(s).", len(m.plan)))
		}

	case key.Matches(msg, m.keys.SettleUp):
		m.mode = ModeConfirmSettleUp

	case key.Matches(msg, m.keys.Save):
		if err := m.ledger.Save(context.Background()); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Saved.")
		}
	}
	return m, nil
}

func (m Model) updateAddingUser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.nameInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		name := strings.TrimSpace(m.nameInput.Value())
		if name != "" {
			if err := m.ledger.AddParticipant(name); err != nil {
				m.setError(err)
			} else {
				m.setStatus(fmt.Sprintf("User %s added.", name))
				m.refreshPlan()
			}
		}
		m.mode = ModeNormal
		m.nameInput.Blur()
		m.nameInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m Model) updateAddingAmount(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		return m

	case key.Matches(msg, m.keys.Confirm):
		input := strings.TrimSpace(m.amountInput)
		m.amountInput = ""
		if input == "" {
			m.mode = ModeNormal
			return m
		}
		amount, err := strconv.ParseFloat(input, 64)
		if err != nil || amount <= 0 {
			m.setError(fmt.Errorf("invalid amount %q", input))
			m.mode = ModeNormal
			return m
		}
		m.pendingAmount = amount
		m.payerCursor = 0
		m.mode = ModeChoosingPayer
		return m
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if n := len(m.amountInput); n > 0 {
			m.amountInput = m.amountInput[:n-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			switch {
			case r >= '0' && r <= '9':
				m.amountInput += string(r)
			case r == '.' && !strings.Contains(m.amountInput, "."):
				m.amountInput += string(r)
			}
		}
	}
	return m
}

func (m Model) updateChoosingPayer(msg tea.KeyMsg) Model {
	users := m.ledger.Participants()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
	case key.Matches(msg, m.keys.Up):
		m.payerCursor = clamp(m.payerCursor-1, len(users))
	case key.Matches(msg, m.keys.Down):
		m.payerCursor = clamp(m.payerCursor+1, len(users))
	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeNormal
		if len(users) == 0 {
			return m
		}
		payer := users[clamp(m.payerCursor, len(users))].Name
		if _, err := m.ledger.RecordEqualPayment(payer, m.pendingAmount); err != nil {
			m.setError(err)
			return m
		}
		m.setStatus(fmt.Sprintf("%.2f for user %s added.", m.pendingAmount, payer))
		m.txCursor = len(m.ledger.Transactions()) - 1
		m.refreshPlan()
	}
	return m
}

func (m Model) updateConfirmSettleUp(msg tea.KeyMsg) Model {
	m.mode = ModeNormal
	if msg.String() != "y" {
		m.setStatus("Settle up cancelled.")
		return m
	}
	m.ledger.SettleUp()
	m.txCursor = 0
	m.refreshPlan()
	m.setStatus("All users have been settled up!")
	return m
}

func (m *Model) deleteSelected() {
	if m.focus == paneUsers {
		users := m.ledger.Participants()
		if len(users) == 0 {
			return
		}
		name := users[clamp(m.userCursor, len(users))].Name
		if err := m.ledger.RemoveParticipant(name); err != nil {
			m.setError(err)
			return
		}
		m.userCursor = clamp(m.userCursor, len(users)-1)
		m.setStatus(fmt.Sprintf("User %s removed.", name))
	} else {
		txs := m.ledger.Transactions()
		if len(txs) == 0 {
			return
		}
		idx := clamp(m.txCursor, len(txs))
		if _, err := m.ledger.RemoveTransaction(idx); err != nil {
			m.setError(err)
			return
		}
		m.txCursor = clamp(m.txCursor, len(txs)-1)
		m.setStatus(fmt.Sprintf("Transaction #%d removed.", idx+1))
	}
	m.refreshPlan()
}

func (m *Model) refreshPlan() {
	m.plan, m.planErr = m.ledger.ComputeSettlement()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusError = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusError = true
}

// clamp keeps i within [0, n).
func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
