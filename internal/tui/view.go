package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/dangidongi/internal/ledger"
)

const welcome = "Welcome to Dangi-Dongi! Add users with 'u', then record transactions with 't'."

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(" Dangi-Dongi "))
	b.WriteString("\n")
	b.WriteString(m.styles.Welcome.Render(welcome))
	b.WriteString("\n\n")

	left := m.renderUsers()
	right := m.renderTransactions()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(m.renderPlan())
	b.WriteString("\n")

	if m.status != "" {
		if m.statusError {
			b.WriteString(m.styles.Error.Render(m.status))
		} else {
			b.WriteString(m.styles.Status.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return m.styles.Frame.Render(b.String())
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.mode == ModeNormal && m.focus == p {
		return m.styles.Focused
	}
	return m.styles.Pane
}

func (m Model) renderUsers() string {
	var b strings.Builder
	users := m.ledger.Participants()

	switch m.mode {
	case ModeAddingUser:
		b.WriteString(m.styles.Header.Render("New user"))
		b.WriteString("\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Hint.Render("enter to add, esc to cancel"))
		return m.styles.Focused.Render(b.String())

	case ModeChoosingPayer:
		b.WriteString(m.styles.Header.Render(fmt.Sprintf("Who paid %.2f?", m.pendingAmount)))
		b.WriteString("\n")
		for i, u := range users {
			line := "  " + u.Name
			if i == m.payerCursor {
				line = m.styles.Selected.Render("> " + u.Name)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Hint.Render("enter to confirm, esc to cancel"))
		return m.styles.Focused.Render(b.String())
	}

	b.WriteString(m.styles.Header.Render(fmt.Sprintf("Users (%d)", len(users))))
	b.WriteString("\n")
	if len(users) == 0 {
		b.WriteString(m.styles.Hint.Render("no users yet"))
	}
	for i, u := range users {
		balance := fmt.Sprintf("%+.2f", u.NetBalance)
		switch {
		case u.Settled(m.ledger.Epsilon()):
			balance = "settled"
		case u.NetBalance > 0:
			balance = m.styles.Positive.Render(balance)
		default:
			balance = m.styles.Negative.Render(balance)
		}
		line := fmt.Sprintf("%-16s paid %8.2f  %s", u.Name, u.AmountPaid, balance)
		if m.focus == paneUsers && i == m.userCursor {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return m.paneStyle(paneUsers).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderTransactions() string {
	var b strings.Builder

	if m.mode == ModeAddingAmount {
		b.WriteString(m.styles.Header.Render("New transaction"))
		b.WriteString("\n")
		b.WriteString("> amount: " + m.amountInput)
		b.WriteString("\n")
		b.WriteString(m.styles.Hint.Render("enter to choose payer, esc to cancel"))
		return m.styles.Focused.Render(b.String())
	}

	txs := m.ledger.Transactions()
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("Transactions (%d)", len(txs))))
	b.WriteString("\n")
	if len(txs) == 0 {
		b.WriteString(m.styles.Hint.Render("no transactions yet"))
	}
	for i, tx := range txs {
		names := make([]string, 0, len(tx.Shares))
		for _, s := range tx.Shares {
			names = append(names, s.Name)
		}
		line := fmt.Sprintf("#%-3d %8.2f by %s [%s]", i+1, tx.Amount, tx.Payer, strings.Join(names, ", "))
		if m.focus == paneTransactions && i == m.txCursor {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return m.paneStyle(paneTransactions).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderPlan() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Settlement"))
	b.WriteString("\n")

	switch {
	case m.mode == ModeConfirmSettleUp:
		b.WriteString(m.styles.Error.Render("Clear all transactions and balances? (y/N)"))
	case errors.Is(m.planErr, ledger.ErrInsufficientParticipants):
		b.WriteString(m.styles.Hint.Render(minParticipantsHint))
	case m.planErr != nil:
		b.WriteString(m.styles.Error.Render(m.planErr.Error()))
	case len(m.plan) == 0:
		b.WriteString(m.styles.Hint.Render("Everyone is settled."))
	default:
		for _, t := range m.plan {
			b.WriteString(t.String())
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
