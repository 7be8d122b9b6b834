package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/dangidongi/internal/ledger"
	"github.com/mmynk/dangidongi/internal/models"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage participants",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Add one or more participants",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := checkNewNames(a.svc.ListParticipants(), args); err != nil {
					return err
				}
				for _, name := range args {
					if err := a.svc.AddParticipant(name); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "User %s added.\n", strings.TrimSpace(name))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Remove a participant",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.svc.RemoveParticipant(args[0]); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s removed.\n", strings.TrimSpace(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List participants with their balances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printUsers(cmd.OutOrStdout(), a.svc.Participants(), a.svc.Epsilon())
				return nil
			},
		},
	)
	return cmd
}

// checkNewNames rejects the whole batch if any name is blank, already
// registered, or given twice, so user add never saves half a batch.
func checkNewNames(existing, names []string) error {
	seen := make(map[string]bool, len(existing)+len(names))
	for _, n := range existing {
		seen[n] = true
	}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return ledger.ErrInvalidName
		}
		if seen[name] {
			return fmt.Errorf("%s: %w", name, ledger.ErrDuplicateParticipant)
		}
		seen[name] = true
	}
	return nil
}

func (a *app) payCmd() *cobra.Command {
	var weights map[string]int
	cmd := &cobra.Command{
		Use:   "pay <payer> <amount>",
		Short: "Record a payment split between every participant",
		Long: `Record a payment. Without --weights the amount is split equally.
With --weights every participant must be listed exactly once, e.g.

  dangidongi pay Alice 60 --weights Alice=1,Bob=3,Charlie=2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var tx models.Transaction
			if len(weights) == 0 {
				tx, err = a.svc.RecordEqualPayment(args[0], amount)
			} else {
				var ws []ledger.Weight
				ws, err = orderWeights(a.svc.ListParticipants(), weights)
				if err != nil {
					return err
				}
				tx, err = a.svc.RecordWeightedPayment(args[0], ledger.Draft{Amount: amount, Weights: ws})
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f for user %s added.\n", tx.Amount, tx.Payer)
			return nil
		},
	}
	cmd.Flags().StringToIntVar(&weights, "weights", nil, "per-participant weights, e.g. Alice=2,Bob=1")
	return cmd
}

// orderWeights turns the --weights map into a draft ordered like the ledger's
// participants. Unknown names go last, sorted, so the ledger can reject them.
func orderWeights(participants []string, weights map[string]int) ([]ledger.Weight, error) {
	out := make([]ledger.Weight, 0, len(weights))
	seen := make(map[string]bool, len(weights))
	add := func(name string, w int) error {
		if w < 0 || w > 255 {
			return fmt.Errorf("weight for %s must be between 1 and 255, got %d", name, w)
		}
		out = append(out, ledger.Weight{Name: name, Weight: uint8(w)})
		seen[name] = true
		return nil
	}

	for _, p := range participants {
		if w, ok := weights[p]; ok {
			if err := add(p, w); err != nil {
				return nil, err
			}
		}
	}
	var rest []string
	for name := range weights {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if err := add(name, weights[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *app) unpayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpay <payer> <amount>",
		Short: "Reverse part of what a participant paid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			clamped, err := a.svc.ReversePayment(args[0], amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%.2f reversed for user %s.\n", amount, strings.TrimSpace(args[0]))
			if clamped {
				fmt.Fprintln(out, "Amount paid would have gone negative and was reset to 0.")
			}
			return nil
		},
	}
}

func (a *app) txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect and edit the transaction history",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List transactions in the order they were recorded",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printTransactions(cmd.OutOrStdout(), a.svc.Transactions())
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <number>",
			Short: "Remove a transaction by its number in tx list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid transaction number %q", args[0])
				}
				tx, err := a.svc.RemoveTransaction(n - 1)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transaction #%d (%.2f by %s) removed.\n", n, tx.Amount, tx.Payer)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Show the transfers that square everyone up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.svc.ComputeSettlement()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printUsers(out, a.svc.Participants(), a.svc.Epsilon())
			fmt.Fprintln(out)
			if len(plan) == 0 {
				fmt.Fprintln(out, "Everyone is settled.")
				return nil
			}
			for _, t := range plan {
				fmt.Fprintln(out, t.String())
			}
			return nil
		},
	}
}

func (a *app) settleUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle-up",
		Short: "Clear all balances and the transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.svc.SettleUp()
			fmt.Fprintln(cmd.OutOrStdout(), "All users have been settled up!")
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the ledger as JSON to path or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.svc.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := a.svc.Export(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the ledger with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()
			if err := a.svc.Import(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d user(s) and %d transaction(s).\n",
				len(a.svc.ListParticipants()), len(a.svc.Transactions()))
			return nil
		},
	}
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, errors.Join(ledger.ErrInvalidAmount, err))
	}
	return amount, nil
}

func printUsers(w io.Writer, users []models.User, eps float64) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPAID\tBALANCE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", u.Name, u.AmountPaid, formatBalance(u, eps))
	}
	tw.Flush()
}

// formatBalance prints balances within eps of zero as settled.
func formatBalance(u models.User, eps float64) string {
	if u.Settled(eps) {
		return "settled"
	}
	return fmt.Sprintf("%+.2f", u.NetBalance)
}

func printTransactions(w io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAMOUNT\tPAYER\tSHARES")
	for i, tx := range txs {
		shares := make([]string, 0, len(tx.Shares))
		for _, s := range tx.Shares {
			shares = append(shares, fmt.Sprintf("%s x%d = %.2f", s.Name, s.Weight, s.FairShare))
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", i+1, tx.Amount, tx.Payer, strings.Join(shares, ", "))
	}
	tw.Flush()
}
