package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finly/internal/core"
	"finly/internal/ledger"
)

type addCmd struct {
	txType   string
	category string
	amount   string
	date     string
	notes    string
	bank     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or expense" }
func (*addCmd) Usage() string {
	return `finlyctl add -type <income|expense> -c <category> -a <amount> [-d <date>] [-n <notes>] [-bank <id>]

  Records one transaction. The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.txType, "type", string(core.Expense), "income or expense")
	f.StringVar(&c.category, "c", "", "category name")
	f.StringVar(&c.amount, "a", "", "amount in rupiah, e.g. 25.000")
	f.StringVar(&c.date, "d", "", "date YYYY-MM-DD (defaults to today)")
	f.StringVar(&c.notes, "n", "", "notes")
	f.StringVar(&c.bank, "bank", "", "bank id, see 'finlyctl banks'")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmount(c.amount)
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	date, err := parseDate(c.date, s.ledger.Today())
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	tx, err := s.ledger.SaveTransaction(ctx, core.Transaction{
		Date:     date,
		Type:     core.TransactionType(c.txType),
		Category: c.category,
		Amount:   amount,
		Notes:    c.notes,
		BankID:   c.bank,
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved %s %s %s on %s (%s)\n", tx.Type, tx.Category, tx.Amount, tx.Date, tx.ID)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	month    string
	txType   string
	category string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list transactions, newest first" }
func (*historyCmd) Usage() string {
	return `finlyctl history [-m <YYYY-MM>] [-type <type>] [-c <category>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "only this month, YYYY-MM")
	f.StringVar(&c.txType, "type", "", "only this transaction type")
	f.StringVar(&c.category, "c", "", "only this category")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	txs, err := s.ledger.History(ctx, ledger.HistoryFilter{
		Month:    c.month,
		Type:     core.TransactionType(c.txType),
		Category: c.category,
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tNOTES\tID")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Type, tx.Category, tx.Amount, tx.Notes, tx.ID)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "delete a transaction by id" }
func (*deleteCmd) Usage() string          { return "finlyctl delete <id>\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail(fmt.Errorf("expected exactly one transaction id"))
		return subcommands.ExitUsageError
	}
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	if err := s.ledger.DeleteTransaction(ctx, f.Arg(0)); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Println("Deleted", f.Arg(0))
	return subcommands.ExitSuccess
}
