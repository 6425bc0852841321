package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finly/internal/core"
)

type debtsCmd struct{}

func (*debtsCmd) Name() string           { return "debts" }
func (*debtsCmd) Synopsis() string       { return "list debts and loans and the debt-free progress" }
func (*debtsCmd) Usage() string          { return "finlyctl debts\n" }
func (*debtsCmd) SetFlags(*flag.FlagSet) {}

func (*debtsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	overdue := make(map[string]bool)
	for _, d := range snap.OverdueDebts() {
		overdue[d.ID] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PARTY\tTYPE\tAMOUNT\tPAID\tREMAINING\tDUE\tSTATUS\tID")
	for _, d := range snap.Debts {
		status := "active"
		switch {
		case !d.IsActive:
			status = "settled"
		case overdue[d.ID]:
			status = "overdue"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.PartyName, d.Type, d.Amount, d.PaidAmount, d.Remaining(), d.DueDate, status, d.ID)
	}
	_ = w.Flush()

	p := snap.DebtFreeProgress()
	fmt.Printf("\nDebt-free progress %d%%: paid %s of %s\n", p.ProgressPercent, p.PaidAmount, p.TotalDebt)
	if p.NearestDueDate != nil {
		fmt.Printf("Next due %s (%s)\n", p.NearestDueDate.Date, p.NearestDueDate.PartyName)
	}
	return subcommands.ExitSuccess
}

type debtAddCmd struct {
	party    string
	debtType string
	amount   string
	loanDate string
	dueDate  string
	notes    string
	bank     string
}

func (*debtAddCmd) Name() string     { return "debt-add" }
func (*debtAddCmd) Synopsis() string { return "record money owed to or by someone" }
func (*debtAddCmd) Usage() string {
	return `finlyctl debt-add -party <name> -type <debt|loan> -a <amount> -due <date> [-loan <date>] [-n <notes>] [-bank <id>]

  A debt is money you owe; a loan is money owed to you.
`
}

func (c *debtAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.party, "party", "", "counterparty name")
	f.StringVar(&c.debtType, "type", string(core.Debt), "debt or loan")
	f.StringVar(&c.amount, "a", "", "amount")
	f.StringVar(&c.loanDate, "loan", "", "date the money changed hands (defaults to today)")
	f.StringVar(&c.dueDate, "due", "", "due date YYYY-MM-DD")
	f.StringVar(&c.notes, "n", "", "notes")
	f.StringVar(&c.bank, "bank", "", "bank id")
}

func (c *debtAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseAmount(c.amount)
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	due, err := core.ParseDate(c.dueDate)
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

	loan, err := parseDate(c.loanDate, s.ledger.Today())
	if err != nil {
		fail(err)
		return subcommands.ExitUsageError
	}
	d, err := s.ledger.SaveDebt(ctx, core.DebtInput{
		PartyName: c.party,
		Type:      core.DebtType(c.debtType),
		Amount:    amount,
		LoanDate:  loan,
		DueDate:   due,
		Notes:     c.notes,
		BankID:    c.bank,
	})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s with %s for %s, due %s (%s)\n", d.Type, d.PartyName, d.Amount, d.DueDate, d.ID)
	return subcommands.ExitSuccess
}

type debtPayCmd struct {
	amount string
	bank   string
}

func (*debtPayCmd) Name() string     { return "debt-pay" }
func (*debtPayCmd) Synopsis() string { return "record a payment against a debt or loan" }
func (*debtPayCmd) Usage() string    { return "finlyctl debt-pay -a <amount> [-bank <id>] <debt-id>\n" }

func (c *debtPayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "amount paid")
	f.StringVar(&c.bank, "bank", "", "bank the payment went through")
}

func (c *debtPayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail(fmt.Errorf("expected exactly one debt id"))
		return subcommands.ExitUsageError
	}
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

	d, _, err := s.ledger.PayDebt(ctx, f.Arg(0), amount, c.bank)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	if d.IsActive {
		fmt.Printf("Paid %s to %s, %s remaining\n", amount, d.PartyName, d.Remaining())
	} else {
		fmt.Printf("Paid %s to %s, settled\n", amount, d.PartyName)
	}
	return subcommands.ExitSuccess
}
