package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finly/internal/banks"
	"finly/internal/health"
	"finly/internal/notify"
)

type balanceCmd struct{}

func (*balanceCmd) Name() string           { return "balance" }
func (*balanceCmd) Synopsis() string       { return "show the overall, monthly and per-bank balance" }
func (*balanceCmd) Usage() string          { return "finlyctl balance\n" }
func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	bal := snap.Balance()
	fmt.Printf("Balance   %s\nIncome    %s\nExpense   %s\n\n", bal.Balance, bal.TotalIncome, bal.TotalExpense)

	now := s.ledger.Now()
	month := snap.MonthlyData(now.Year(), now.Month())
	fmt.Printf("%s %d: income %s, expense %s, difference %s\n\n",
		now.Month(), now.Year(), month.Income, month.Expense, month.Difference)

	byBank := snap.BalanceByBank()
	ids := make([]string, 0, len(byBank))
	for id := range byBank {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BANK\tINCOME\tEXPENSE\tBALANCE")
	for _, id := range ids {
		name := id
		if b, ok := banks.ByID(id); ok {
			name = b.ShortName
		}
		bb := byBank[id]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, bb.Income, bb.Expense, bb.Balance)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}

type healthCmd struct{}

func (*healthCmd) Name() string           { return "health" }
func (*healthCmd) Synopsis() string       { return "compute the financial health score" }
func (*healthCmd) Usage() string          { return "finlyctl health\n" }
func (*healthCmd) SetFlags(*flag.FlagSet) {}

func (*healthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	res := health.Compute(snap)
	if !res.Available {
		fmt.Println(res.Message)
		return subcommands.ExitSuccess
	}
	fmt.Printf("Score %d/100 (%s)\n", res.Score, res.Label)
	if res.Warning != "" {
		fmt.Println("Warning:", res.Warning)
	}
	for _, tip := range res.Suggestions {
		fmt.Println(" -", tip)
	}
	return subcommands.ExitSuccess
}

type notificationsCmd struct {
	dismiss string
}

func (*notificationsCmd) Name() string     { return "notifications" }
func (*notificationsCmd) Synopsis() string { return "list or dismiss notifications" }
func (*notificationsCmd) Usage() string {
	return "finlyctl notifications [-dismiss <id>]\n"
}

func (c *notificationsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dismiss, "dismiss", "", "hide the notification with this id")
}

func (c *notificationsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	svc := notify.NewService(s.ledger)
	if c.dismiss != "" {
		if err := svc.Dismiss(ctx, c.dismiss); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	list, err := svc.List(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tMESSAGE\tID")
	for _, n := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.Priority, n.Message, n.ID)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}
