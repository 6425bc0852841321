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

type goalsCmd struct {
	all bool
}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "list savings goals with progress" }
func (*goalsCmd) Usage() string    { return "finlyctl goals [-all]\n" }

func (c *goalsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "include inactive goals")
}

func (c *goalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	views, err := s.ledger.GoalViews(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTARGET\tCOLLECTED\tPROGRESS\tREMAINING\tID")
	for _, v := range views {
		if !v.IsActive && !c.all {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\n", v.Name, v.TargetAmount,
			v.Progress.CollectedAmount, v.Progress.ProgressPercent, v.Progress.RemainingAmount, v.ID)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}

type goalCreateCmd struct {
	name   string
	target string
	bank   string
}

func (*goalCreateCmd) Name() string     { return "goal-create" }
func (*goalCreateCmd) Synopsis() string { return "create a savings goal and its category" }
func (*goalCreateCmd) Usage() string {
	return "finlyctl goal-create -name <name> -target <amount> [-bank <id>]\n"
}

func (c *goalCreateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "goal name")
	f.StringVar(&c.target, "target", "", "target amount")
	f.StringVar(&c.bank, "bank", "", "bank holding the savings")
}

func (c *goalCreateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := parseAmount(c.target)
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

	goal, err := s.ledger.CreateGoal(ctx, core.GoalInput{Name: c.name, TargetAmount: target, BankID: c.bank})
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created goal %q targeting %s (%s)\n", goal.Name, goal.TargetAmount, goal.ID)
	return subcommands.ExitSuccess
}

// moveCmd is both "deposit" and "withdraw".
type moveCmd struct {
	deposit bool
	amount  string
	notes   string
}

func (c *moveCmd) Name() string {
	if c.deposit {
		return "deposit"
	}
	return "withdraw"
}

func (c *moveCmd) Synopsis() string {
	if c.deposit {
		return "put money into a savings goal"
	}
	return "take money out of a savings goal"
}

func (c *moveCmd) Usage() string {
	return fmt.Sprintf("finlyctl %s -a <amount> [-n <notes>] <goal-id>\n", c.Name())
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "amount")
	f.StringVar(&c.notes, "n", "", "notes")
}

func (c *moveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail(fmt.Errorf("expected exactly one goal id"))
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

	move := s.ledger.Withdraw
	if c.deposit {
		move = s.ledger.Deposit
	}
	tx, err := move(ctx, f.Arg(0), amount, c.notes)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	progress, err := s.ledger.GoalProgress(ctx, f.Arg(0))
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s under %s. Progress %d%%, %s to go\n",
		tx.Notes, tx.Amount, tx.Category, progress.ProgressPercent, progress.RemainingAmount)
	return subcommands.ExitSuccess
}
