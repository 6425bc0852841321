package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finly/internal/banks"
)

type banksCmd struct {
	set string
}

func (*banksCmd) Name() string     { return "banks" }
func (*banksCmd) Synopsis() string { return "list banks or choose the active ones" }
func (*banksCmd) Usage() string {
	return `finlyctl banks [-set <id,id,...>]

  Without -set, prints the catalog and marks the active banks.
`
}

func (c *banksCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "comma separated bank ids to make active")
}

func (c *banksCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	if c.set != "" {
		var ids []string
		for _, id := range strings.Split(c.set, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if err := s.ledger.SetActiveBanks(ctx, ids); err != nil {
			fail(err)
			return subcommands.ExitFailure
		}
	}

	active, err := s.ledger.ActiveBanks(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	isActive := make(map[string]bool, len(active))
	for _, id := range active {
		isActive[id] = true
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME")
	for _, b := range banks.All() {
		mark := ""
		if isActive[b.ID] {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", mark, b.ID, b.Name)
	}
	_ = w.Flush()
	return subcommands.ExitSuccess
}
