// Command finlyctl reads and edits the finly ledger from a terminal. It
// opens the same store the server does, so the server should not be
// running against a file backend at the same time.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"finly/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&addCmd{}, "transactions")
	commander.Register(&historyCmd{}, "transactions")
	commander.Register(&deleteCmd{}, "transactions")

	commander.Register(&balanceCmd{}, "reports")
	commander.Register(&healthCmd{}, "reports")
	commander.Register(&notificationsCmd{}, "reports")

	commander.Register(&goalsCmd{}, "savings")
	commander.Register(&goalCreateCmd{}, "savings")
	commander.Register(&moveCmd{deposit: true}, "savings")
	commander.Register(&moveCmd{}, "savings")

	commander.Register(&debtsCmd{}, "debts")
	commander.Register(&debtAddCmd{}, "debts")
	commander.Register(&debtPayCmd{}, "debts")

	commander.Register(&banksCmd{}, "settings")
	commander.Register(&assistCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
