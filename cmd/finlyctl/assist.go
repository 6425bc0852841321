package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"finly/internal/chat"
	"finly/internal/cli"
)

const assistPrompt = "finly> "

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the FinlyChat financial assistant" }
func (*assistCmd) Usage() string {
	return `finlyctl assist [question...]

  Starts an interactive session. Any arguments are sent as the first
  question. Type 'bye' or press Ctrl+D to leave. Needs GEMINI_API_KEY.
`
}
func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (*assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	defer s.close()

	advisor := cli.NewAdvisor(ctx, s.logger, s.cfg)
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := runAssist(ctx, advisor, markdownRenderer(), os.Stdout, os.Stdin, prompts...); err != nil {
		fail(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// markdownRenderer renders replies for the terminal. Replies print as-is
// when the renderer cannot be built or fails on a reply.
func markdownRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return nil
	}
	return func(text string) string {
		out, err := r.Render(text)
		if err != nil {
			return text
		}
		return strings.TrimRight(out, "\n")
	}
}

// runAssist is the REPL. The conversation history grows with every turn
// and is sent along with each question. A nil render prints replies raw.
func runAssist(ctx context.Context, advisor *chat.Advisor, render func(string) string, w io.Writer, r io.Reader, prompts ...string) error {
	in := bufio.NewReader(r)
	fmt.Fprintln(w, chat.WelcomeMessage)

	var history []chat.Message
	for {
		fmt.Fprint(w, assistPrompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			fmt.Fprintln(w, input)
		} else {
			line, err := in.ReadString('\n')
			if err == io.EOF && line == "" {
				fmt.Fprintln(w)
				return nil
			}
			if err != nil && err != io.EOF {
				return err
			}
			input = line
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" || input == "exit" {
			return nil
		}

		reply, err := advisor.Ask(ctx, history, input)
		if err != nil {
			return err
		}
		if render != nil {
			fmt.Fprintln(w, render(reply.Text))
		} else {
			fmt.Fprintln(w, reply.Text)
		}
		history = append(history,
			chat.Message{Role: chat.RoleUser, Content: input},
			chat.Message{Role: chat.RoleAssistant, Content: reply.Text})
	}
}
