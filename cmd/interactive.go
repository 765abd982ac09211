package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"aigw/provider"
	"aigw/session"
	"aigw/storage"
)

func newInteractiveCmd() *cobra.Command {
	var (
		noSaveFlag bool
		budgetFlag int
		resumeFlag string
	)

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}

			prov, err := buildProvider(cfg, maxTokensFlag)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			manager := session.NewManager(store, cfg.ReplyReserve)

			systemPrompt := systemFlag
			if systemPrompt == "" {
				systemPrompt = cfg.DefaultSystemPrompt
			}

			var sess *session.Session
			if resumeFlag != "" {
				sess, err = manager.ResumeSession(resumeFlag, !noSaveFlag)
			} else {
				sess, err = manager.StartSession("", prov.GetModel(), systemPrompt, !noSaveFlag)
			}
			if err != nil {
				return err
			}
			defer sess.Close()

			return runREPL(manager, sess, prov, budgetFlag, !noSaveFlag)
		},
	}

	cmd.Flags().StringVarP(&systemFlag, "system", "s", "", "system prompt (overrides configured default)")
	cmd.Flags().IntVar(&maxTokensFlag, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "keep the conversation in memory only")
	cmd.Flags().IntVar(&budgetFlag, "budget", 0, "explicit token budget for outbound history (default: model window minus reply reserve)")
	cmd.Flags().StringVar(&resumeFlag, "resume", "", "resume a stored conversation by id")

	return cmd
}

func runREPL(manager *session.Manager, sess *session.Session, prov provider.Provider, explicitBudget int, autoSave bool) error {
	fmt.Printf("aigw interactive chat (Model: %s)\n", prov.GetModel())
	fmt.Println("Type 'exit' or 'quit' to end the session, 'clear' to start a fresh conversation.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(userStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "clear":
			conv := sess.Conversation()
			fresh, err := manager.StartSession("", conv.Model, conv.SystemPrompt(), autoSave)
			if err != nil {
				return err
			}
			sess.Close()
			sess = fresh
			fmt.Println("Chat history cleared.")
			fmt.Println()
			continue
		}

		if sess.Conversation().Name == "" {
			if err := sess.SetName(storage.GenerateName(input)); err != nil {
				return err
			}
		}
		if _, err := sess.RecordTurn(storage.RoleUser, input); err != nil {
			return err
		}

		selection := sess.Outbound(explicitBudget)
		if selection.BudgetExceeded {
			fmt.Fprintln(os.Stderr, faintStyle.Render(fmt.Sprintf(
				"warning: anchors alone need %d tokens, over the budget; sending them anyway",
				selection.TotalTokens)))
		}

		// The assistant turn is committed only after the stream has
		// fully completed; an interrupted stream records nothing.
		turnCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		var full strings.Builder
		fmt.Print(assistantStyle.Render("Assistant: "))
		err := prov.Chat(turnCtx, selection.Messages, func(chunk string) error {
			full.WriteString(chunk)
			fmt.Print(chunk)
			return nil
		})
		stop()
		fmt.Println()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println(faintStyle.Render("(interrupted, turn not recorded)"))
				fmt.Println()
				continue
			}
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
			fmt.Println()
			continue
		}

		if _, err := sess.RecordTurn(storage.RoleAssistant, full.String()); err != nil {
			return err
		}

		conv := sess.Conversation()
		fmt.Println(faintStyle.Render(fmt.Sprintf("(%d messages, %d tokens total)",
			len(conv.Messages), conv.TotalTokens)))
		fmt.Println()
	}
}
