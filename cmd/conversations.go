package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aigw/session"
	"aigw/storage"
)

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage stored conversations",
	}

	cmd.AddCommand(newConversationsListCmd())
	cmd.AddCommand(newConversationsDeleteCmd())
	cmd.AddCommand(newConversationsExportCmd())
	cmd.AddCommand(newConversationsSearchCmd())

	return cmd
}

func withStore(fn func(store storage.Store) error) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations, most recently touched first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store storage.Store) error {
				summaries, err := store.List()
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					fmt.Println("No stored conversations.")
					return nil
				}
				for _, sum := range summaries {
					fmt.Printf("%s  %s\n", sum.ID, userStyle.Render(sum.Name))
					fmt.Println(faintStyle.Render(fmt.Sprintf(
						"    %s | %d messages | %d tokens | updated %s",
						sum.Model, sum.MessageCount, sum.TotalTokens,
						sum.UpdatedAt.Format("2006-01-02 15:04"))))
				}
				return nil
			})
		},
	}
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store storage.Store) error {
				existed, err := store.Delete(args[0])
				if err != nil {
					return err
				}
				if !existed {
					fmt.Printf("No conversation with id %s.\n", args[0])
					return nil
				}
				fmt.Printf("Deleted %s.\n", args[0])
				return nil
			})
		},
	}
}

func newConversationsExportCmd() *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation as a markdown transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store storage.Store) error {
				manager := session.NewManager(store, 0)
				doc, err := manager.ExportMarkdown(args[0])
				if err != nil {
					var corrupt *storage.CorruptError
					if errors.As(err, &corrupt) {
						return fmt.Errorf("record is corrupt and was left in place for inspection: %s", corrupt.Path)
					}
					if errors.Is(err, storage.ErrNotFound) {
						return fmt.Errorf("no conversation with id %s", args[0])
					}
					return err
				}

				if outputFlag == "" {
					fmt.Print(doc)
					return nil
				}
				// 0600 - transcripts contain conversation content
				if err := os.WriteFile(outputFlag, []byte(doc), 0600); err != nil {
					return fmt.Errorf("failed to write transcript: %w", err)
				}
				fmt.Printf("Exported to %s.\n", outputFlag)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write the transcript to a file instead of stdout")

	return cmd
}

func newConversationsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search message content across all stored conversations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store storage.Store) error {
				matches, err := storage.NewSearchIndex(store).Search(args[0])
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					fmt.Println("No matches.")
					return nil
				}
				for _, m := range matches {
					fmt.Printf("%s  %s\n", m.ConversationID, userStyle.Render(m.ConversationName))
					fmt.Println(faintStyle.Render(fmt.Sprintf("    [%s] %s", m.Role, m.Preview)))
				}
				return nil
			})
		},
	}
}
