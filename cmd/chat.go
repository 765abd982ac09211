package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aigw/provider"
	"aigw/storage"
)

// chatJSON is the machine-readable output of a one-shot chat.
type chatJSON struct {
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	Stream       bool       `json:"stream,omitempty"`
	Usage        *usageJSON `json:"usage,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

type usageJSON struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

func newChatCmd() *cobra.Command {
	var (
		streamFlag bool
		jsonFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send a single chat message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}

			prov, err := buildProvider(cfg, maxTokensFlag)
			if err != nil {
				return err
			}

			now := time.Now()
			var messages []storage.Message
			if systemFlag != "" {
				messages = append(messages, storage.Message{
					Role: storage.RoleSystem, Content: systemFlag, CreatedAt: now,
				})
			}
			messages = append(messages, storage.Message{
				Role: storage.RoleUser, Content: args[0], CreatedAt: now,
			})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if streamFlag {
				return runStreamedChat(ctx, prov, messages, jsonFlag)
			}

			completion, err := prov.Complete(ctx, messages)
			if err != nil {
				return err
			}

			if jsonFlag {
				out, err := json.MarshalIndent(chatJSON{
					Model:        completion.Model,
					Content:      completion.Content,
					FinishReason: completion.FinishReason,
					Usage: &usageJSON{
						PromptTokens:     completion.Usage.PromptTokens,
						CompletionTokens: completion.Usage.CompletionTokens,
						TotalTokens:      completion.Usage.TotalTokens,
					},
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("Response: %s\n", completion.Content)
			fmt.Println(faintStyle.Render(fmt.Sprintf("\nModel: %s", completion.Model)))
			fmt.Println(faintStyle.Render(fmt.Sprintf("Tokens used: %d (prompt: %d, completion: %d)",
				completion.Usage.TotalTokens, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&systemFlag, "system", "s", "", "system prompt")
	cmd.Flags().IntVar(&maxTokensFlag, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().BoolVar(&streamFlag, "stream", false, "stream the response")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output response as JSON")

	return cmd
}

func runStreamedChat(ctx context.Context, prov provider.Provider, messages []storage.Message, jsonOut bool) error {
	fmt.Print("Response: ")
	var full strings.Builder
	err := prov.Chat(ctx, messages, func(chunk string) error {
		full.WriteString(chunk)
		fmt.Print(chunk)
		return nil
	})
	fmt.Println()
	if err != nil {
		return err
	}

	if jsonOut {
		out, err := json.MarshalIndent(chatJSON{
			Model:   prov.GetModel(),
			Content: full.String(),
			Stream:  true,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println("\nJSON Output:")
		fmt.Println(string(out))
	}
	return nil
}
