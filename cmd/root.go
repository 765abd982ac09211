// Package cmd implements the aigw command-line interface. It owns
// argument parsing and display formatting; conversation memory lives
// in the session, budget, token and storage packages.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"aigw/config"
	"aigw/provider"
	"aigw/storage"
)

var (
	modelFlag       string
	systemFlag      string
	temperatureFlag float64
	maxTokensFlag   int

	appVersion string
)

// Output styles. Colors only, no layout: rendering stays plain text.
var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Execute is the entry point called from main.go.
func Execute(version string) {
	appVersion = version

	rootCmd := &cobra.Command{
		Use:   "aigw",
		Short: "Chat with AI models through an AI gateway",
		Long: "aigw is a command-line chat client for OpenAI-compatible AI gateways,\n" +
			"Anthropic, and local Ollama, with durable token-budgeted conversation memory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "override the configured model")
	rootCmd.PersistentFlags().Float64VarP(&temperatureFlag, "temperature", "t", 0, "sampling temperature (default from config)")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newInteractiveCmd())
	rootCmd.AddCommand(newListModelsCmd())
	rootCmd.AddCommand(newConversationsCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.InitDebugLog(cfg.DataDir())

	if modelFlag != "" {
		cfg.DefaultModel = modelFlag
	}
	if temperatureFlag > 0 {
		cfg.Temperature = temperatureFlag
	}
	return cfg, nil
}

// openStore creates the configured conversation store backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "", "files":
		return storage.NewFileStore(cfg.DataDir())
	case "sqlite":
		return storage.NewSQLiteStore(filepath.Join(cfg.DataDir(), "conversations.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want \"files\" or \"sqlite\")", cfg.StorageBackend)
	}
}

// buildProvider creates the configured model API client.
func buildProvider(cfg *config.Config, maxTokens int) (provider.Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return provider.NewProvider(provider.Config{
			Type:        provider.ProviderTypeOpenAI,
			BaseURL:     cfg.GatewayBaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.DefaultModel,
			Temperature: cfg.Temperature,
			MaxTokens:   maxTokens,
		})
	case "anthropic":
		return provider.NewProvider(provider.Config{
			Type:        provider.ProviderTypeAnthropic,
			APIKey:      cfg.APIKey,
			Model:       cfg.DefaultModel,
			Temperature: cfg.Temperature,
			MaxTokens:   maxTokens,
		})
	case "ollama":
		model := cfg.DefaultModel
		if modelFlag == "" && cfg.OllamaModel != "" {
			model = cfg.OllamaModel
		}
		return provider.NewProvider(provider.Config{
			Type:        provider.ProviderTypeOllama,
			BaseURL:     cfg.OllamaHost,
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (want \"openai\", \"anthropic\" or \"ollama\")", cfg.Provider)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aigw %s\n", appVersion)
		},
	}
}
