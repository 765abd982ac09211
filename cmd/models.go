package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aigw/token"
)

func newListModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List models available from the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}

			prov, err := buildProvider(cfg, 0)
			if err != nil {
				return err
			}

			models, err := prov.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Models (%s):\n", cfg.Provider)
			for _, m := range models {
				window := token.WindowFor(m.Name)
				fmt.Printf("  - %s %s\n", m.Name,
					faintStyle.Render(fmt.Sprintf("(context: %dk tokens)", window/1000)))
			}
			return nil
		},
	}
}
