package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clangcg/clangcg/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .clangcg/config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.SaveDefault(".")
		if err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
		fmt.Println("wrote", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
