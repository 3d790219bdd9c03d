package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coachline/internal/config"
	"coachline/internal/db"
)

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create coachline.yml",
		Long:  "coachline.yml holds the backend URL and API version, the editor save delay, logging and the optional metrics textfile. COACHLINE_* variables and flags override it.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{
					"api":     map[string]any{"base_url": cfg.API.BaseURL, "version": cfg.API.Version, "timeout": cfg.API.Timeout.String()},
					"editor":  map[string]any{"debounce": cfg.Editor.Debounce.String()},
					"log":     map[string]any{"level": cfg.Log.Level, "pretty": cfg.Log.Pretty},
					"metrics": map[string]any{"textfile": cfg.Metrics.Textfile},
				})
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write coachline.yml with defaults and any overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			cfg := config.Default()
			if err := cfg.Override(viper.GetViper()); err != nil {
				return err
			}
			path, err := config.Write(workspace, cfg, force)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")
	return cmd
}
