package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coachline/internal/app"
	"coachline/internal/config"
	"coachline/internal/domain"
	"coachline/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Coaching platform CLI",
	Long: `coach works with a coaching platform from the terminal.
- Workspace: the .coachline directory holding the local session database; coachline.yml sits next to it.
- Selection: pick an organization, then a coaching relationship, then a coaching session. Picking a parent clears everything below it.
- Session items: notes, agreements, actions and the overarching goal belong to the selected coaching session.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("COACHLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory")
	flags.Bool("json", false, "output JSON")
	flags.String("api-url", "", "backend base URL (overrides api.base_url)")
	flags.String("log-level", "", "log level (overrides log.level)")
	flags.Duration("debounce", 0, "editor save delay (overrides editor.debounce)")
	flags.String("metrics-textfile", "", "write request metrics here on exit")
	_ = viper.BindPFlag("workspace", flags.Lookup("workspace"))
	_ = viper.BindPFlag("json", flags.Lookup("json"))
	_ = viper.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("editor.debounce", flags.Lookup("debounce"))
	_ = viper.BindPFlag("metrics.textfile", flags.Lookup("metrics-textfile"))
	for _, key := range []string{"api.version", "api.timeout", "log.pretty"} {
		_ = viper.BindEnv(key)
	}
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(orgCmd())
	rootCmd.AddCommand(relationshipCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(agreementCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

// loadConfig reads coachline.yml and applies flag and environment overrides.
// Unset flags are only seen by viper when they were actually given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	v := viper.New()
	for _, key := range []string{"api.base_url", "api.version", "api.timeout", "editor.debounce", "log.level", "log.pretty", "metrics.textfile"} {
		if !viper.IsSet(key) {
			continue
		}
		if raw := viper.Get(key); !isZero(raw) {
			v.Set(key, raw)
		}
	}
	if err := cfg.Override(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return fmt.Sprint(x) == "0s"
	}
}

func withEnv(ctx context.Context, fn func(context.Context, *app.Env) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)
	env, err := app.Open(ctx, viper.GetString("workspace"), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, env.Close())
	}()
	return fn(env.Context(ctx), env)
}

// withSession runs fn for a signed-in user with a selected coaching session.
func withSession(ctx context.Context, fn func(context.Context, *app.Env, domain.UserSession, domain.ID) error) error {
	return withEnv(ctx, func(ctx context.Context, env *app.Env) error {
		user, err := env.RequireLogin()
		if err != nil {
			return err
		}
		sessionID := env.Root.App.Selection().SessionID
		if sessionID == "" {
			return fmt.Errorf("no coaching session selected; run coach session select <id>")
		}
		return fn(ctx, env, user, sessionID)
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argOrFlag(args []string, flag string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}
	return strings.TrimSpace(flag)
}
