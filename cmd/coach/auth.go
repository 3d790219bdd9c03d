package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"coachline/internal/app"
)

func loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the coaching platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email required")
			}
			password, err := readPassword()
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				user, err := env.Login(ctx, email, password)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(user)
				}
				fmt.Printf("Logged in as %s <%s>\n", displayName(user.DisplayName, user.FirstName, user.LastName), user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

// readPassword prompts on a terminal and reads one line otherwise.
func readPassword() (string, error) {
	if pw := os.Getenv("COACHLINE_PASSWORD"); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if err := env.Logout(ctx); err != nil {
					fmt.Fprintln(os.Stderr, "warning:", err)
				}
				fmt.Println("Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				user, err := env.RequireLogin()
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(user)
				}
				fmt.Printf("%s <%s> (%s)\n", displayName(user.DisplayName, user.FirstName, user.LastName), user.Email, user.ID)
				return nil
			})
		},
	}
}

func displayName(display, first, last string) string {
	if display != "" {
		return display
	}
	return strings.TrimSpace(first + " " + last)
}
