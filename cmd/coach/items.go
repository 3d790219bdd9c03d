package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coachline/internal/api"
	"coachline/internal/app"
	"coachline/internal/debounce"
	"coachline/internal/domain"
	"coachline/internal/editor"
	"coachline/internal/events"
	"coachline/internal/panel"
	"coachline/internal/richtext"
)

func noteCmd() *cobra.Command {
	n := &cobra.Command{Use: "note", Short: "Notes of the selected coaching session"}
	n.AddCommand(noteShowCmd())
	n.AddCommand(noteEditCmd())
	return n
}

func sessionNote(ctx context.Context, env *app.Env, sessionID domain.ID) (domain.Note, error) {
	notes, err := env.Client.FetchNotesByCoachingSessionID(ctx, sessionID)
	if err != nil && !api.IsNotFound(err) {
		return domain.Note{}, err
	}
	if len(notes) == 0 {
		return domain.DefaultNote(), nil
	}
	return notes[0], nil
}

func noteShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the session note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, env *app.Env, _ domain.UserSession, sessionID domain.ID) error {
				note, err := sessionNote(ctx, env, sessionID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(note)
				}
				if note.ID == "" {
					fmt.Println("(no note yet)")
					return nil
				}
				if raw {
					fmt.Println(note.Body)
					return nil
				}
				fmt.Println(richtext.PlainText(note.Body))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored HTML")
	return cmd
}

func noteEditCmd() *cobra.Command {
	var text, file string
	var html bool
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Replace the session note (from --text, --file or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(text, file)
			if err != nil {
				return err
			}
			if html {
				body = richtext.Sanitize(body)
			} else {
				body = richtext.FromPlainText(body)
			}
			return withSession(cmd.Context(), func(ctx context.Context, env *app.Env, user domain.UserSession, sessionID domain.ID) error {
				note, err := sessionNote(ctx, env, sessionID)
				if err != nil {
					return err
				}
				field := editor.NewNoteEditor(env.Client, sessionID, user.ID, note,
					debounce.WithDelay(env.Config.Editor.Debounce),
					debounce.WithContext(ctx),
					debounce.WithLogger(env.Logger))
				defer field.Close()
				field.Edit(body)
				err = field.Flush()
				fmt.Println(field.Status().Message)
				if err == nil {
					env.Record(ctx, "note.saved", "note", field.ID(), nil)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "note text")
	cmd.Flags().StringVar(&file, "file", "", "read note text from file")
	cmd.Flags().BoolVar(&html, "html", false, "input is HTML rather than plain text")
	return cmd
}

func readBody(text, file string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func agreementCmd() *cobra.Command {
	a := &cobra.Command{Use: "agreement", Short: "Agreements of the selected coaching session"}
	a.AddCommand(agreementListCmd())
	a.AddCommand(agreementAddCmd())
	a.AddCommand(agreementEditCmd())
	a.AddCommand(agreementDeleteCmd())
	return a
}

func withAgreements(ctx context.Context, load bool, fn func(context.Context, *app.Env, *panel.Agreements) error) error {
	return withSession(ctx, func(ctx context.Context, env *app.Env, user domain.UserSession, sessionID domain.ID) error {
		p := panel.NewAgreements(env.Client, sessionID, user.ID, env.Logger)
		if load {
			if err := p.Load(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, env, p)
	})
}

func agreementListCmd() *cobra.Command {
	var sortBy []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agreements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgreements(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Agreements) error {
				for _, key := range sortBy {
					if err := p.SortBy(key); err != nil {
						return err
					}
				}
				if viper.GetBool("json") {
					return printJSON(p.Rows())
				}
				p.Render(os.Stdout)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&sortBy, "sort", nil, "sort column (body, created_at, updated_at); repeat to reverse")
	return cmd
}

func agreementAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add an agreement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgreements(cmd.Context(), false, func(ctx context.Context, env *app.Env, p *panel.Agreements) error {
				a, err := p.Add(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if a.ID != "" {
					env.Record(ctx, "agreement.created", "agreement", a.ID, nil)
				}
				return printSaved("Agreement", a.ID)
			})
		},
	}
}

func agreementEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Change an agreement",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgreements(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Agreements) error {
				a, err := p.Edit(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				if a.ID != "" {
					env.Record(ctx, "agreement.updated", "agreement", a.ID, nil)
				}
				return printSaved("Agreement", a.ID)
			})
		},
	}
}

func agreementDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agreement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgreements(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Agreements) error {
				if err := p.Delete(ctx, args[0]); err != nil {
					return err
				}
				env.Record(ctx, "agreement.deleted", "agreement", args[0], nil)
				fmt.Printf("Agreement %s deleted\n", args[0])
				return nil
			})
		},
	}
}

func actionCmd() *cobra.Command {
	a := &cobra.Command{Use: "action", Short: "Actions of the selected coaching session"}
	a.AddCommand(actionListCmd())
	a.AddCommand(actionAddCmd())
	a.AddCommand(actionEditCmd())
	a.AddCommand(actionDeleteCmd())
	a.AddCommand(actionStatusCmd())
	return a
}

func withActions(ctx context.Context, load bool, fn func(context.Context, *app.Env, *panel.Actions) error) error {
	return withSession(ctx, func(ctx context.Context, env *app.Env, user domain.UserSession, sessionID domain.ID) error {
		p := panel.NewActions(env.Client, sessionID, user.ID, env.Logger)
		if load {
			if err := p.Load(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, env, p)
	})
}

func findAction(p *panel.Actions, id domain.ID) (domain.Action, error) {
	a, ok := domain.FindByID(p.Rows(), id)
	if !ok {
		return domain.Action{}, fmt.Errorf("action %s not found in the selected session", id)
	}
	return a, nil
}

func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--due: want YYYY-MM-DD or RFC3339: %w", err)
	}
	return t, nil
}

func actionListCmd() *cobra.Command {
	var sortBy []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActions(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Actions) error {
				for _, key := range sortBy {
					if err := p.SortBy(key); err != nil {
						return err
					}
				}
				if viper.GetBool("json") {
					return printJSON(p.Rows())
				}
				p.Render(os.Stdout)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&sortBy, "sort", nil, "sort column (body, status, due_by, created_at, updated_at); repeat to reverse")
	return cmd
}

func actionAddCmd() *cobra.Command {
	var due, status string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add an action",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueBy, err := parseDue(due)
			if err != nil {
				return err
			}
			st := domain.NotStarted
			if status != "" {
				if st, err = domain.ParseItemStatus(status); err != nil {
					return err
				}
			}
			return withActions(cmd.Context(), false, func(ctx context.Context, env *app.Env, p *panel.Actions) error {
				a, err := p.Add(ctx, api.ActionDraft{Body: strings.Join(args, " "), Status: st, DueBy: dueBy})
				if err != nil {
					return err
				}
				if a.ID != "" {
					env.Record(ctx, "action.created", "action", a.ID, nil)
				}
				return printSaved("Action", a.ID)
			})
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress, completed or wont_do")
	return cmd
}

func actionEditCmd() *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Change an action's text or due date",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActions(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Actions) error {
				current, err := findAction(p, args[0])
				if err != nil {
					return err
				}
				draft := api.ActionDraft{Body: strings.Join(args[1:], " "), Status: current.Status, DueBy: current.DueBy}
				if cmd.Flags().Changed("due") {
					if draft.DueBy, err = parseDue(due); err != nil {
						return err
					}
				}
				a, err := p.Edit(ctx, current.ID, draft)
				if err != nil {
					return err
				}
				if a.ID != "" {
					env.Record(ctx, "action.updated", "action", a.ID, nil)
				}
				return printSaved("Action", a.ID)
			})
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func actionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an action to not_started, in_progress, completed or wont_do",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseItemStatus(args[1])
			if err != nil {
				return err
			}
			return withActions(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Actions) error {
				current, err := findAction(p, args[0])
				if err != nil {
					return err
				}
				a, err := p.Edit(ctx, current.ID, api.ActionDraft{Body: current.Body, Status: st, DueBy: current.DueBy})
				if err != nil {
					return err
				}
				env.Record(ctx, "action.status", "action", a.ID, events.EventPayload{"from": current.Status, "to": a.Status})
				if viper.GetBool("json") {
					return printJSON(a)
				}
				fmt.Printf("Action %s: %s\n", a.ID, a.Status)
				return nil
			})
		},
	}
}

func actionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActions(cmd.Context(), true, func(ctx context.Context, env *app.Env, p *panel.Actions) error {
				if err := p.Delete(ctx, args[0]); err != nil {
					return err
				}
				env.Record(ctx, "action.deleted", "action", args[0], nil)
				fmt.Printf("Action %s deleted\n", args[0])
				return nil
			})
		},
	}
}

func goalCmd() *cobra.Command {
	g := &cobra.Command{Use: "goal", Short: "Overarching goal of the selected coaching session"}
	g.AddCommand(goalShowCmd())
	g.AddCommand(goalTitleCmd())
	g.AddCommand(goalDeleteCmd())
	return g
}

// refreshGoal re-selects the session so the goal store reflects the backend.
func refreshGoal(ctx context.Context, env *app.Env, sessionID domain.ID) (domain.OverarchingGoal, error) {
	if err := env.Selector.SelectSession(ctx, sessionID); err != nil {
		return domain.OverarchingGoal{}, err
	}
	env.Selector.Wait()
	if err := env.Selector.Err(); err != nil {
		return domain.OverarchingGoal{}, err
	}
	return env.Root.Goals.Current(), nil
}

func goalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the overarching goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, env *app.Env, _ domain.UserSession, sessionID domain.ID) error {
				g, err := refreshGoal(ctx, env, sessionID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(g)
				}
				if g.ID == "" {
					fmt.Println("(no overarching goal yet)")
					return nil
				}
				fmt.Printf("Title: %s\nStatus: %s\n", g.Title, g.Status)
				if g.Body != "" {
					fmt.Printf("\n%s\n", richtext.PlainText(g.Body))
				}
				return nil
			})
		},
	}
}

func goalTitleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title <text>",
		Short: "Set the overarching goal title (creates the goal if needed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, env *app.Env, user domain.UserSession, sessionID domain.ID) error {
				field := editor.NewGoalTitleEditor(env.Client, sessionID, user.ID, env.Root.Goals.Current(),
					debounce.WithDelay(env.Config.Editor.Debounce),
					debounce.WithContext(ctx),
					debounce.WithLogger(env.Logger))
				defer field.Close()
				field.Edit(strings.Join(args, " "))
				if err := field.Flush(); err != nil {
					fmt.Println(field.Status().Message)
					return err
				}
				env.Record(ctx, "goal.title", "overarching_goal", field.ID(), nil)
				if _, err := refreshGoal(ctx, env, sessionID); err != nil {
					return err
				}
				fmt.Println(field.Status().Message)
				return nil
			})
		},
	}
}

func goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the overarching goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, env *app.Env, _ domain.UserSession, sessionID domain.ID) error {
				g := env.Root.Goals.Current()
				if g.ID == "" {
					return fmt.Errorf("the selected session has no overarching goal")
				}
				if err := env.Client.DeleteOverarchingGoal(ctx, g.ID); err != nil {
					return err
				}
				if _, err := refreshGoal(ctx, env, sessionID); err != nil {
					return err
				}
				env.Record(ctx, "goal.deleted", "overarching_goal", g.ID, nil)
				fmt.Printf("Overarching goal %s deleted\n", g.ID)
				return nil
			})
		},
	}
}

func printSaved(kind string, id domain.ID) error {
	if viper.GetBool("json") {
		return printJSON(map[string]string{"id": id, "status": debounce.SavedMessage})
	}
	if id == "" {
		fmt.Println("Nothing to save")
		return nil
	}
	fmt.Printf("%s %s saved\n", kind, id)
	return nil
}
