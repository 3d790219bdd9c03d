package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coachline/internal/app"
)

func relationshipCmd() *cobra.Command {
	rel := &cobra.Command{Use: "relationship", Aliases: []string{"rel"}, Short: "Coaching relationships of the selected organization"}
	rel.AddCommand(relationshipListCmd())
	rel.AddCommand(relationshipSelectCmd())
	return rel
}

func relationshipListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List coaching relationships",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				if err := env.Selector.LoadRelationships(ctx); err != nil {
					return err
				}
				rels := env.Root.Relationships
				items := rels.List()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"", "ID", "Coach", "Coachee"})
				for _, r := range items {
					tw.AppendRow(table.Row{marker(r.ID == rels.CurrentID()), r.ID, r.CoachFullName(), r.CoacheeFullName()})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func relationshipSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Select a coaching relationship (clears session)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				id := argOrFlag(args, "")
				if err := env.Selector.SelectRelationship(ctx, id); err != nil {
					return err
				}
				env.Selector.Wait()
				if err := env.Selector.Err(); err != nil {
					return err
				}
				env.Record(ctx, "selection.relationship", "coaching_relationship", id, nil)
				if id == "" {
					fmt.Println("Coaching relationship cleared")
					return nil
				}
				rel := env.Root.Relationships.Current()
				if viper.GetBool("json") {
					return printJSON(rel)
				}
				fmt.Printf("Coaching relationship: %s (%s)\n", rel.Label(), rel.ID)
				return nil
			})
		},
	}
}

func sessionCmd() *cobra.Command {
	s := &cobra.Command{Use: "session", Short: "Coaching sessions of the selected relationship"}
	s.AddCommand(sessionListCmd())
	s.AddCommand(sessionSelectCmd())
	return s
}

type dateRange struct {
	from, to string
}

func (r *dateRange) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().StringVar(&r.to, "to", "", "last day (YYYY-MM-DD, default 30 days ahead)")
}

func (r dateRange) resolve(now time.Time) (time.Time, time.Time, error) {
	from, to := now.AddDate(0, 0, -30), now.AddDate(0, 0, 30)
	var err error
	if r.from != "" {
		if from, err = time.Parse(time.DateOnly, r.from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
	}
	if r.to != "" {
		if to, err = time.Parse(time.DateOnly, r.to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return from, to, nil
}

func sessionListCmd() *cobra.Command {
	var window dateRange
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coaching sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := window.resolve(time.Now())
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				if err := env.Selector.LoadSessions(ctx, from, to); err != nil {
					return err
				}
				sessions := env.Root.Sessions
				items := sessions.List()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"", "ID", "Date", "Timezone"})
				for _, s := range items {
					tw.AppendRow(table.Row{marker(s.ID == sessions.CurrentID()), s.ID, s.LocalDate().Format("2006-01-02 15:04"), s.Timezone})
				}
				tw.Render()
				return nil
			})
		},
	}
	window.bind(cmd)
	return cmd
}

func sessionSelectCmd() *cobra.Command {
	var window dateRange
	cmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Select a coaching session and load its overarching goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := window.resolve(time.Now())
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				id := argOrFlag(args, "")
				if id != "" && len(env.Root.Sessions.List()) == 0 {
					if err := env.Selector.LoadSessions(ctx, from, to); err != nil {
						return err
					}
				}
				if err := env.Selector.SelectSession(ctx, id); err != nil {
					return err
				}
				env.Selector.Wait()
				if err := env.Selector.Err(); err != nil {
					return err
				}
				env.Record(ctx, "selection.session", "coaching_session", id, nil)
				if id == "" {
					fmt.Println("Coaching session cleared")
					return nil
				}
				s := env.Root.Sessions.Current()
				if viper.GetBool("json") {
					return printJSON(map[string]any{"session": s, "goal": env.Root.Goals.Current()})
				}
				if s.Date.IsZero() {
					fmt.Printf("Coaching session: %s\n", id)
				} else {
					fmt.Printf("Coaching session: %s (%s)\n", s.LocalDate().Format("2006-01-02 15:04"), s.ID)
				}
				if g := env.Root.Goals.Current(); g.ID != "" {
					fmt.Printf("Overarching goal: %s\n", g.Title)
				}
				return nil
			})
		},
	}
	window.bind(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user and the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				root := env.Root
				auth := root.Auth.State()
				sel := root.App.Selection()
				out := map[string]any{
					"logged_in":                auth.IsLoggedIn,
					"user_id":                  auth.UserID,
					"organization_id":          sel.OrganizationID,
					"organization":             root.Organizations.Current().Name,
					"coaching_relationship_id": sel.RelationshipID,
					"coaching_relationship":    root.Relationships.Current().Label(),
					"coaching_session_id":      sel.SessionID,
					"overarching_goal":         root.Goals.Current().Title,
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				user := "not logged in"
				if auth.IsLoggedIn {
					u := auth.UserSession
					user = fmt.Sprintf("%s (%s)", displayName(u.DisplayName, u.FirstName, u.LastName), u.ID)
				}
				tw.AppendRow(table.Row{"User", user})
				tw.AppendRow(table.Row{"Organization", describe(sel.OrganizationID, root.Organizations.Current().Name)})
				rel := ""
				if root.Relationships.Current().ID != "" {
					rel = root.Relationships.Current().Label()
				}
				tw.AppendRow(table.Row{"Relationship", describe(sel.RelationshipID, rel)})
				session := ""
				if s := root.Sessions.Current(); !s.Date.IsZero() {
					session = s.LocalDate().Format("2006-01-02 15:04")
				}
				tw.AppendRow(table.Row{"Session", describe(sel.SessionID, session)})
				tw.AppendRow(table.Row{"Goal", root.Goals.Current().Title})
				tw.Render()
				return nil
			})
		},
	}
}

func describe(id, label string) string {
	switch {
	case id == "":
		return "-"
	case label == "":
		return id
	default:
		return fmt.Sprintf("%s (%s)", label, id)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
