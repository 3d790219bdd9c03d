package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coachline/internal/app"
	"coachline/internal/domain"
	"coachline/internal/events"
	"coachline/internal/provider"
)

func orgCmd() *cobra.Command {
	org := &cobra.Command{Use: "org", Aliases: []string{"organization"}, Short: "Manage organizations"}
	org.AddCommand(orgListCmd())
	org.AddCommand(orgSelectCmd())
	org.AddCommand(orgShowCmd())
	org.AddCommand(orgCreateCmd())
	org.AddCommand(orgUpdateCmd())
	org.AddCommand(orgDeleteCmd())
	return org
}

func orgListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				if err := env.Selector.LoadOrganizations(ctx); err != nil {
					return err
				}
				orgs := provider.UseOrganizations(ctx)
				items := orgs.List()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"", "ID", "Name", "Slug"})
				for _, o := range items {
					tw.AppendRow(table.Row{marker(o.ID == orgs.CurrentID()), o.ID, o.Name, o.Slug})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func orgSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Select the working organization (clears relationship and session)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				id := argOrFlag(args, "")
				env.Selector.SelectOrganization(ctx, id)
				env.Selector.Wait()
				if err := env.Selector.Err(); err != nil {
					return err
				}
				env.Record(ctx, "selection.organization", "organization", id, nil)
				if id == "" {
					fmt.Println("Organization cleared")
					return nil
				}
				org := env.Root.Organizations.Current()
				if viper.GetBool("json") {
					return printJSON(org)
				}
				fmt.Printf("Organization: %s (%s)\n", org.Name, org.ID)
				return nil
			})
		},
	}
}

func orgShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show an organization (default: selected)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				id := argOrFlag(args, env.Root.Organizations.CurrentID())
				if id == "" {
					return fmt.Errorf("no organization selected; run coach org select <id>")
				}
				org, err := env.Client.FetchOrganization(ctx, id)
				if err != nil {
					return err
				}
				return printOrganization(org)
			})
		},
	}
}

func orgCreateCmd() *cobra.Command {
	var name, logo, slug string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				o := domain.DefaultOrganization()
				o.Name, o.Logo, o.Slug = name, logo, slug
				created, err := env.Client.CreateOrganization(ctx, o)
				if err != nil {
					return err
				}
				env.Record(ctx, "organization.created", "organization", created.ID, events.EventPayload{"name": created.Name})
				return printOrganization(created)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "organization name")
	cmd.Flags().StringVar(&logo, "logo", "", "logo URL")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	return cmd
}

func orgUpdateCmd() *cobra.Command {
	var name, logo, slug string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				o, err := env.Client.FetchOrganization(ctx, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					o.Name = name
				}
				if cmd.Flags().Changed("logo") {
					o.Logo = logo
				}
				if cmd.Flags().Changed("slug") {
					o.Slug = slug
				}
				updated, err := env.Client.UpdateOrganization(ctx, o.ID, o)
				if err != nil {
					return err
				}
				env.Record(ctx, "organization.updated", "organization", updated.ID, nil)
				if env.Root.Organizations.CurrentID() == updated.ID {
					env.Root.Organizations.SetCurrent(updated)
				}
				return printOrganization(updated)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "organization name")
	cmd.Flags().StringVar(&logo, "logo", "", "logo URL")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	return cmd
}

func orgDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env *app.Env) error {
				if _, err := env.RequireLogin(); err != nil {
					return err
				}
				if err := env.Client.DeleteOrganization(ctx, args[0]); err != nil {
					return err
				}
				env.Record(ctx, "organization.deleted", "organization", args[0], nil)
				if env.Root.Organizations.CurrentID() == args[0] {
					env.Selector.SelectOrganization(ctx, "")
				}
				fmt.Printf("Organization %s deleted\n", args[0])
				return nil
			})
		},
	}
}

func printOrganization(o domain.Organization) error {
	if viper.GetBool("json") {
		return printJSON(o)
	}
	fmt.Printf("ID: %s\nName: %s\nSlug: %s\n", o.ID, o.Name, o.Slug)
	if o.Logo != "" {
		fmt.Printf("Logo: %s\n", o.Logo)
	}
	fmt.Printf("Created: %s\nUpdated: %s\n", formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	return nil
}

func marker(selected bool) string {
	if selected {
		return "*"
	}
	return ""
}
