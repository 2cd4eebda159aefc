package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/rulesengine"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Run library-wide metadata rules",
}

var rulesRunDryRun bool

var rulesRunCmd = &cobra.Command{
	Use:   "run <matcher> <action> [action...]",
	Short: "Run an ad-hoc metadata rule against the whole library",
	Args:  cobra.MinimumNArgs(2),
	Run: runWith(func(a *app, args []string) error {
		r, err := rule.ParseRule(args[0], args[1:], nil)
		if err != nil {
			return err
		}
		plan, err := a.Engine.Run(r, rulesengine.RunOptions{
			DryRun:         rulesRunDryRun,
			RequireConfirm: true,
			Confirm:        confirmPlan,
		})
		if err != nil {
			return err
		}
		fmt.Print(plan.String())
		return nil
	}),
}

var rulesRunStoredCmd = &cobra.Command{
	Use:   "run-stored",
	Short: "Run every rule in stored_metadata_rules, in configuration order",
	Run: runWith(func(a *app, args []string) error {
		plans, err := a.Engine.RunStored(rulesengine.RunOptions{
			DryRun:         rulesRunDryRun,
			RequireConfirm: true,
			Confirm:        confirmPlan,
		})
		if err != nil {
			return err
		}
		for _, p := range plans {
			fmt.Print(p.String())
		}
		return nil
	}),
}

func init() {
	rulesRunCmd.Flags().BoolVar(&rulesRunDryRun, "dry-run", false, "print the plan without writing changes")
	rulesRunStoredCmd.Flags().BoolVar(&rulesRunDryRun, "dry-run", false, "print the plan without writing changes")
	rulesCmd.AddCommand(rulesRunCmd, rulesRunStoredCmd)
	rootCmd.AddCommand(rulesCmd)
}
