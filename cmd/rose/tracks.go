package main

import (
	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/store"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Inspect tracks and run ad-hoc rules against them",
}

var tracksPrintCmd = &cobra.Command{
	Use:   "print <track-id>",
	Short: "Print one track as JSON",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		t, ok, err := store.GetTrack(a.Store.DB, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return roseerr.New(roseerr.TrackDoesNotExist, "track %q does not exist", args[0])
		}
		return printJSON(t)
	}),
}

var tracksPrintAllCmd = &cobra.Command{
	Use:   "print-all",
	Short: "Print every track as JSON",
	Run: runWith(func(a *app, args []string) error {
		ids, err := store.ListAllReleaseIDs(a.Store.DB)
		if err != nil {
			return err
		}
		var tracks []any
		for _, rid := range ids {
			ts, err := store.ListTracksForRelease(a.Store.DB, rid)
			if err != nil {
				return err
			}
			for _, t := range ts {
				tracks = append(tracks, t)
			}
		}
		return printJSON(tracks)
	}),
}

var tracksRunRuleCmd = &cobra.Command{
	Use:   "run-rule <matcher> <action> [action...]",
	Short: "Run an ad-hoc metadata rule against matching tracks",
	Args:  cobra.MinimumNArgs(2),
	Run: runWith(func(a *app, args []string) error {
		return runRule(a, args[0], args[1:], nil)
	}),
}

func init() {
	tracksRunRuleCmd.Flags().BoolVar(&runRuleDryRun, "dry-run", false, "print the plan without writing changes")
	tracksCmd.AddCommand(tracksPrintCmd, tracksPrintAllCmd, tracksRunRuleCmd)
	rootCmd.AddCommand(tracksCmd)
}
