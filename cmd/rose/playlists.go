package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Manage playlists",
}

var playlistsCreateCmd = &cobra.Command{
	Use:  "create <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.Create(args[0]) }),
}

var playlistsRenameCmd = &cobra.Command{
	Use:  "rename <old-name> <new-name>",
	Args: cobra.ExactArgs(2),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.Rename(args[0], args[1]) }),
}

var playlistsDeleteCmd = &cobra.Command{
	Use:  "delete <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.Delete(args[0]) }),
}

var playlistsAddTrackCmd = &cobra.Command{
	Use:  "add-track <playlist-name> <track-id>",
	Args: cobra.ExactArgs(2),
	Run: runWith(func(a *app, args []string) error {
		t, ok, err := store.GetTrack(a.Store.DB, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("track %q does not exist", args[1])
		}
		return a.Playlists.AddTrack(args[0], rose.PlaylistEntry{UUID: t.ID, DescriptionMeta: t.TrackTitle})
	}),
}

var playlistsRemoveTrackCmd = &cobra.Command{
	Use:  "remove-track <playlist-name> <track-id>",
	Args: cobra.ExactArgs(2),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.RemoveTrack(args[0], args[1]) }),
}

var playlistsEditCmd = &cobra.Command{
	Use:  "edit <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.EditInEditor(args[0], editLinesInEditor) }),
}

var playlistsPrintCmd = &cobra.Command{
	Use:  "print <name>",
	Args: cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		p, err := a.Playlists.Read(args[0])
		if err != nil {
			return err
		}
		return printJSON(p)
	}),
}

var playlistsPrintAllCmd = &cobra.Command{
	Use: "print-all",
	Run: runWith(func(a *app, args []string) error {
		names, err := a.Playlists.List()
		if err != nil {
			return err
		}
		return printJSON(names)
	}),
}

var playlistsSetCoverCmd = &cobra.Command{
	Use:  "set-cover <name> <image-path>",
	Args: cobra.ExactArgs(2),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.SetCover(args[0], args[1]) }),
}

var playlistsDeleteCoverCmd = &cobra.Command{
	Use:  "delete-cover <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Playlists.ClearCover(args[0]) }),
}

func init() {
	playlistsCmd.AddCommand(
		playlistsCreateCmd, playlistsRenameCmd, playlistsDeleteCmd, playlistsAddTrackCmd,
		playlistsRemoveTrackCmd, playlistsEditCmd, playlistsPrintCmd, playlistsPrintAllCmd,
		playlistsSetCoverCmd, playlistsDeleteCoverCmd,
	)
	rootCmd.AddCommand(playlistsCmd)
}
