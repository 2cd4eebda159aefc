package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
)

var collagesCmd = &cobra.Command{
	Use:   "collages",
	Short: "Manage collages",
}

var collagesCreateCmd = &cobra.Command{
	Use:  "create <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Collages.Create(args[0]) }),
}

var collagesRenameCmd = &cobra.Command{
	Use:  "rename <old-name> <new-name>",
	Args: cobra.ExactArgs(2),
	Run:  runWith(func(a *app, args []string) error { return a.Collages.Rename(args[0], args[1]) }),
}

var collagesDeleteCmd = &cobra.Command{
	Use:  "delete <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Collages.Delete(args[0]) }),
}

var collagesAddReleaseCmd = &cobra.Command{
	Use:  "add-release <collage-name> <release-id>",
	Args: cobra.ExactArgs(2),
	Run: runWith(func(a *app, args []string) error {
		r, ok, err := store.GetRelease(a.Store.DB, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("release %q does not exist", args[1])
		}
		return a.Collages.AddRelease(args[0], rose.CollageEntry{UUID: r.ID, DescriptionMeta: r.ReleaseTitle})
	}),
}

var collagesRemoveReleaseCmd = &cobra.Command{
	Use:  "remove-release <collage-name> <release-id>",
	Args: cobra.ExactArgs(2),
	Run:  runWith(func(a *app, args []string) error { return a.Collages.RemoveRelease(args[0], args[1]) }),
}

var collagesEditCmd = &cobra.Command{
	Use:  "edit <name>",
	Args: cobra.ExactArgs(1),
	Run:  runWith(func(a *app, args []string) error { return a.Collages.EditInEditor(args[0], editLinesInEditor) }),
}

var collagesPrintCmd = &cobra.Command{
	Use:  "print <name>",
	Args: cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		c, err := a.Collages.Read(args[0])
		if err != nil {
			return err
		}
		return printJSON(c)
	}),
}

var collagesPrintAllCmd = &cobra.Command{
	Use: "print-all",
	Run: runWith(func(a *app, args []string) error {
		names, err := a.Collages.List()
		if err != nil {
			return err
		}
		return printJSON(names)
	}),
}

func init() {
	collagesCmd.AddCommand(
		collagesCreateCmd, collagesRenameCmd, collagesDeleteCmd, collagesAddReleaseCmd,
		collagesRemoveReleaseCmd, collagesEditCmd, collagesPrintCmd, collagesPrintAllCmd,
	)
	rootCmd.AddCommand(collagesCmd)
}
