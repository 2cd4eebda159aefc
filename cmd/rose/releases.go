package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/rulesengine"
	"github.com/azuline/rose-go/internal/store"
)

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "Inspect and edit releases",
}

var releasesPrintCmd = &cobra.Command{
	Use:   "print <release-id>",
	Short: "Print one release as JSON",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		r, ok, err := store.GetRelease(a.Store.DB, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", args[0])
		}
		return printJSON(r)
	}),
}

var releasesPrintAllCmd = &cobra.Command{
	Use:   "print-all",
	Short: "Print every release as JSON",
	Run: runWith(func(a *app, args []string) error {
		ids, err := store.ListAllReleaseIDs(a.Store.DB)
		if err != nil {
			return err
		}
		releases := make([]any, 0, len(ids))
		for _, id := range ids {
			r, ok, err := store.GetRelease(a.Store.DB, id)
			if err != nil {
				return err
			}
			if ok {
				releases = append(releases, r)
			}
		}
		return printJSON(releases)
	}),
}

var releasesToggleNewCmd = &cobra.Command{
	Use:   "toggle-new <release-id>",
	Short: "Flip a release's new/not-new flag",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		return a.Updater.ToggleReleaseNew(args[0])
	}),
}

var releasesDeleteCmd = &cobra.Command{
	Use:   "delete <release-id>",
	Short: "Move a release's source directory to .trash",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		r, ok, err := store.GetRelease(a.Store.DB, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", args[0])
		}
		if err := moveToTrash(a.Config.MusicSourceDir, r.SourcePath); err != nil {
			return roseerr.Unexpected(err)
		}
		return a.Store.WithTx(func(tx *sql.Tx) error {
			return store.DeleteRelease(tx, r.ID)
		})
	}),
}

var releasesSetCoverCmd = &cobra.Command{
	Use:   "set-cover <release-id> <image-path>",
	Short: "Replace a release's cover art",
	Args:  cobra.ExactArgs(2),
	Run: runWith(func(a *app, args []string) error {
		r, ok, err := store.GetRelease(a.Store.DB, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", args[0])
		}
		if err := installCoverArt(a, r.SourcePath, args[1]); err != nil {
			return err
		}
		return a.Updater.UpdateReleases([]string{r.SourcePath}, true)
	}),
}

var releasesDeleteCoverCmd = &cobra.Command{
	Use:   "delete-cover <release-id>",
	Short: "Remove a release's cover art",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		r, ok, err := store.GetRelease(a.Store.DB, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", args[0])
		}
		if r.CoverImagePath != "" {
			if err := os.Remove(r.CoverImagePath); err != nil && !os.IsNotExist(err) {
				return roseerr.Unexpected(err)
			}
		}
		return a.Updater.UpdateReleases([]string{r.SourcePath}, true)
	}),
}

var releasesRunRuleCmd = &cobra.Command{
	Use:   "run-rule <matcher> <action> [action...]",
	Short: "Run an ad-hoc metadata rule, scoped to the releases it matches",
	Args:  cobra.MinimumNArgs(2),
	Run: runWith(func(a *app, args []string) error {
		return runRule(a, args[0], args[1:], nil)
	}),
}
var runRuleDryRun bool

var releasesCreateSingleCmd = &cobra.Command{
	Use:   "create-single <track-path>",
	Short: "Materialize a new single-track release from an existing audio file",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		id, err := a.Engine.CreateSingleRelease(args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	}),
}

var releasesEditCmd = &cobra.Command{
	Use:   "edit <release-id>",
	Short: "Edit a release's tags in $EDITOR",
	Args:  cobra.ExactArgs(1),
	Run: runWith(func(a *app, args []string) error {
		return a.Engine.EditReleaseInEditor(args[0], editInEditor)
	}),
}

// installCoverArt copies srcImage into releaseDir as "<stem><ext>", where
// stem is the first configured cover_art_stems entry ("cover" when none is
// configured), removing any other file stem CoverArtStems recognizes so exactly one
// cover image remains, mirroring PlaylistStore.SetCover's
// replace-sibling-cover convention.
func installCoverArt(a *app, releaseDir, srcImage string) error {
	ext := strings.ToLower(filepath.Ext(srcImage))
	ok := false
	for _, e := range a.Config.ValidArtExts {
		if strings.EqualFold(e, strings.TrimPrefix(ext, ".")) {
			ok = true
			break
		}
	}
	if !ok {
		return roseerr.New(roseerr.InvalidCoverArtFile, "unsupported cover art extension %q", ext)
	}

	entries, err := os.ReadDir(releaseDir)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	for _, e := range entries {
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		for _, s := range a.Config.CoverArtStems {
			if strings.EqualFold(stem, s) {
				_ = os.Remove(filepath.Join(releaseDir, e.Name()))
			}
		}
	}

	stem := "cover"
	if len(a.Config.CoverArtStems) > 0 {
		stem = a.Config.CoverArtStems[0]
	}
	dest := filepath.Join(releaseDir, stem+ext)
	return copyFileContents(srcImage, dest)
}

func copyFileContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

// moveToTrash mirrors internal/collections' own unexported helper of the
// same name: neither package exports it, so the CLI (which edits the
// source tree directly rather than through the VFS bridge) carries its own
// copy of the same convention.
func moveToTrash(sourceDir, path string) error {
	trashDir := filepath.Join(sourceDir, ".trash")
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(path)
	dest := filepath.Join(trashDir, base)
	for i := 2; fileExistsAt(dest); i++ {
		dest = filepath.Join(trashDir, base+" ["+strconv.Itoa(i)+"]")
	}
	return os.Rename(path, dest)
}

func fileExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// editInEditor is the shared $EDITOR invocation used by releases/collages/
// playlists edit verbs: write text to a temp file, exec the editor against
// it, and read the result back.
func editInEditor(text string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	f, err := os.CreateTemp("", "rose-edit-*.toml")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", err
	}
	f.Close()

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// editLinesInEditor is the []string variant collage/playlist EditInEditor
// callers use: one entry's description_meta per line.
func editLinesInEditor(lines []string) ([]string, error) {
	text, err := editInEditor(strings.Join(lines, "\n") + "\n")
	if err != nil {
		return nil, err
	}
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// runRule parses matcherText/actionTexts into a rule.Rule and runs it via
// Engine.Run, which asks confirmPlan before any flush (y/N, or the retyped
// count above rulesengine's default threshold), then prints the plan.
func runRule(a *app, matcherText string, actionTexts []string, ignoreTexts []string) error {
	r, err := rule.ParseRule(matcherText, actionTexts, ignoreTexts)
	if err != nil {
		return err
	}
	plan, err := a.Engine.Run(r, rulesengine.RunOptions{
		DryRun:         runRuleDryRun,
		RequireConfirm: true,
		Confirm:        confirmPlan,
	})
	if err != nil {
		return err
	}
	fmt.Print(plan.String())
	return nil
}

// confirmPlan prompts on stdin for a plan's confirmation, requiring the
// exact count to be retyped above the threshold rather than a plain y/n.
func confirmPlan(count int, aboveThreshold bool) (bool, error) {
	if aboveThreshold {
		fmt.Printf("This will change %d tracks. Type the number to confirm: ", count)
		var typed string
		if _, err := fmt.Scanln(&typed); err != nil {
			return false, nil
		}
		return typed == strconv.Itoa(count), nil
	}
	fmt.Print("Apply these changes? [y/N] ")
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false, nil
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

func init() {
	releasesRunRuleCmd.Flags().BoolVar(&runRuleDryRun, "dry-run", false, "print the plan without writing changes")
	releasesCmd.AddCommand(
		releasesPrintCmd, releasesPrintAllCmd, releasesEditCmd, releasesToggleNewCmd,
		releasesDeleteCmd, releasesSetCoverCmd, releasesDeleteCoverCmd, releasesRunRuleCmd,
		releasesCreateSingleCmd,
	)
	rootCmd.AddCommand(releasesCmd)
}
