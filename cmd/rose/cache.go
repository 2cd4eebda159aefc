package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/watch"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Update and watch the metadata cache",
}

var cacheForce bool

var cacheUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Scan the source directory and refresh the cache",
	Run: runWith(func(a *app, args []string) error {
		if len(args) > 0 {
			dirs := make([]string, len(args))
			for i, rel := range args {
				dirs[i] = filepath.Join(a.Config.MusicSourceDir, rel)
			}
			return a.Updater.UpdateReleases(dirs, cacheForce)
		}
		return a.Updater.UpdateAll(cacheForce)
	}),
}

var cacheWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the source directory and keep the cache in sync until interrupted",
	Run: runWith(func(a *app, args []string) error {
		pidPath := filepath.Join(a.Config.CacheDir, "watch.pid")
		if err := watch.WritePIDFile(pidPath); err != nil {
			return err
		}
		defer watch.RemovePIDFile(pidPath)

		w, err := watch.New(a.Updater, a.Config)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			cancel()
		}()

		fmt.Fprintf(os.Stderr, "watching %s\n", a.Config.MusicSourceDir)
		return w.Run(ctx)
	}),
}

var cacheUnwatchCmd = &cobra.Command{
	Use:   "unwatch",
	Short: "Stop a running watcher by sending SIGTERM to the pid in its PID file, then remove the file",
	Run: runWith(func(a *app, args []string) error {
		pidPath := filepath.Join(a.Config.CacheDir, "watch.pid")
		if data, err := os.ReadFile(pidPath); err == nil {
			var pid int
			fmt.Sscanf(string(data), "%d", &pid)
			if pid > 0 {
				if proc, err := os.FindProcess(pid); err == nil {
					_ = proc.Signal(syscall.SIGTERM)
				}
			}
		}
		return watch.RemovePIDFile(pidPath)
	}),
}

func init() {
	cacheUpdateCmd.Flags().BoolVar(&cacheForce, "force", false, "re-read every file's tags even if its mtime matches the cache")
	cacheCmd.AddCommand(cacheUpdateCmd, cacheWatchCmd, cacheUnwatchCmd)
	rootCmd.AddCommand(cacheCmd)
}
