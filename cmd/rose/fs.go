package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/azuline/rose-go/internal/vfs"
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Mount or unmount the virtual filesystem",
}

var fsMountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount the virtual filesystem at vfs.mount_dir and block until unmounted",
	Run: runWith(func(a *app, args []string) error {
		if a.Config.VFS.MountDir == "" {
			return fmt.Errorf("vfs.mount_dir is not configured")
		}
		core := vfs.NewCore(a.Store, a.Config, a.Updater, vfs.NewBridge())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			cancel()
		}()

		fmt.Fprintf(os.Stderr, "mounted at %s\n", a.Config.VFS.MountDir)
		return vfs.Mount(ctx, core, a.Config.VFS.MountDir)
	}),
}

var fsUnmountCmd = &cobra.Command{
	Use:   "unmount",
	Short: "Unmount the virtual filesystem",
	Run: runWith(func(a *app, args []string) error {
		if a.Config.VFS.MountDir == "" {
			return fmt.Errorf("vfs.mount_dir is not configured")
		}
		return unmount(a.Config.VFS.MountDir)
	}),
}

// unmount shells out to the platform unmount tool (fusermount on Linux,
// umount elsewhere), the same way a FUSE-backed filesystem is normally torn
// down outside the mounting process itself.
func unmount(mountDir string) error {
	if _, err := exec.LookPath("fusermount"); err == nil {
		return exec.Command("fusermount", "-u", mountDir).Run()
	}
	return exec.Command("umount", mountDir).Run()
}

func init() {
	fsCmd.AddCommand(fsMountCmd, fsUnmountCmd)
	rootCmd.AddCommand(fsCmd)
}
