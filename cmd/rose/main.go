// Command rose is the CLI surface: cobra verb groups dispatching into the
// cache updater, VFS bridge, watcher, collections stores, and rules
// engine. One file per verb group, each registering its commands onto
// rootCmd from its own init.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	l "github.com/sirupsen/logrus"

	"github.com/azuline/rose-go/internal/roseerr"
)

var log = l.WithFields(l.Fields{"component": "cli"})

var rootCmd = &cobra.Command{
	Use:           "rose",
	Short:         "Rosé: a virtual filesystem music library manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exit(err)
	}
}

// exit prints err the way §6's exit codes demand: expected (roseerr.Error)
// values print without a trace and exit 1; anything else is unexpected and
// exits 2.
func exit(err error) {
	var re *roseerr.Error
	if errors.As(err, &re) {
		fmt.Fprintln(os.Stderr, re.Error())
		os.Exit(1)
	}
	log.WithError(err).Error("unexpected error")
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(2)
}
