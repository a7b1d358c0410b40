package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:   "signin-server",
		Short: "Sign-in server with server-side sessions",
		Long: `Runs the sign-in server. With no sub-command the server is started.

Configuration is read from the environment (PORT, BASE_URL, COOKIE_SECRET,
SESSION_STORE, TWITTER_*, OIDC_* ...).`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newPurgeSessionsCmd())
	return root
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
