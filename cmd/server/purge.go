package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPurgeSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions from the configured store and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepo(c)
			if err != nil {
				return err
			}
			defer func() { _ = closeRepo() }()

			removed, err := repo.DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.Info().Int("removed", removed).Str("store", c.GetSessionStore()).Msg("Purged expired sessions")
			return nil
		},
	}
}
