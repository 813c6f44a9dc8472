package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify credentials and show the authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !bot.Verified() {
			return fmt.Errorf("verification failed: %w", bot.VerifyErr())
		}
		me := bot.Account()
		fmt.Fprintf(cmd.OutOrStdout(), "@%s (%s) id=%s followers=%d\n", me.Handle, me.DisplayName, me.ID, me.Followers)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
