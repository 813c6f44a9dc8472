package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	twitterbot "github.com/anatolykoptev/go-twitterbot"
)

var (
	targetHandle string
	targetUserID string
	tweetID      string
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest tweet of an account",
	Long: `Show the most recent tweet of an account.

Examples:
  twitterbot latest --handle jack
  twitterbot latest --user-id 12`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw, err := bot.GetLatestTweet(cmd.Context(), targetHandle, targetUserID)
		if err != nil {
			return err
		}
		printTweet(cmd.OutOrStdout(), tw)
		return nil
	},
}

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "List replies to a tweet",
	Long: `List replies to a tweet found in the recent search window.

The tweet is either given by --tweet-id and --handle (its author), or is the
latest tweet of --handle / --user-id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw, err := resolveTweet(cmd)
		if err != nil {
			return err
		}
		replies, err := bot.GetReplies(cmd.Context(), tw)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d replies to %s\n", len(replies), tw.ID)
		for _, r := range replies {
			printTweet(out, r)
		}
		return nil
	},
}

var repliedCmd = &cobra.Command{
	Use:   "replied",
	Short: "Check whether this account already replied to a tweet",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw, err := resolveTweet(cmd)
		if err != nil {
			return err
		}
		replied, err := bot.PreviouslyRepliedTo(cmd.Context(), tw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%t\n", replied)
		return nil
	},
}

func init() {
	latestCmd.Flags().StringVar(&targetHandle, "handle", "", "Account handle")
	latestCmd.Flags().StringVar(&targetUserID, "user-id", "", "Account id")
	latestCmd.MarkFlagsOneRequired("handle", "user-id")

	for _, c := range []*cobra.Command{repliesCmd, repliedCmd} {
		c.Flags().StringVar(&targetHandle, "handle", "", "Author handle")
		c.Flags().StringVar(&targetUserID, "user-id", "", "Author id (uses the latest tweet)")
		c.Flags().StringVar(&tweetID, "tweet-id", "", "Tweet id (requires --handle)")
		c.MarkFlagsOneRequired("handle", "user-id")
	}

	rootCmd.AddCommand(latestCmd, repliesCmd, repliedCmd)
}

// resolveTweet builds the target tweet from flags, fetching the latest one
// when no tweet id is given.
func resolveTweet(cmd *cobra.Command) (*twitterbot.Tweet, error) {
	if tweetID != "" {
		if targetHandle == "" {
			return nil, fmt.Errorf("%w: --tweet-id requires --handle", twitterbot.ErrInvalidArguments)
		}
		return &twitterbot.Tweet{ID: tweetID, AuthorHandle: targetHandle}, nil
	}
	return bot.GetLatestTweet(cmd.Context(), targetHandle, targetUserID)
}

func printTweet(w io.Writer, tw *twitterbot.Tweet) {
	fmt.Fprintf(w, "[%s] @%s %s: %s\n", tw.ID, tw.AuthorHandle, tw.CreatedAt.Format("2006-01-02 15:04"), tw.Text)
}
