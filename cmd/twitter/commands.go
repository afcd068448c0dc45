package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	twitter "github.com/RavensCloud/twitter-gofun"
)

func newTweetsCommand(a *app) *cobra.Command {
	var (
		username string
		userID   string
		pages    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "tweets",
		Short: "Collect tweets from a profile timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			var target twitter.Target
			switch {
			case username != "":
				target = twitter.ByUsername(username)
			case userID != "":
				target = twitter.ByID(userID)
			}
			if target.Username == "" && target.UserID == "" {
				return fmt.Errorf("--user or --id is required: %w", twitter.ErrInvalidTarget)
			}
			if pages < 1 {
				return fmt.Errorf("--pages %d: %w", pages, twitter.ErrInvalidPageCount)
			}

			s, err := a.newScraper()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.InitBrowser(); err != nil {
				return fmt.Errorf("init browser: %w", err)
			}

			result, err := s.GetTweets(cmd.Context(), target, pages)
			if err != nil {
				if errors.Is(err, twitter.ErrUserNotFound) {
					a.logger.Warn("profile could not be resolved", zap.Stringer("target", target))
				}
				return err
			}
			if !result.Completed {
				a.logger.Warn("stopped before all pages were loaded",
					zap.Int("pages", result.Pages), zap.Int("requested", pages))
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printTweets(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "profile handle")
	cmd.Flags().StringVar(&userID, "id", "", "numeric account id")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of timeline pages to load")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newUserIDCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "userid <handle>",
		Short: "Resolve a handle to its numeric account id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newScraper()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.InitBrowser(); err != nil {
				return fmt.Errorf("init browser: %w", err)
			}

			id, err := s.FindUserID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newLoginCommand(a *app) *cobra.Command {
	var (
		saveCookies string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in by hand in a visible browser and save the session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Browser.Headless = false
			s, err := a.newScraper()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.WaitLogin(cmd.Context(), timeout); err != nil {
				return err
			}
			if err := s.SaveCookies(saveCookies); err != nil {
				return fmt.Errorf("save cookies: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in! Cookies saved to %s\n", saveCookies)
			return nil
		},
	}

	cmd.Flags().StringVar(&saveCookies, "save-cookies", "cookies.json", "path to save cookies after login")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for sign in")
	return cmd
}

func printTweets(w io.Writer, result twitter.Result) {
	for i, t := range result.Tweets {
		date := "unknown date"
		if t.CreatedAt != nil {
			date = t.CreatedAt.Format("2006-01-02 15:04")
		}
		text := ""
		if t.Text != nil {
			text = *t.Text
		}
		fmt.Fprintf(w, "[%d] %s (%s)\n", i+1, t.ID, date)
		if text != "" {
			fmt.Fprintf(w, "    %s\n", text)
		}
	}
	status := "complete"
	if !result.Completed {
		status = "partial"
	}
	fmt.Fprintf(w, "\nTotal: %d tweets from %d pages (%s)\n", len(result.Tweets), result.Pages, status)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
