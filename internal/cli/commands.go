package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Conte777/mediaflow/internal/domain"
	authentities "github.com/Conte777/mediaflow/internal/domain/auth/entities"
	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/download/usecase/business"
	"github.com/Conte777/mediaflow/internal/task"
	"github.com/Conte777/mediaflow/internal/usecase"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

func (c *CLI) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "qr",
		Short: "Log in by scanning a QR code with another device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.login(cmd.Context(), func(svc *usecase.Service) (*task.Runner, error) {
				return svc.LoginQR()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "phone <number>",
		Short: "Log in with a code sent to the phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.login(cmd.Context(), func(svc *usecase.Service) (*task.Runner, error) {
				return svc.LoginPhone(args[0])
			})
		},
	})

	return cmd
}

func (c *CLI) login(ctx context.Context, start func(svc *usecase.Service) (*task.Runner, error)) error {
	return c.withService(ctx, func(svc *usecase.Service, _ zerolog.Logger) error {
		r, err := start(svc)
		if err != nil {
			return err
		}

		e, err := c.run(ctx, r)
		if err != nil {
			return err
		}

		if result, ok := e.Result.(*authentities.Result); ok {
			c.console.Printf("Session saved for %s", result.DisplayName)
		}
		return nil
	})
}

func (c *CLI) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *usecase.Service, _ zerolog.Logger) error {
				if !svc.LoggedIn() {
					c.console.Printf("Not logged in")
					return nil
				}
				if err := svc.Logout(); err != nil {
					return err
				}
				c.console.Printf("Logged out")
				return nil
			})
		},
	}
}

func (c *CLI) chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List conversations of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *usecase.Service, _ zerolog.Logger) error {
				r, err := svc.Chats()
				if err != nil {
					return err
				}

				e, err := c.run(cmd.Context(), r)
				if err != nil {
					return err
				}

				chats, _ := e.Result.([]domain.Chat)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTYPE\tTITLE")
				for _, ch := range chats {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", ch.ID, ch.Kind, ch.Title)
				}
				return tw.Flush()
			})
		},
	}
}

func (c *CLI) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <target>",
		Short: "Show details of a conversation (@username, t.me link or ID)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.ParseTarget(args[0])
			if err != nil {
				return pkgerrors.NewValidationError(err.Error())
			}

			return c.withService(cmd.Context(), func(svc *usecase.Service, _ zerolog.Logger) error {
				r, err := svc.Profile(target)
				if err != nil {
					return err
				}

				e, err := c.run(cmd.Context(), r)
				if err != nil {
					return err
				}

				p, _ := e.Result.(domain.Profile)
				printProfile(cmd, p)
				return nil
			})
		},
	}
}

func printProfile(cmd *cobra.Command, p domain.Profile) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	if p.Username != "" {
		fmt.Fprintf(tw, "Username:\t@%s\n", p.Username)
	}
	fmt.Fprintf(tw, "Type:\t%s\n", p.Type)
	if p.MembersCount != nil {
		fmt.Fprintf(tw, "Members:\t%d\n", *p.MembersCount)
	}
	if p.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	}
	_ = tw.Flush()
}

func (c *CLI) downloadCmd() *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download <target>",
		Short: "Download media from a conversation (@username, t.me link or ID)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.ParseTarget(args[0])
			if err != nil {
				return pkgerrors.NewValidationError(err.Error())
			}
			opts.limitSet = cmd.Flags().Changed("limit")
			opts.skipSet = cmd.Flags().Changed("skip-existing")

			return c.withService(cmd.Context(), func(svc *usecase.Service, logger zerolog.Logger) error {
				cfg, err := opts.jobConfig(target, svc.DefaultJobConfig())
				if err != nil {
					return err
				}

				r, err := svc.Download(cfg)
				if err != nil {
					return err
				}
				logger.Debug().Str("task_id", r.ID()).Msg("Download started")

				e, err := c.run(cmd.Context(), r)
				if snap, ok := e.Result.(entities.Snapshot); ok {
					c.printSummary(snap)
				}
				return err
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.types, "types", "t", []string{"all"}, "Media kinds: all, photo, video, audio, document, voice, sticker, gif, video_note")
	flags.StringVar(&opts.start, "start", "", "Oldest message date (YYYY-MM-DD or RFC 3339)")
	flags.StringVar(&opts.end, "end", "", "Newest message date (YYYY-MM-DD or RFC 3339)")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "Stop after this many matching messages")
	flags.StringVarP(&opts.dir, "dir", "o", "", "Download folder (overrides DOWNLOAD_DIR)")
	flags.StringVarP(&opts.grouping, "grouping", "g", "", "Folder layout: flat, by-chat, by-chat-and-type, by-chat-and-date")
	flags.BoolVar(&opts.skipExisting, "skip-existing", true, "Skip files already downloaded with the same size")

	return cmd
}

func (c *CLI) printSummary(s entities.Snapshot) {
	c.console.Printf("%s: %d saved, %d skipped, %d failed, %d not matching (%s in %s)",
		s.State, s.Saved, s.Skipped, s.Failed, s.Unmatched,
		business.FormatSize(s.Bytes), s.Duration.Round(100*time.Millisecond))
}
