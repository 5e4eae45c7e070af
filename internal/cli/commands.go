package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/session/dto"
	settingDto "github.com/fekuna/omnipos-pricing-service/internal/setting/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the database schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := database.Migrate(cmd.Context(), env.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", env.DB.DriverName())
			return nil
		},
	}
}

func NewRecomputeCommand(opts *RootOptions) *cobra.Command {
	var sessionID, variantID string

	cmd := &cobra.Command{
		Use:          "recompute",
		Short:        "Reprice a session, or one variant of it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			var prices []model.DailyPrice
			if variantID != "" {
				dp, err := env.UseCases.Pricing.Recompute(cmd.Context(), sessionID, variantID)
				if err != nil {
					return err
				}
				prices = []model.DailyPrice{*dp}
			} else {
				prices, err = env.UseCases.Pricing.RecomputeAll(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
			}

			return opts.print(cmd.OutOrStdout(), prices, func(w io.Writer) {
				for _, dp := range prices {
					fmt.Fprintf(w, "%s\t%s\t%s\n", dp.VariantID, dp.Status, formatPrice(dp.SalePrice))
				}
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	cmd.Flags().StringVar(&variantID, "variant", "", "variant id (default: every purchased variant)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func NewSettingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the pricing parameters",
	}

	printResult := func(cmd *cobra.Command, res *settingDto.PricingSettingsResult) error {
		return opts.print(cmd.OutOrStdout(), res, func(w io.Writer) {
			fmt.Fprintf(w, "margin_pct\t%s\nround_step\t%s\n", res.MarginPct, res.RoundStep)
			if res.RecomputedSessionID != nil {
				fmt.Fprintf(w, "recomputed\t%s (%d variants)\n", *res.RecomputedSessionID, res.RecomputedVariants)
			}
		})
	}

	show := &cobra.Command{
		Use:          "show",
		Short:        "Print margin and round step",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			cfg, err := env.UseCases.Setting.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, &settingDto.PricingSettingsResult{MarginPct: cfg.MarginPct, RoundStep: cfg.RoundStep})
		},
	}

	margin := &cobra.Command{
		Use:          "margin <value>",
		Short:        "Set the margin as a fraction (0.35) or a percentage (35)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid margin %q: %w", args[0], err)
			}
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := env.UseCases.Setting.SetMargin(cmd.Context(), v)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}

	roundStep := &cobra.Command{
		Use:          "round-step <value>",
		Short:        "Set the step sale prices are rounded up to",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid round step %q: %w", args[0], err)
			}
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := env.UseCases.Setting.SetRoundStep(cmd.Context(), v)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}

	cmd.AddCommand(show, margin, roundStep)
	return cmd
}

func NewSessionCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage purchase sessions",
	}

	printSession := func(cmd *cobra.Command, s *model.PurchaseSession) error {
		return opts.print(cmd.OutOrStdout(), s, func(w io.Writer) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.DateKey, s.Status)
		})
	}

	var dateKey string
	create := &cobra.Command{
		Use:          "create",
		Short:        "Create a PLANNING session (default date: tomorrow)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			s, err := env.UseCases.Session.Create(cmd.Context(), &dto.CreateSessionInput{DateKey: dateKey, UserID: "pricingctl"})
			if err != nil {
				return err
			}
			return printSession(cmd, s)
		},
	}
	create.Flags().StringVar(&dateKey, "date", "", "date key YYYY-MM-DD")

	transition := func(use, short string, run func(env *Env, cmd *cobra.Command, id string) (*model.PurchaseSession, error)) *cobra.Command {
		return &cobra.Command{
			Use:          use + " <session-id>",
			Short:        short,
			Args:         cobra.ExactArgs(1),
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := opts.env(cmd.Context())
				if err != nil {
					return err
				}
				defer env.Close()

				s, err := run(env, cmd, args[0])
				if err != nil {
					return err
				}
				return printSession(cmd, s)
			},
		}
	}

	open := transition("open", "Open a PLANNING session for purchasing", func(env *Env, cmd *cobra.Command, id string) (*model.PurchaseSession, error) {
		return env.UseCases.Session.Open(cmd.Context(), id)
	})
	closeCmd := transition("close", "Reprice and close an OPEN session", func(env *Env, cmd *cobra.Command, id string) (*model.PurchaseSession, error) {
		return env.UseCases.Session.Close(cmd.Context(), id)
	})

	cmd.AddCommand(create, open, closeCmd)
	return cmd
}

func NewExportCommand(opts *RootOptions) *cobra.Command {
	var sessionID, output string

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write a session's price board to an xlsx file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.env(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := env.UseCases.Pricing.ExportBoard(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if output == "" {
				output = "prices_" + sessionID + ".xlsx"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func formatPrice(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.String()
}
