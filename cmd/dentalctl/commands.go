package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/internal/service/budget"
	"github.com/jwalitptl/dental-admin/pkg/session"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

// loadConfig is swapped in tests
var loadConfig = config.Load

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget (presupuesto) tools",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Render a budget JSON file to PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			out, _ := cmd.Flags().GetString("out")
			fromBackend, _ := cmd.Flags().GetBool("backend")

			b, err := readBudget(file, fromBackend)
			if err != nil {
				return err
			}

			opts := budget.PDFOptions{Compress: true}
			if cfg, err := loadConfig(); err == nil {
				opts.ClinicName = cfg.PDF.ClinicName
				opts.LogoPath = cfg.PDF.LogoPath
				opts.Currency = cfg.PDF.Currency
			}

			svc := budget.NewService(nil, opts, nil, activity.Nop{}, zerolog.Nop())
			doc, err := svc.Export(b)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(out, doc.Filename)
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}

			t := b.Totals()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tTotal %s\tPagado %s\tPor pagar %s\n", path, opts.Money(t.Total), opts.Money(t.Paid), opts.Money(t.Owed))
			return nil
		},
	}
	exportCmd.Flags().String("file", "", "Budget JSON file")
	exportCmd.Flags().String("out", ".", "Output directory")
	exportCmd.Flags().Bool("backend", false, "File uses the backend field names")
	_ = exportCmd.MarkFlagRequired("file")
	cmd.AddCommand(exportCmd)

	return cmd
}

func readBudget(file string, fromBackend bool) (*model.Budget, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read budget: %w", err)
	}
	if fromBackend {
		var bb model.BackendBudget
		if err := json.Unmarshal(raw, &bb); err != nil {
			return nil, fmt.Errorf("decode backend budget: %w", err)
		}
		return model.BudgetFromBackend(&bb), nil
	}
	var b model.Budget
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode budget: %w", err)
	}
	return &b, nil
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the time options of a business-hours window",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			which, _ := cmd.Flags().GetString("window")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var w timeslot.Window
			switch which {
			case "calendar":
				w, err = cfg.Hours.CalendarWindow()
			case "reschedule":
				w, err = cfg.Hours.RescheduleWindow()
			default:
				return fmt.Errorf("unknown window %q (calendar|reschedule)", which)
			}
			if err != nil {
				return err
			}

			options := w.StartOptions()
			label := "start"
			if start != "" {
				if options, err = w.EndOptions(start); err != nil {
					return err
				}
				label = "end after " + start
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s window %s, %s options:\n%s\n", which, w, label, strings.Join(options, " "))
			return nil
		},
	}
	cmd.Flags().String("start", "", "Start time (HH:MM); lists valid end times")
	cmd.Flags().String("window", "reschedule", "calendar or reschedule")
	return cmd
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session cookie tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "decode <cookie>",
		Short: "Verify a session cookie and print its user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			codec, err := session.NewCodec(cfg.Secrets.SessionSecret, session.Options{
				CookieName: cfg.Session.CookieName,
				TTL:        cfg.Session.TTL,
			})
			if err != nil {
				return err
			}

			s, err := codec.Verify(strings.TrimPrefix(args[0], cfg.Session.CookieName+"="))
			if err != nil {
				return err
			}
			out := struct {
				User      session.User `json:"user"`
				ExpiresAt time.Time    `json:"expires_at"`
				HasToken  bool         `json:"has_backend_token"`
			}{s.User, s.ExpiresAt, s.Token != ""}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	})
	return cmd
}
