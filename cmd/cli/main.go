package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	httpAdapter "github.com/iho/textileledger/internal/adapter/http"
	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/auth"
	"github.com/iho/textileledger/internal/infrastructure/config"
	"github.com/iho/textileledger/internal/infrastructure/logger"
	"github.com/iho/textileledger/internal/infrastructure/postgres"
)

var (
	baseURL  string
	timeout  time.Duration
	apiToken string
)

var errDiscrepancies = errors.New("balance discrepancies found")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "textilectl",
		Short:         "Textile ledger CLI tool",
		Long:          `A command line interface for operating the textile inventory ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("TEXTILE_TOKEN"), "Bearer token for the API")

	rootCmd.AddCommand(migrateCmd(), tokenCmd(), balanceCmd(), statementCmd(), reconcileCmd())
	return rootCmd
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	return logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			databaseURL = cfg.DatabaseURL
			if migrationsPath == "" {
				migrationsPath = cfg.MigrationsPath
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (defaults to the embedded set)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(databaseURL, migrationsPath, cliLogger(cmd))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(databaseURL, migrationsPath, cliLogger(cmd))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		id     string
		name   string
		role   string
		ttl    time.Duration
	)

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed operator token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			if strings.TrimSpace(name) == "" {
				return errors.New("--name is required")
			}
			r := domain.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if id == "" {
				id = name
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Actor{ID: id, Name: name, Role: r})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	issue.Flags().StringVar(&id, "id", "", "Operator ID (defaults to the name)")
	issue.Flags().StringVar(&name, "name", "", "Operator name recorded as created_by")
	issue.Flags().StringVar(&role, "role", string(domain.RoleOperator), "admin, operator or viewer")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	cmd := &cobra.Command{Use: "token", Short: "Operator tokens"}
	cmd.AddCommand(issue)
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <kind> <item-id>",
		Short: "Show the running balance of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			var balance dto.BalanceResponse
			path := fmt.Sprintf("/api/v1/%s/items/%s/balance", httpAdapter.KindSegment(kind), url.PathEscape(args[1]))
			if err := getJSON(cmd.Context(), path, &balance); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), balance)
			return nil
		},
	}
}

func statementCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "statement <kind> <item-id>",
		Short: "Download the spreadsheet statement of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s-%s.xlsx", kind, args[1])
			}

			path := fmt.Sprintf("/api/v1/%s/items/%s/statement.xlsx", httpAdapter.KindSegment(kind), url.PathEscape(args[1]))
			resp, err := doGet(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := io.Copy(f, resp.Body)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to <kind>-<item-id>.xlsx)")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Replay transactions and report balance drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/reconciliation"
			if kindFlag != "" {
				kind, err := parseKind(kindFlag)
				if err != nil {
					return err
				}
				path += "?kind=" + url.QueryEscape(string(kind))
			}

			var report dto.ReconciliationReportResponse
			if err := getJSON(cmd.Context(), path, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checked %d items, %d reconciled\n", report.TotalItems, report.ReconciledItems)
			if len(report.Discrepancies) == 0 {
				return nil
			}

			fmt.Fprintf(out, "%-26s %-10s %14s %14s\n", "ITEM", "KIND", "RECORDED", "CALCULATED")
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "%-26s %-10s %14s %14s\n",
					truncate(d.ItemID, 26), d.Kind, d.RecordedQuantity, d.CalculatedQuantity)
			}
			return errDiscrepancies
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Limit to one ledger: yarn, raw or warp_beam")
	return cmd
}

// parseKind accepts a ledger kind or its URL segment.
func parseKind(s string) (domain.ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yarn":
		return domain.ItemKindYarn, nil
	case "raw", "raw-material":
		return domain.ItemKindRaw, nil
	case "warp_beam", "warp-beam", "warp-beams", "beam":
		return domain.ItemKindWarpBeam, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, s)
}

func doGet(ctx context.Context, path string) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// getJSON fetches path and decodes the data field of the response envelope.
func getJSON(ctx context.Context, path string, data any) error {
	resp, err := doGet(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	env := dto.Envelope{Data: data}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var env dto.Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, env.Message)
	}
	return fmt.Errorf("api error (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
