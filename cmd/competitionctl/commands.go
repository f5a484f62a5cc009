package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Dosada05/competition-engine/config"
	"github.com/Dosada05/competition-engine/db"
	"github.com/Dosada05/competition-engine/middleware"
	"github.com/Dosada05/competition-engine/models"
)

var (
	previewParticipants int
	previewConsolation  bool
	previewFormat       string
	previewLegs         int

	tokenUserID int
	tokenRole   string
	tokenTTL    time.Duration
	tokenSecret string
)

func init() {
	previewCmd.Flags().IntVarP(&previewParticipants, "participants", "n", 8, "Number of seeded clubs")
	previewCmd.Flags().BoolVar(&previewConsolation, "consolation", false, "Add a third-place match")
	previewCmd.Flags().StringVar(&previewFormat, "format", string(models.FormatSingleElimination), "single_elimination or round_robin")
	previewCmd.Flags().IntVar(&previewLegs, "legs", 1, "Round-robin legs (1 or 2)")

	tokenCmd.Flags().IntVar(&tokenUserID, "user", 1, "User ID placed in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(models.RoleOrganizer), "admin, organizer or viewer")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "Token lifetime")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Signing secret (defaults to JWT_SECRET_KEY)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(bracketCmd)
	rootCmd.AddCommand(championCmd)
	rootCmd.AddCommand(healthCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
		return db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview-bracket",
	Short: "Print the matches a build would create, without a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := previewBracket(cmd.Context(), previewFormat, previewParticipants, previewConsolation, previewLegs)
		if err != nil {
			return err
		}
		return printPreview(cmd.OutOrStdout(), matches)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed operator token for the mutating API routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := tokenSecret
		if secret == "" {
			_ = godotenv.Load()
			secret = os.Getenv("JWT_SECRET_KEY")
		}
		if secret == "" {
			return fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET_KEY")
		}

		role := models.UserRole(tokenRole)
		switch role {
		case models.RoleAdmin, models.RoleOrganizer, models.RoleViewer:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		if !role.CanManageCompetitions() {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: this role cannot call the mutating routes")
		}

		token, err := middleware.IssueToken(secret, tokenUserID, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings <competition-id>",
	Short: "Show the league table of a competition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(cmd, "/competitions/"+args[0]+"/standings")
	},
}

var bracketCmd = &cobra.Command{
	Use:   "bracket <competition-id>",
	Short: "Show the bracket view of a competition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(cmd, "/competitions/"+args[0]+"/bracket")
	},
}

var championCmd = &cobra.Command{
	Use:   "champion <competition-id>",
	Short: "Show the champion of a completed competition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(cmd, "/competitions/"+args[0]+"/champion")
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(cmd, "/healthz")
	},
}

func performGetRequest(cmd *cobra.Command, endpoint string) error {
	url := host + endpoint
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status Code: %d\n", resp.StatusCode)
	fmt.Fprintln(out, string(body))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned %s", endpoint, resp.Status)
	}
	return nil
}
