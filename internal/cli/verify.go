package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"execcheck/pkg/core/store"
	"execcheck/pkg/core/verify"
	"execcheck/pkg/models"
)

var (
	verifyTicker string
	verifyFY     int
	verifyFQ     int
	verifySave   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <claims.json>",
	Short: "Verify extracted claims against EDGAR filings",
	Long: `Reads a JSON array of extracted claims and checks each one against
the reconciled filing data for the given fiscal quarter. Results are
printed as JSON; --save also writes them to the configured database.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifyTicker == "" || verifyFY == 0 || verifyFQ == 0 {
			return fmt.Errorf("--ticker, --fy and --fq are required")
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read claims file: %w", err)
		}
		var claims []models.ExtractedClaim
		if err := json.Unmarshal(raw, &claims); err != nil {
			return fmt.Errorf("parse claims file: %w", err)
		}
		for i := range claims {
			claims[i].EnsureID()
		}

		a := getApp()
		if _, err := a.Directory.Lookup(verifyTicker); err != nil {
			return err
		}

		results, assessments, tally := a.Engine.VerifyAll(cmd.Context(), claims, verifyTicker, verifyFY, verifyFQ)

		if verifySave {
			dsn := a.Config.Database.DSN
			if dsn == "" {
				return fmt.Errorf("--save requires database.dsn (or EXECCHECK_DATABASE_DSN)")
			}
			db, err := store.New(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveRun(cmd.Context(), verifyTicker, verifyFY, verifyFQ, claims, results, assessments); err != nil {
				return err
			}
			a.Log.Info().Str("ticker", verifyTicker).Int("fy", verifyFY).Int("fq", verifyFQ).Msg("verification run saved")
		}

		out := struct {
			Ticker        string                        `json:"ticker"`
			FiscalYear    int                           `json:"fiscal_year"`
			FiscalQuarter int                           `json:"fiscal_quarter"`
			Tally         verify.Tally                  `json:"tally"`
			Results       []models.VerificationResult   `json:"results"`
			Assessments   []models.MisleadingAssessment `json:"assessments"`
		}{verifyTicker, verifyFY, verifyFQ, tally, results, assessments}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyTicker, "ticker", "", "Company ticker the claims refer to")
	verifyCmd.Flags().IntVar(&verifyFY, "fy", 0, "Fiscal year of the earnings call")
	verifyCmd.Flags().IntVar(&verifyFQ, "fq", 0, "Fiscal quarter of the earnings call (1-4)")
	verifyCmd.Flags().BoolVar(&verifySave, "save", false, "Persist the run to the configured database")
}
