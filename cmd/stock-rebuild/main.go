// stock-rebuild recomputes cached variant counters from the stock ledger.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/stock-rebuild [-variant-id N] [-apply]
//
// Without -apply nothing is written; mismatches are only printed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/sirupsen/logrus"
)

func main() {
	variantID := flag.Int("variant-id", 0, "Optional: rebuild a single product variant")
	apply := flag.Bool("apply", false, "Write the ledger projection into mismatched counters")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := config.GetLogger()

	var scope *int
	if *variantID > 0 {
		scope = variantID
	}

	checks, err := models.RebuildVariantStock(context.Background(), scope, *apply)
	mismatches := 0
	for _, check := range checks {
		if check.InSync() {
			continue
		}
		mismatches++
		fmt.Printf("variant=%d product=%d cached=%d ledger_in=%d ledger_out=%d projected=%d diff=%d applied=%t\n",
			check.VariantId, check.ProductId, check.Cached,
			check.Projection.In, check.Projection.Out, check.Projection.Raw,
			check.Difference(), check.Applied)
		if check.Projection.IsNegative() {
			logger.WithFields(logrus.Fields{
				"variant_id": check.VariantId,
				"projected":  check.Projection.Raw,
			}).Warn("ledger projects negative stock; counter floored at 0")
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("checked %d variants, %d mismatched\n", len(checks), mismatches)
	if mismatches > 0 && !*apply {
		fmt.Println("dry run; rerun with -apply to repair")
	}
}
