package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stock-hunter/config"
	"stock-hunter/internal/importer"
	"stock-hunter/internal/repository"
	"stock-hunter/internal/screener"
	"stock-hunter/internal/service"
	"stock-hunter/pkg/cache"
	"stock-hunter/pkg/logger"
	"stock-hunter/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	screenFile    string
	screenSymbols []string
	screenOutput  string
)

// screenCmd runs a one-shot screen from the command line without needing the
// database or the API server.
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a one-shot trend-template screen",
	Run:   RunScreenCommand,
}

func init() {
	screenCmd.Flags().StringVarP(&screenFile, "file", "f", "", "CSV/TSV/XLSX file with symbols in the first column")
	screenCmd.Flags().StringSliceVarP(&screenSymbols, "symbols", "s", nil, "comma-separated list of symbols")
	screenCmd.Flags().StringVarP(&screenOutput, "output", "o", "", "write the report as CSV to this path")
}

func RunScreenCommand(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	symbols := utils.DedupSymbols(screenSymbols)
	if screenFile != "" {
		f, err := os.Open(screenFile)
		if err != nil {
			log.Fatalf("Failed to open symbol file: %v", err)
		}
		fromFile, err := importer.ReadSymbols(screenFile, f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to read symbol file: %v", err)
		}
		symbols = utils.DedupSymbols(append(symbols, fromFile...))
	}

	if len(symbols) == 0 {
		log.Fatal("No symbols given: use --symbols or --file")
	}

	source := repository.NewYahooFinanceRepository(cfg, logr)
	orchestrator := screener.NewOrchestrator(cfg, logr, source)
	screenService := service.NewScreenService(cfg, logr, orchestrator, nil,
		cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval))

	report, err := screenService.Screen(ctx, symbols)
	if err != nil {
		log.Fatalf("Screen failed: %v", err)
	}

	for _, row := range report.Flatten() {
		if row.Error != "" {
			fmt.Printf("%-8s ERROR  %s\n", row.Symbol, row.Error)
			continue
		}
		status := "FAIL"
		if row.Passed {
			status = "PASS"
		}
		detail := ""
		if len(row.FailReasons) > 0 {
			detail = " | " + strings.Join(row.FailReasons, "; ")
		}
		fmt.Printf("%-8s %s   %d/%d  RS %2d (%s)%s\n",
			row.Symbol, status, row.Score, row.MaxScore, row.RSRating, row.RSDescription, detail)
	}
	fmt.Printf("\nRequested %d, succeeded %d, failed %d\n",
		report.TotalRequested, report.TotalSucceeded, report.TotalFailed)

	if screenOutput != "" {
		out, err := os.Create(screenOutput)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer out.Close()
		if err := screenService.WriteCSV(report, out); err != nil {
			log.Fatalf("Failed to write CSV report: %v", err)
		}
		fmt.Printf("Report written to %s\n", screenOutput)
	}
}
