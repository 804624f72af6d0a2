package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/services"
)

// setup wires the ledger service for one command invocation. Events are
// published when AMQP_URL is set, so the mirror worker sees CLI
// mutations too.
func setup() (*services.LedgerService, func()) {
	cli.LoadEnvFile()

	// Keep command output clean; only warnings and errors are logged.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.OpenLedger(logger, cfg)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		}
	}

	service := services.NewLedgerService(store, amqpClient)
	return service, func() {
		if err := service.Close(); err != nil {
			logger.Warn("Close failed", "error", err)
		}
	}
}

var (
	addName        string
	addAmount      string
	addCategory    string
	addType        string
	addDescription string
	addTags        string
	addDate        string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		cents, err := core.ParseDecimalToCents(addAmount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		category, err := core.ParseCategory(addCategory)
		if err != nil {
			return err
		}
		txType, err := core.ParseTransactionType(addType)
		if err != nil {
			return err
		}

		var date core.Date
		if addDate != "" {
			date, err = core.ParseDate(addDate)
			if err != nil {
				return err
			}
		}

		var tags []string
		for _, tag := range strings.Split(addTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}

		service, cleanup := setup()
		defer cleanup()

		tx, err := service.AddTransaction(cmd.Context(), ledger.AddParams{
			Name:        addName,
			Amount:      core.Money{Cents: cents},
			Category:    category,
			Type:        txType,
			Description: addDescription,
			Tags:        tags,
			Date:        date,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Recorded %s: %s $%s (%s, %s) on %s\n",
			tx.ID, tx.Name, tx.Amount.String(), tx.Category, tx.Type, tx.Date)
		return nil
	},
}

var (
	listCategory string
	listFrom     string
	listTo       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, optionally filtered by category or date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup := setup()
		defer cleanup()

		var txs []core.Transaction
		switch {
		case listCategory != "":
			category, err := core.ParseCategory(listCategory)
			if err != nil {
				return err
			}
			txs = service.ByCategory(category)
		case listFrom != "" || listTo != "":
			if listFrom == "" || listTo == "" {
				return fmt.Errorf("both --from and --to are required for a date range")
			}
			start, err := core.ParseDate(listFrom)
			if err != nil {
				return err
			}
			end, err := core.ParseDate(listTo)
			if err != nil {
				return err
			}
			txs = service.ByDateRange(start, end)
		default:
			txs = service.Transactions()
		}

		if len(txs) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-10s %-12s %-20s %10s  %-20s %-8s\n", "ID", "DATE", "NAME", "AMOUNT", "CATEGORY", "TYPE")
		for _, tx := range txs {
			fmt.Printf("%-10s %-12s %-20s %10s  %-20s %-8s\n",
				tx.ID, tx.Date, truncate(tx.Name, 20), "$"+tx.Amount.String(), tx.Category, tx.Type)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a transaction by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup := setup()
		defer cleanup()

		removed, err := service.RemoveTransaction(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no transaction with id %s", args[0])
		}
		fmt.Printf("Removed transaction %s\n", args[0])
		return nil
	},
}

var (
	summaryYear  int
	summaryMonth int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a monthly summary with per-category expense totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if summaryYear == 0 {
			summaryYear = now.Year()
		}
		if summaryMonth == 0 {
			summaryMonth = int(now.Month())
		}

		service, cleanup := setup()
		defer cleanup()

		summary, err := service.MonthlySummary(summaryYear, summaryMonth)
		if err != nil {
			return err
		}

		fmt.Printf("Summary for %04d-%02d (%d transactions)\n", summary.Year, summary.Month, summary.TransactionCount)
		fmt.Printf("  Income:   $%s\n", summary.Income.String())
		fmt.Printf("  Expenses: $%s\n", summary.Expenses.String())
		fmt.Printf("  Balance:  $%s\n", summary.Balance.String())
		if len(summary.CategoryTotals) > 0 {
			fmt.Println("  By category:")
			for _, ca := range summary.CategoryTotals {
				fmt.Printf("    %-22s $%s\n", ca.Category, ca.Amount.String())
			}
		}
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show total income, total expenses and the running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup := setup()
		defer cleanup()

		fmt.Printf("Income:   $%s\n", service.TotalIncome().String())
		fmt.Printf("Expenses: $%s\n", service.TotalExpenses().String())
		fmt.Printf("Balance:  $%s\n", service.Balance().String())
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the available categories",
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range core.Categories() {
			fmt.Println(c)
		}
	},
}

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all transactions to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup := setup()
		defer cleanup()

		f, err := os.Create(exportPath)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		if err := ledger.WriteCSV(f, service.Transactions()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("Exported %d transactions to %s\n", len(service.Transactions()), exportPath)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "transaction name (required)")
	addCmd.Flags().StringVarP(&addAmount, "amount", "a", "", "amount, e.g. 12.50 (required)")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category label (required)")
	addCmd.Flags().StringVarP(&addType, "type", "t", "expense", "expense or income")
	addCmd.Flags().StringVar(&addDescription, "description", "", "free-form description")
	addCmd.Flags().StringVar(&addTags, "tags", "", "comma-separated tags")
	addCmd.Flags().StringVar(&addDate, "date", "", "date as YYYY-MM-DD (default today)")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().StringVar(&listFrom, "from", "", "range start as YYYY-MM-DD")
	listCmd.Flags().StringVar(&listTo, "to", "", "range end as YYYY-MM-DD")

	summaryCmd.Flags().IntVarP(&summaryYear, "year", "y", 0, "year (default current)")
	summaryCmd.Flags().IntVarP(&summaryMonth, "month", "m", 0, "month 1-12 (default current)")

	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "transactions.csv", "output file path")
}
