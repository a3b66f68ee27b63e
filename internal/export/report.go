// Package export dumps every stored transaction to files and prints a
// short spending summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dvloznov/finance-bot/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	dateFormat = "2006-01-02 15:04:05"
	xlsxSheet  = "Sheet1"
)

// Columns is the header shared by the CSV and XLSX reports.
var Columns = []string{"id", "user_id", "amount", "currency", "category", "description", "type", "date", "raw_text"}

func recordFields(r domain.TransactionRecord) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.UserID,
		strconv.FormatFloat(r.Amount, 'f', -1, 64),
		r.Currency,
		r.Category,
		r.Description,
		string(r.Type),
		r.Date.UTC().Format(dateFormat),
		r.RawText,
	}
}

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []domain.TransactionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(recordFields(r)); err != nil {
			return fmt.Errorf("WriteCSV: record %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// WriteXLSX writes the records as a workbook with a single sheet. Amounts
// and ids are stored as numbers.
func WriteXLSX(w io.Writer, records []domain.TransactionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("WriteXLSX: header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("WriteXLSX: cell name: %w", err)
		}
		row := []interface{}{
			r.ID,
			r.UserID,
			r.Amount,
			r.Currency,
			r.Category,
			r.Description,
			string(r.Type),
			r.Date.UTC().Format(dateFormat),
			r.RawText,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("WriteXLSX: record %d: %w", r.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("WriteXLSX: write: %w", err)
	}
	return nil
}

// Summarize totals every record and groups by category, largest first.
// Types are not netted: income counts toward the total like any amount.
func Summarize(records []domain.TransactionRecord) domain.UserStats {
	byCategory := map[string]float64{}
	stats := domain.UserStats{Categories: []domain.CategoryTotal{}}
	for _, r := range records {
		stats.Total += r.Amount
		byCategory[r.Category] += r.Amount
	}
	for cat, total := range byCategory {
		stats.Categories = append(stats.Categories, domain.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		a, b := stats.Categories[i], stats.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})
	return stats
}

// Tail returns the last n records.
func Tail(records []domain.TransactionRecord, n int) []domain.TransactionRecord {
	if n <= 0 {
		return nil
	}
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// PrintSummary writes the console report: total, per-category breakdown and
// the latest records.
func PrintSummary(w io.Writer, stats domain.UserStats, latest []domain.TransactionRecord) {
	rule := "=============================="
	fmt.Fprintf(w, "\n%s\n 💰 SPENDING SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "TOTAL: %.2f €\n\n", stats.Total)
	fmt.Fprintln(w, "BY CATEGORY:")
	for _, c := range stats.Categories {
		fmt.Fprintf(w, "- %s: %.2f €\n", c.Category, c.Total)
	}
	fmt.Fprintf(w, "%s\n", rule)

	if len(latest) == 0 {
		return
	}
	fmt.Fprintln(w, "\nLatest transactions:")
	for _, r := range latest {
		fmt.Fprintf(w, "%5d  %s  %10.2f  %-8s %-15s %s\n",
			r.ID, r.Date.UTC().Format(dateFormat), r.Amount, r.Type, r.Category, r.Description)
	}
}
