package export

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-bot/internal/domain"
)

const (
	transactionsTable = "transactions"
	insertBatchSize   = 500
)

// TransactionRow is one record in the warehouse transactions table.
type TransactionRow struct {
	TransactionID   int64               `bigquery:"transaction_id"`   // REQUIRED
	UserID          string              `bigquery:"user_id"`          // REQUIRED
	TransactionDate civil.Date          `bigquery:"transaction_date"` // REQUIRED
	Amount          float64             `bigquery:"amount"`           // REQUIRED FLOAT64
	Currency        string              `bigquery:"currency"`         // REQUIRED
	Category        string              `bigquery:"category"`         // REQUIRED
	Description     bigquery.NullString `bigquery:"description"`      // NULLABLE
	Type            string              `bigquery:"type"`             // REQUIRED
	RawText         bigquery.NullString `bigquery:"raw_text"`         // NULLABLE
	CreatedTS       time.Time           `bigquery:"created_ts"`       // REQUIRED
}

// RowInserter is the part of *bigquery.Inserter the loader uses.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// ToRow converts a stored record into a warehouse row.
func ToRow(r domain.TransactionRecord) *TransactionRow {
	return &TransactionRow{
		TransactionID:   r.ID,
		UserID:          r.UserID,
		TransactionDate: civil.DateOf(r.Date.UTC()),
		Amount:          r.Amount,
		Currency:        r.Currency,
		Category:        r.Category,
		Description:     bigquery.NullString{StringVal: r.Description, Valid: r.Description != ""},
		Type:            string(r.Type),
		RawText:         bigquery.NullString{StringVal: r.RawText, Valid: r.RawText != ""},
		CreatedTS:       r.Date.UTC(),
	}
}

// LoadWithInserter streams records in batches through ins.
func LoadWithInserter(ctx context.Context, ins RowInserter, records []domain.TransactionRecord) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		rows := make([]*TransactionRow, 0, end-start)
		for _, r := range records[start:end] {
			rows = append(rows, ToRow(r))
		}
		if err := ins.Put(ctx, rows); err != nil {
			return fmt.Errorf("LoadWithInserter: inserting rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// LoadToBigQuery inserts records into <project>.<dataset>.transactions.
func LoadToBigQuery(ctx context.Context, projectID, datasetID string, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("LoadToBigQuery: bigquery client: %w", err)
	}
	defer client.Close()

	ins := client.DatasetInProject(projectID, datasetID).Table(transactionsTable).Inserter()
	return LoadWithInserter(ctx, ins, records)
}
