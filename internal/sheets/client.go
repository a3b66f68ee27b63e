package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// SpreadsheetAPI is the narrow surface of the Sheets API the mirror needs.
type SpreadsheetAPI interface {
	// TabTitles lists the titles of every tab in the spreadsheet.
	TabTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	// AddTab creates a tab with the given grid size.
	AddTab(ctx context.Context, spreadsheetID, title string, rows, cols int64) error
	// AppendRow appends one row after the last non-empty row of the tab.
	AppendRow(ctx context.Context, spreadsheetID, title string, row []interface{}) error
}

// ClientFactory builds a SpreadsheetAPI from service-account JSON.
type ClientFactory func(ctx context.Context, credentialsJSON []byte) (SpreadsheetAPI, error)

// GoogleClient implements SpreadsheetAPI on top of sheets/v4.
type GoogleClient struct {
	svc *gsheets.Service
}

// NewGoogleClient is the default ClientFactory.
func NewGoogleClient(ctx context.Context, credentialsJSON []byte) (SpreadsheetAPI, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("NewGoogleClient: creating sheets service: %w", err)
	}
	return &GoogleClient{svc: svc}, nil
}

func (c *GoogleClient) TabTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("TabTitles: get spreadsheet: %w", err)
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (c *GoogleClient) AddTab(ctx context.Context, spreadsheetID, title string, rows, cols int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("AddTab: batch update: %w", err)
	}
	return nil
}

func (c *GoogleClient) AppendRow(ctx context.Context, spreadsheetID, title string, row []interface{}) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, a1Range(title), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("AppendRow: append values: %w", err)
	}
	return nil
}

// a1Range quotes a tab title for A1 notation; titles contain spaces.
func a1Range(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A1"
}
