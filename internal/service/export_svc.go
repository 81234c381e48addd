package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tgo/chariott/internal/repository"
)

const (
	interactionsSheet = "Interactions"
	summarySheet      = "Summary"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var interactionHeader = []interface{}{
	"ID", "Timestamp", "User ID", "Query", "Response Type", "Response", "Sources", "Success",
}

var summaryHeader = []interface{}{"User ID", "Interactions", "Successful", "Success Rate"}

type ExportService struct {
	interactions *repository.InteractionRepository
}

func NewExportService(interactions *repository.InteractionRepository) *ExportService {
	return &ExportService{interactions: interactions}
}

// InteractionsXLSX renders the RAG interactions of userID, or of everyone
// when userID is empty, as a workbook with a detail and a summary sheet.
func (s *ExportService) InteractionsXLSX(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.interactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, upstream("list interactions", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", interactionsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, interactionsSheet, 1, interactionHeader); err != nil {
		return nil, err
	}
	type tally struct{ total, ok int }
	perUser := make(map[string]*tally)
	for i, in := range rows {
		err := writeRow(f, interactionsSheet, i+2, []interface{}{
			in.ID,
			in.Timestamp.UTC().Format(time.RFC3339),
			in.UserID,
			in.UserQuery,
			string(in.ResponseType),
			in.ResponseContent,
			strings.Join(in.Sources, ", "),
			in.Success,
		})
		if err != nil {
			return nil, err
		}
		t := perUser[in.UserID]
		if t == nil {
			t = &tally{}
			perUser[in.UserID] = t
		}
		t.total++
		if in.Success {
			t.ok++
		}
	}

	users := make([]string, 0, len(perUser))
	for u := range perUser {
		users = append(users, u)
	}
	sort.Strings(users)

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return nil, err
	}
	for i, u := range users {
		t := perUser[u]
		rate := float64(t.ok) / float64(t.total)
		if err := writeRow(f, summarySheet, i+2, []interface{}{u, t.total, t.ok, rate}); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{interactionsSheet, summarySheet} {
		if err := f.SetCellStyle(sheet, "A1", "H1", bold); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "H", 22); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
