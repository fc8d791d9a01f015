package services

import (
	"bytes"
	"fmt"
	"lexdesk/models"
	"lexdesk/services/autoreply"
	"lexdesk/services/i18n"

	"github.com/xuri/excelize/v2"
)

// ExportTranscript writes a case's messages (case and hearing conversations)
// to a single-sheet workbook, oldest first.
func ExportTranscript(caseRecord *models.Case, messages []models.Message, lang string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.Translate(lang, "export.sheet")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	wrapStyle, _ := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})

	f.SetCellValue(sheet, "A1", i18n.Translate(lang, "export.title", map[string]interface{}{"caseNumber": caseRecord.CaseNumber}))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	headers := []string{"date", "sender", "role", "scope", "auto_reply", "content"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, i18n.Translate(lang, "export.columns."+h))
	}
	f.SetCellStyle(sheet, "A3", "F3", headerStyle)

	formatter := autoreply.NewFormatter(lang, caseRecord.Firm.Location(), caseRecord.Firm.CurrencyCode())
	for i, m := range messages {
		row := i + 4
		sender, role := "", ""
		if m.Sender != nil {
			sender, role = m.Sender.Name, m.Sender.Role
		}
		scope := i18n.Translate(lang, "export.scope_case")
		if m.HearingID != nil {
			scope = i18n.Translate(lang, "export.scope_hearing")
		}
		values := []interface{}{
			formatter.DateTime(m.CreatedAt),
			sender,
			role,
			scope,
			m.AutoReplyCategory,
			m.Content,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		contentCell, _ := excelize.CoordinatesToCellName(6, row)
		f.SetCellStyle(sheet, contentCell, contentCell, wrapStyle)
	}

	f.SetColWidth(sheet, "A", "A", 32)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "D", "E", 16)
	f.SetColWidth(sheet, "F", "F", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
