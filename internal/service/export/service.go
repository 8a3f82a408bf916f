package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/health-api/internal/analytics"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

const (
	FormatXLSX = "xlsx"
	FormatJSON = "json"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeJSON = "application/json"
)

const (
	sheetWeight    = "Weight"
	sheetLabs      = "Lab Results"
	sheetRadiation = "Radiation"
	sheetReminders = "Reminders"
)

type ExportService interface {
	Export(ctx context.Context, format string, r *model.DateRange) (*File, error)
}

// File is one export ready to be downloaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Document is the JSON export.
type Document struct {
	ExportedAt time.Time            `json:"exportedAt"`
	DateRange  *model.DateRange     `json:"dateRange,omitempty"`
	Snapshot   *model.Snapshot      `json:"snapshot"`
	Metrics    model.DerivedMetrics `json:"metrics"`
}

type Service struct {
	snapshots *snapshot.Service
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(snapshots *snapshot.Service, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		snapshots: snapshots,
		metrics:   m,
		logger:    log.With("service", "export"),
		now:       time.Now,
	}
}

// Export builds a download of the records inside r in the given format.
func (s *Service) Export(ctx context.Context, format string, r *model.DateRange) (*File, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatJSON {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported export format %q", format), nil)
	}
	if err := r.Validate(); err != nil {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid date range: %v", err), err)
	}

	now := s.now()
	snap := snapshot.Scoped(s.snapshots.Build(ctx), r)
	name := fmt.Sprintf("health-export-%s.%s", now.UTC().Format(model.DateLayout), format)

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatXLSX:
		data, err = Workbook(snap)
		contentType = ContentTypeXLSX
	case FormatJSON:
		data, err = json.MarshalIndent(Document{
			ExportedAt: now.UTC(),
			DateRange:  nonZero(r),
			Snapshot:   snap,
			Metrics:    analytics.Summarize(snap, now),
		}, "", "  ")
		contentType = ContentTypeJSON
	}
	if err != nil {
		s.logger.Error(err, "export failed", "format", format)
		return nil, apperrors.NewInternal(err)
	}

	s.metrics.ObserveExport(format)
	return &File{Name: name, ContentType: contentType, Data: data}, nil
}

// Workbook writes the dated collections of snap as an XLSX workbook with one
// sheet per collection.
func Workbook(snap *model.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		widths  []float64
		rows    [][]interface{}
	}{
		{sheetWeight, []string{"Date", "Weight (kg)", "BMI", "Notes"}, []float64{12, 12, 8, 40}, weightRows(snap)},
		{sheetLabs, []string{"Date", "Test", "Hospital", "Item", "Value", "Unit", "Min Ref", "Max Ref", "Abnormal"}, []float64{12, 24, 20, 24, 10, 10, 10, 10, 10}, labRows(snap)},
		{sheetRadiation, []string{"Date", "Exam", "Body Part", "Effective Dose", "Unit"}, []float64{12, 24, 16, 14, 8}, radiationRows(snap)},
		{sheetReminders, []string{"Due", "Title", "Type", "Priority", "Status"}, []float64{12, 32, 16, 10, 12}, reminderRows(snap)},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}

		header := make([]interface{}, len(sh.headers))
		for j, h := range sh.headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
			return nil, fmt.Errorf("failed to write header of %s: %w", sh.name, err)
		}
		last, err := excelize.CoordinatesToCellName(len(sh.headers), 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		for j, w := range sh.widths {
			col, err := excelize.ColumnNumberToName(j + 1)
			if err != nil {
				return nil, fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := f.SetColWidth(sh.name, col, col, w); err != nil {
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}

		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			row := row
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write row %d of %s: %w", r+2, sh.name, err)
			}
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func weightRows(s *model.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(s.Profile.History))
	for _, h := range s.Profile.History {
		rows = append(rows, []interface{}{h.Date, h.Weight, h.BMI, h.Notes})
	}
	return rows
}

func labRows(s *model.Snapshot) [][]interface{} {
	var rows [][]interface{}
	for _, t := range s.LabResults {
		for _, it := range t.Items {
			abnormal := "No"
			if it.IsAbnormal {
				abnormal = "Yes"
			}
			rows = append(rows, []interface{}{
				t.Date, t.Type, t.Hospital, it.Name,
				cellValue(it.Value), it.Unit, cellValue(it.MinRef), cellValue(it.MaxRef),
				abnormal,
			})
		}
	}
	return rows
}

func radiationRows(s *model.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(s.RadiationRecords.Records))
	for _, r := range s.RadiationRecords.Records {
		rows = append(rows, []interface{}{r.Date, r.ExamType, r.BodyPart, r.EffectiveDose, r.DoseUnit})
	}
	return rows
}

func reminderRows(s *model.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(s.Reminders.Reminders))
	for _, r := range s.Reminders.Reminders {
		rows = append(rows, []interface{}{r.Due(), r.Title, r.Type, string(r.Priority), string(r.Status)})
	}
	return rows
}

// cellValue keeps numbers numeric so the sheet can chart them.
func cellValue(m model.Measure) interface{} {
	if m.Numeric {
		return m.Value
	}
	return m.String()
}

func nonZero(r *model.DateRange) *model.DateRange {
	if r.IsZero() {
		return nil
	}
	return r
}
