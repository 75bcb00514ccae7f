package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/storage"
	"github.com/example/gyansetu/internal/utils"
)

var exportColumns = []string{
	"id", "full_name", "phone", "email", "date_of_birth", "address", "school_name", "board",
	"class_name", "payment_status", "payment_reference", "roll_number", "exam_center",
	"result_status", "document_url", "created_at",
}

// AdminHandler manages the admin control surface.
type AdminHandler struct {
	store  storage.Store
	logger *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(store storage.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// ListStudents returns one fixed-size page of applications, newest first,
// together with the global result-publish flag. Pages past the end return an
// empty data set with the same totalPages.
func (h *AdminHandler) ListStudents(c *fiber.Ctx) error {
	page := utils.ParsePage(c)

	students, total, err := h.store.ListStudents(c.Context(), page, utils.PageSize)
	if err != nil {
		return err
	}

	published, err := h.store.ResultPublished(c.Context())
	if err != nil {
		return err
	}

	if students == nil {
		students = []models.Student{}
	}

	return c.JSON(fiber.Map{
		"data":            students,
		"page":            page,
		"pageSize":        utils.PageSize,
		"total":           total,
		"totalPages":      utils.TotalPages(total, utils.PageSize),
		"resultPublished": published,
	})
}

type bulkAssignRequest struct {
	CSV string `json:"csv"`
}

// BulkAssign applies roll_number and exam_center from tabular text with a
// header row. Rows without an id are skipped. Both fields are always written
// for an applied row; a blank cell clears the column rather than keeping the
// old value.
func (h *AdminHandler) BulkAssign(c *fiber.Ctx) error {
	var req bulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	records, err := parseCSVRecords(req.CSV)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid csv payload")
	}

	updated := 0
	for _, record := range records {
		id := record["id"]
		if id == "" {
			continue
		}

		patch := map[string]any{
			"roll_number": nullableCell(record["roll_number"]),
			"exam_center": nullableCell(record["exam_center"]),
		}
		if err := h.store.PatchStudent(c.Context(), id, patch); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				h.logger.Warn("bulk assign row skipped, unknown id", zap.String("id", id))
				continue
			}
			return err
		}
		updated++
	}

	return c.JSON(fiber.Map{"updatedCount": updated})
}

type resultToggleRequest struct {
	IsPublished bool `json:"isPublished"`
}

// ResultToggle sets the global result-publish flag. Nothing is pushed to
// students; their dashboards refetch it.
func (h *AdminHandler) ResultToggle(c *fiber.Ctx) error {
	var req resultToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.store.SetResultPublished(c.Context(), req.IsPublished); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"isPublished": req.IsPublished})
}

// Export streams every application as a spreadsheet: Excel-flavored XML by
// default, plain CSV with ?format=csv.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	students, err := h.store.AllStudents(c.Context())
	if err != nil {
		return err
	}

	if c.Query("format") == "csv" {
		return h.exportCSV(c, students)
	}
	return h.exportExcelXML(c, students)
}

func (h *AdminHandler) exportCSV(c *fiber.Ctx, students []models.Student) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="students-export-%d.csv"`, time.Now().UnixMilli()))

	var out strings.Builder
	writer := csv.NewWriter(&out)
	if err := writer.Write(exportColumns); err != nil {
		return err
	}
	for _, student := range students {
		if err := writer.Write(exportRow(student)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	return c.SendString(out.String())
}

func (h *AdminHandler) exportExcelXML(c *fiber.Ctx, students []models.Student) error {
	c.Set(fiber.HeaderContentType, "application/vnd.ms-excel")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="students-export-%d.xls"`, time.Now().UnixMilli()))

	var out strings.Builder
	out.WriteString(`<?xml version="1.0"?>` + "\n")
	out.WriteString(`<?mso-application progid="Excel.Sheet"?>` + "\n")
	out.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"><Worksheet ss:Name="Students"><Table>`)

	writeXMLRow(&out, exportColumns)
	for _, student := range students {
		writeXMLRow(&out, exportRow(student))
	}

	out.WriteString(`</Table></Worksheet></Workbook>`)
	return c.SendString(out.String())
}

func writeXMLRow(out *strings.Builder, cells []string) {
	out.WriteString("<Row>")
	for _, cell := range cells {
		out.WriteString(`<Cell><Data ss:Type="String">`)
		out.WriteString(escapeXML(cell))
		out.WriteString(`</Data></Cell>`)
	}
	out.WriteString("</Row>")
}

func escapeXML(value string) string {
	value = strings.ReplaceAll(value, "&", "&amp;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	return value
}

func exportRow(student models.Student) []string {
	return []string{
		student.ID.String(),
		student.FullName,
		student.Phone,
		student.Email,
		student.DateOfBirth,
		student.Address,
		student.SchoolName,
		student.Board,
		student.ClassName,
		student.PaymentStatus,
		student.PaymentReference,
		derefCell(student.RollNumber),
		derefCell(student.ExamCenter),
		student.ResultStatus,
		student.DocumentURL,
		student.CreatedAt.Format(time.RFC3339),
	}
}

func derefCell(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableCell(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// parseCSVRecords maps each data row onto the header names. Ragged rows are
// tolerated; missing cells read as empty.
func parseCSVRecords(text string) ([]map[string]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}
