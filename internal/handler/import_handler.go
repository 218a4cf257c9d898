package handler

import (
	"admin-service/internal/middleware"
	"admin-service/internal/model"
	"admin-service/pkg/database"
	"admin-service/pkg/logger"
	"admin-service/prometheus"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// importColumns is the expected CSV header for user imports
var importColumns = []string{"email", "first_name", "last_name", "role", "department", "location", "phone"}

// parseUserRow validates one CSV record and builds a user from it
func parseUserRow(record []string) (*model.User, error) {
	if len(record) != len(importColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(importColumns), len(record))
	}

	email := strings.TrimSpace(record[0])
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", record[0])
	}

	role := model.Role(strings.TrimSpace(record[3]))
	if record[3] == "" {
		role = model.RoleViewer
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", record[3])
	}

	return &model.User{
		Email:      email,
		FirstName:  strings.TrimSpace(record[1]),
		LastName:   strings.TrimSpace(record[2]),
		Role:       role,
		Department: strings.TrimSpace(record[4]),
		Location:   strings.TrimSpace(record[5]),
		Phone:      strings.TrimSpace(record[6]),
		Active:     true,
	}, nil
}

// isImportHeader reports whether the record looks like the expected header row
func isImportHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "email") && !strings.Contains(record[0], "@")
}

// ImportUsers ingests a multipart CSV upload and creates users row by row.
// A bad row becomes an ImportError and processing continues; the batch records
// processed and failed counts.
func ImportUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("user_import")

	actorID, _ := c.Get(middleware.ContextUserID).(uint)

	orgParam := c.FormValue("organisation_id")
	var orgID *uint
	if orgParam != "" {
		parsed, err := strconv.ParseUint(orgParam, 10, 32)
		if err != nil {
			log.Error("Invalid organisation ID", zap.String("organisation_id", orgParam))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organisation_id"})
		}
		id := uint(parsed)
		orgID = &id
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Error("Missing CSV file in upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read upload"})
	}
	defer file.Close()

	batch := model.ImportBatch{
		Filename:  fileHeader.Filename,
		Status:    model.ImportProcessing,
		CreatedBy: actorID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&batch); result.Error != nil {
		log.Error("Failed to create import batch", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "import failed"})
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rowNum := 0
	processed := 0
	failed := 0

	recordError := func(raw []string, msg string) {
		failed++
		prometheus.RecordImportRow("failed")
		importErr := model.ImportError{
			BatchID:   batch.ID,
			RowNumber: rowNum,
			RawLine:   strings.Join(raw, ","),
			Message:   msg,
		}
		if result := database.GetDB().Create(&importErr); result.Error != nil {
			log.Error("Failed to record import error", zap.Error(result.Error))
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			recordError(record, "malformed CSV row: "+err.Error())
			continue
		}

		// Skip a leading header row
		if rowNum == 1 && isImportHeader(record) {
			rowNum--
			continue
		}

		user, parseErr := parseUserRow(record)
		if parseErr != nil {
			recordError(record, parseErr.Error())
			continue
		}
		user.OrganisationID = orgID

		var existing model.User
		if result := database.GetDB().Where("email = ?", user.Email).First(&existing); result.Error == nil {
			recordError(record, "email already registered")
			continue
		}

		if result := database.GetDB().Create(user); result.Error != nil {
			recordError(record, "database error: "+result.Error.Error())
			continue
		}

		processed++
		prometheus.RecordImportRow("processed")
	}

	status := model.ImportCompleted
	if processed == 0 && failed > 0 {
		status = model.ImportFailed
	}

	updates := map[string]interface{}{
		"status":         status,
		"total_rows":     rowNum,
		"processed_rows": processed,
		"failed_rows":    failed,
	}
	if result := database.GetDB().Model(&batch).Updates(updates); result.Error != nil {
		log.Error("Failed to finalize import batch", zap.Error(result.Error))
	}

	log.Info("CSV import finished",
		zap.Uint("batch_id", batch.ID),
		zap.Int("total", rowNum),
		zap.Int("processed", processed),
		zap.Int("failed", failed))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Import finished",
		"batch":   batch,
	})
}

// GetImportBatch retrieves an import batch with its counts
func GetImportBatch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("import_get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid batch ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var batch model.ImportBatch
	if result := database.GetDB().First(&batch, id); result.Error != nil {
		log.Error("Import batch not found", zap.Uint64("id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "import batch not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"batch": batch})
}

// ListImportErrors returns the rejected rows of an import batch
func ListImportErrors(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAdminOperation("import_errors")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid batch ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var importErrors []model.ImportError
	if result := database.GetDB().Where("batch_id = ?", id).Order("row_number").Find(&importErrors); result.Error != nil {
		log.Error("Failed to list import errors", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list import errors"})
	}

	return c.JSON(http.StatusOK, echo.Map{"errors": importErrors, "count": len(importErrors)})
}
