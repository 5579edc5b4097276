package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docaudit/internal/http/middleware"
	"docaudit/internal/service"
)

// UploadDocument accepts multipart/form-data with the file in field "file" and an
// optional "workspace_id".
//
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param workspace_id formData string false "Workspace"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		workspaceID := c.FormValue("workspace_id")
		if workspaceID != "" {
			if _, err := uuid.Parse(workspaceID); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid workspace_id")
			}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			Reader:           f,
			OriginalFilename: fh.Filename,
			ContentType:      fh.Header.Get("Content-Type"),
			Size:             fh.Size,
			WorkspaceID:      workspaceID,
			OwnerID:          middleware.UserID(c),
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments pages through documents, optionally filtered by workspace_id,
// owner_id and status.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param workspace_id query string false "Workspace"
// @Param owner_id query string false "Owner"
// @Param status query string false "uploaded, processing, processed or failed"
// @Success 200 {object} service.DocumentListResult
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), service.DocumentFilterInput{
			WorkspaceID: c.Query("workspace_id"),
			OwnerID:     c.Query("owner_id"),
			Status:      c.Query("status"),
			Limit:       limit,
			Offset:      offset,
		})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a document's metadata.
//
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the stored object and its metadata.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument returns a presigned URL for the document bytes.
//
// @Summary Presigned download URL
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]string
// @Router /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		url, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// ProcessDocument runs OCR, parsing and financial extraction synchronously.
//
// @Summary Process a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} service.ProcessResult
// @Failure 409 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Router /documents/{id}/process [post]
func ProcessDocument(svc service.ProcessingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		res, err := svc.Process(c.UserContext(), id, middleware.UserID(c))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(res)
	}
}

// GetParsedData returns the latest parsed data of a document.
//
// @Summary Latest parsed data
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} model.ParsedData
// @Router /documents/{id}/parsed [get]
func GetParsedData(svc service.ProcessingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.GetParsed(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(p)
	}
}

// GetFinancialData returns the latest financial extraction of a document.
//
// @Summary Latest financial extraction
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} model.FinancialExtraction
// @Router /documents/{id}/financial [get]
func GetFinancialData(svc service.ProcessingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		f, err := svc.GetFinancial(c.UserContext(), id)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(f)
	}
}
