package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/converter"
	"github.com/ginjaninja78/order-invoicer/internal/validation"
	"github.com/ginjaninja78/order-invoicer/pkg/utils"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RowView is one uploaded row as shown in the selection table.
type RowView struct {
	Index    int               `json:"index"`
	Selected bool              `json:"selected"`
	OrderID  string            `json:"order_id"`
	Customer string            `json:"customer"`
	Quantity int               `json:"quantity"`
	Values   map[string]string `json:"values"`
}

// UploadResponse is returned by POST /api/uploads.
type UploadResponse struct {
	ID       string          `json:"id"`
	FileName string          `json:"file_name"`
	Encoding string          `json:"encoding"`
	Headers  []string        `json:"headers"`
	Rows     []RowView       `json:"rows"`
	Stats    converter.Stats `json:"stats"`
	Warnings []string        `json:"warnings"`
}

// GenerateRequest is the body of POST /api/uploads/:id/generate.
// Branding, when present, is merged over the current branding for this
// batch only.
type GenerateRequest struct {
	Selected []int           `json:"selected"`
	Branding json.RawMessage `json:"branding,omitempty"`
}

// FileView describes one generated invoice.
type FileView struct {
	Position int    `json:"position"`
	OrderID  string `json:"order_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// GenerateResponse is returned by POST /api/uploads/:id/generate.
type GenerateResponse struct {
	BatchID    string     `json:"batch_id"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Files      []FileView `json:"files"`
	Errors     []string   `json:"errors"`
	ArchiveURL string     `json:"archive_url,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// BrandingResponse is returned by the branding endpoints.
type BrandingResponse struct {
	Branding config.Branding `json:"branding"`
	Warning  string          `json:"warning,omitempty"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(c *gin.Context) {
	uploads, batches := s.store.Len()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uploads": uploads,
		"batches": batches,
	})
}

func (s *Server) handleGetBranding(c *gin.Context) {
	c.JSON(http.StatusOK, BrandingResponse{Branding: s.currentBranding()})
}

// handlePutBranding merges the body over the current branding, keeps the
// result in memory and persists it.
func (s *Server) handlePutBranding(c *gin.Context) {
	b := s.currentBranding()
	if err := c.ShouldBindJSON(&b); err != nil {
		s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("invalid branding: %w", err))
		return
	}
	b = b.WithDefaults()

	s.mu.Lock()
	s.branding = b
	s.mu.Unlock()

	resp := BrandingResponse{Branding: b}
	if s.brandingStore != nil {
		if err := s.brandingStore.Save(b); err != nil {
			s.logger.Warn("Branding not persisted", zap.Error(err))
			resp.Warning = err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUpload(c *gin.Context) {
	maxBytes := s.config.MaxUploadMB << 20
	tooLarge := fmt.Errorf("upload exceeds %d MB", s.config.MaxUploadMB)
	if maxBytes > 0 {
		if c.Request.ContentLength > maxBytes {
			s.errorResponse(c, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(c, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("no file provided: %w", err))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	table, err := converter.ReadTable(f, header.Filename)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	upload := s.store.AddUpload(table)
	branding := s.currentBranding()

	rows := make([]RowView, len(table.Rows))
	for i, row := range table.Rows {
		rec := s.resolver.Build(row, i, branding)
		rows[i] = RowView{
			Index:    i,
			Selected: true,
			OrderID:  rec.OrderID,
			Customer: rec.CustomerName,
			Quantity: rec.Quantity,
			Values:   row,
		}
	}

	warnings := []string{}
	for _, finding := range validation.CheckHeaders(table.Headers, s.resolver.Aliases()) {
		warnings = append(warnings, finding.Error())
	}

	s.logger.Info("Order file uploaded",
		zap.String("upload_id", upload.ID),
		zap.String("file", header.Filename),
		zap.Int("rows", len(table.Rows)),
	)

	c.JSON(http.StatusOK, UploadResponse{
		ID:       upload.ID,
		FileName: header.Filename,
		Encoding: table.Encoding,
		Headers:  table.Headers,
		Rows:     rows,
		Stats:    converter.ComputeStats(table.Rows, s.resolver, branding),
		Warnings: warnings,
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	upload, ok := s.store.Upload(c.Param("id"))
	if !ok {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("upload %s not found", c.Param("id")))
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	branding := s.currentBranding()
	if len(req.Branding) > 0 {
		if err := json.Unmarshal(req.Branding, &branding); err != nil {
			s.errorResponse(c, http.StatusBadRequest, fmt.Errorf("invalid branding: %w", err))
			return
		}
	}

	rows, err := converter.Select(upload.Table.Rows, req.Selected)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, err)
		return
	}

	gen := converter.New(branding, s.resolver, s.pdf,
		converter.WithLogger(s.logger),
		converter.WithConcurrency(s.concurrency),
	)
	sink := converter.NewMemorySink()
	result := gen.Run(c.Request.Context(), rows, sink, nil)
	batch := s.store.AddBatch(upload.ID, result, sink)

	resp := GenerateResponse{
		BatchID:    batch.ID,
		Total:      result.Total,
		Succeeded:  result.Succeeded(),
		Files:      make([]FileView, 0, len(result.Outputs)),
		Errors:     make([]string, 0, len(result.Failures)),
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, out := range result.Outputs {
		resp.Files = append(resp.Files, FileView{
			Position: out.Position,
			OrderID:  out.OrderID,
			Name:     out.FileName,
			URL:      fmt.Sprintf("/api/batches/%s/files/%s", batch.ID, url.PathEscape(out.FileName)),
		})
	}
	for _, fail := range result.Failures {
		resp.Errors = append(resp.Errors, fail.Message())
	}
	if len(resp.Files) > 0 {
		resp.ArchiveURL = fmt.Sprintf("/api/batches/%s/archive", batch.ID)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleArchive(c *gin.Context) {
	batch, ok := s.store.Batch(c.Param("id"))
	if !ok {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("batch %s not found", c.Param("id")))
		return
	}

	var files []utils.NamedFile
	for _, out := range batch.Result.Outputs {
		if data, ok := batch.Files.Get(out.FileName); ok {
			files = append(files, utils.NamedFile{Name: out.FileName, Data: data})
		}
	}
	if len(files) == 0 {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("batch %s has no invoices", batch.ID))
		return
	}

	var buf bytes.Buffer
	if err := utils.WriteZip(&buf, files, batch.CreatedAt); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", attachment(utils.ArchiveFileName(time.Now())))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (s *Server) handleFile(c *gin.Context) {
	batch, ok := s.store.Batch(c.Param("id"))
	if !ok {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("batch %s not found", c.Param("id")))
		return
	}

	name := c.Param("name")
	data, ok := batch.Files.Get(name)
	if !ok {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("file %s not found", name))
		return
	}

	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleDeleteBatch(c *gin.Context) {
	id := c.Param("id")
	if !s.store.DeleteBatch(id) {
		s.errorResponse(c, http.StatusNotFound, fmt.Errorf("batch %s not found", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) errorResponse(c *gin.Context, status int, err error) {
	s.logger.Warn("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	c.JSON(status, gin.H{"error": err.Error()})
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
