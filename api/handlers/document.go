package handlers

import (
    "errors"
    "io"
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/finsight/finserv-docs/config"
    "github.com/finsight/finserv-docs/internal/models"
    "github.com/finsight/finserv-docs/internal/service/document"
    "github.com/finsight/finserv-docs/internal/utils/validator"
    "github.com/finsight/finserv-docs/pkg/logger"
)

type DocumentHandler struct {
    service   document.Service
    validator *validator.UploadValidator
    logger    logger.Logger
}

// UploadResponse 上传响应结构
type UploadResponse struct {
    DocumentID           string `json:"document_id"`
    Duplicate            bool   `json:"duplicate"`
    TextExtractionMethod string `json:"text_extraction_method"`
}

// SummaryResponse 摘要响应结构
type SummaryResponse struct {
    DocumentID string `json:"document_id"`
    Summary    string `json:"summary"`
}

// DocumentResponse is the full record returned by GET /document/:docId.
type DocumentResponse struct {
    DocumentID           string               `json:"document_id"`
    Fingerprint          string               `json:"fingerprint"`
    Source               models.SourceInfo    `json:"source"`
    Text                 string               `json:"text"`
    Summary              string               `json:"summary,omitempty"`
    LocationURI          string               `json:"location_uri,omitempty"`
    TextExtractionMethod string               `json:"text_extraction_method"`
    SummaryStatus        *SummaryStatusDetail `json:"summary_status,omitempty"`
}

// SummaryStatusDetail surfaces the queued first-summary outcome.
type SummaryStatusDetail struct {
    Status string `json:"status"`
    Error  string `json:"error,omitempty"`
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
    Error string `json:"error"`
}

func NewDocumentHandler(service document.Service, log logger.Logger) *DocumentHandler {
    cfg := &validator.ValidatorConfig{
        MaxFileSize: config.GetServerConfig().MaxUploadSize,
    }
    return &DocumentHandler{
        service:   service,
        validator: validator.NewUploadValidator(log, cfg),
        logger:    log,
    }
}

// UploadPDF 接收单个 PDF 并执行入库流程
func (h *DocumentHandler) UploadPDF(c *gin.Context) {
    upload, err := h.readUpload(c)
    if err != nil {
        h.handleError(c, "Invalid file upload", err)
        return
    }

    result, err := h.service.UploadPDF(c.Request.Context(), upload)
    if err != nil {
        h.handleError(c, "Failed to ingest document", err)
        return
    }

    c.JSON(http.StatusOK, UploadResponse{
        DocumentID:           result.DocumentID,
        Duplicate:            result.Duplicate,
        TextExtractionMethod: string(result.ExtractionMethod),
    })
}

// UpdateSummary 基于已存文本重新生成摘要
func (h *DocumentHandler) UpdateSummary(c *gin.Context) {
    docID := c.Param("docId")
    if docID == "" {
        h.handleError(c, "Document ID is required", models.ErrInvalidInput)
        return
    }

    question := c.Query("summarizing_question")

    doc, err := h.service.UpdateSummary(c.Request.Context(), docID, question)
    if err != nil {
        h.handleError(c, "Failed to update summary", err)
        return
    }

    c.JSON(http.StatusOK, SummaryResponse{
        DocumentID: doc.ID,
        Summary:    doc.Summary,
    })
}

// UpdateSummaryWithFile 用上传文件重新 OCR 后生成摘要
func (h *DocumentHandler) UpdateSummaryWithFile(c *gin.Context) {
    docID := c.Param("docId")
    if docID == "" {
        h.handleError(c, "Document ID is required", models.ErrInvalidInput)
        return
    }

    upload, err := h.readUpload(c)
    if err != nil {
        h.handleError(c, "Invalid file upload", err)
        return
    }

    doc, err := h.service.UpdateSummaryWithFile(c.Request.Context(), docID, upload)
    if err != nil {
        h.handleError(c, "Failed to update summary from file", err)
        return
    }

    c.JSON(http.StatusOK, SummaryResponse{
        DocumentID: doc.ID,
        Summary:    doc.Summary,
    })
}

// GetDocument 返回完整文档记录
func (h *DocumentHandler) GetDocument(c *gin.Context) {
    docID := c.Param("docId")
    if docID == "" {
        h.handleError(c, "Document ID is required", models.ErrInvalidInput)
        return
    }

    doc, err := h.service.GetDocument(c.Request.Context(), docID)
    if err != nil {
        h.handleError(c, "Failed to get document", err)
        return
    }

    resp := DocumentResponse{
        DocumentID:           doc.ID,
        Fingerprint:          doc.Fingerprint,
        Source:               doc.Source,
        Text:                 doc.Text,
        Summary:              doc.Summary,
        LocationURI:          doc.LocationURI,
        TextExtractionMethod: string(doc.ExtractionMethod),
    }

    // queue status is best effort; a redis outage never fails the read
    if status, err := h.service.SummaryStatus(c.Request.Context(), docID); err == nil && status != nil {
        resp.SummaryStatus = &SummaryStatusDetail{
            Status: status.Status,
            Error:  status.Error,
        }
    }

    c.JSON(http.StatusOK, resp)
}

// readUpload pulls the multipart "file" part into memory and validates it.
func (h *DocumentHandler) readUpload(c *gin.Context) (*document.Upload, error) {
    file, header, err := c.Request.FormFile("file")
    if err != nil {
        return nil, models.ErrInvalidInput
    }
    defer file.Close()

    data, err := io.ReadAll(file)
    if err != nil {
        return nil, models.ErrInvalidInput
    }

    if err := h.validator.ValidateUpload(header.Filename, data); err != nil {
        return nil, err
    }

    return &document.Upload{
        FileName:    header.Filename,
        ContentType: header.Header.Get("Content-Type"),
        Size:        int64(len(data)),
        Data:        data,
    }, nil
}

// handleError 统一错误处理
func (h *DocumentHandler) handleError(c *gin.Context, message string, err error) {
    h.logger.Error(message,
        logger.String("path", c.Request.URL.Path),
        logger.Error(err),
    )

    status := http.StatusInternalServerError
    switch {
    case errors.Is(err, models.ErrInvalidInput):
        status = http.StatusBadRequest
    case errors.Is(err, models.ErrNotFound):
        status = http.StatusNotFound
    case errors.Is(err, models.ErrSummarizationUnavailable):
        status = http.StatusBadGateway
    case errors.Is(err, models.ErrStoreUnavailable):
        status = http.StatusServiceUnavailable
    }

    c.JSON(status, ErrorResponse{Error: message})
}
