package briefing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/pkg/logger"
	"github.com/docbrief/nlp-engine/internal/pkg/response"
	"github.com/docbrief/nlp-engine/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase       Usecase
	extractor     Extractor
	formatters    FormatterFactory
	fileValidator *validator.FileValidator
}

func NewHandler(
	usecase Usecase,
	extractor Extractor,
	formatters FormatterFactory,
	fileValidator *validator.FileValidator,
) *Handler {
	return &Handler{
		usecase:       usecase,
		extractor:     extractor,
		formatters:    formatters,
		fileValidator: fileValidator,
	}
}

// Process handles POST /process - simplify a document page by page
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Process")

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runPipeline(ctx, w, req.toQuery())
}

// Ask handles POST /ask - answer a question about a document
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runPipeline(ctx, w, req.toQuery())
}

// Summarize handles POST /summarize - one-paragraph summary
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Summarize")

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runPipeline(ctx, w, req.toQuery())
}

// Extract handles POST /extract - key points and takeaways
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Extract")

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runPipeline(ctx, w, req.toQuery())
}

func (h *Handler) runPipeline(ctx context.Context, w http.ResponseWriter, q entity.Query) {
	resp, err := h.usecase.Process(ctx, q)
	if err != nil {
		if entity.IsClientError(err) {
			ctxzap.Info(ctx, "rejecting invalid request", zap.Error(err))
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		ctxzap.Error(ctx, "pipeline failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "processing failed")
		return
	}

	if resp.Degraded {
		ctxzap.Warn(ctx, "returning degraded payload", zap.String("mode", string(resp.Mode)))
	}
	response.Success(w, resp.Payload())
}

// ResetIndex handles POST /index/reset - discard a user's stored index
func (h *Handler) ResetIndex(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ResetIndex")

	var req ResetIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.usecase.ResetIndex(ctx, req.UserID); err != nil {
		ctxzap.Error(ctx, "failed to reset index", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "reset failed")
		return
	}

	response.Success(w, map[string]bool{"success": true})
}

// ExtractFile handles POST /extract-file - upload a document, get text
func (h *Handler) ExtractFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExtractFile")

	if err := r.ParseMultipartForm(h.fileValidator.MaxUploadSize()); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Error(ctx, "missing file part", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	if err := h.fileValidator.ValidateUpload(header.Filename, header.Size); err != nil {
		ctxzap.Info(ctx, "rejecting upload", zap.String("filename", header.Filename), zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read upload", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	text, err := h.extractor.Extract(ctx, header.Filename, data)
	if err != nil {
		if entity.IsClientError(err) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		ctxzap.Error(ctx, "extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		response.Error(w, http.StatusBadGateway, "text extraction failed")
		return
	}

	response.Success(w, ExtractFileResponse{
		Success:  true,
		Filename: header.Filename,
		Text:     text,
	})
}

// Export handles POST /export - render simplify output as a document
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		response.Error(w, http.StatusBadRequest, "pages are required")
		return
	}

	f, err := h.formatters.Create(entity.ResultFormat(req.Format))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := f.Format(req.Pages)
	if err != nil {
		ctxzap.Error(ctx, "failed to render export", zap.String("format", req.Format), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "export rendering failed")
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="briefing`+f.FileExtension()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
