package importer

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitrack/backend/config"
	"github.com/visitrack/backend/internal/dataset"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles the visitor bulk-import endpoints.
type Handler struct {
	datasetRepo *dataset.Repository
	cfg         config.ImportConfig
	logger      *zap.Logger
}

// NewHandler creates an importer handler.
func NewHandler(datasetRepo *dataset.Repository, cfg config.ImportConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{datasetRepo: datasetRepo, cfg: cfg, logger: logger}
}

// Summary is the accounting returned by both import endpoints.
type Summary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Preview handles POST /api/visitor-dataset/import: parses the file and reports what
// a confirm run would write, without touching the dataset.
func (h *Handler) Preview(c *gin.Context) {
	res, ok := h.parseUpload(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"summary": Summary{Total: res.Total, Imported: len(res.Records), Skipped: res.Skipped},
		"preview": previewRows(res),
	})
}

// Confirm handles POST /api/visitor-dataset/import-confirm: parses the file and
// upserts the rows into the tenant's dataset.
func (h *Handler) Confirm(c *gin.Context) {
	res, ok := h.parseUpload(c)
	if !ok {
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	written, err := h.datasetRepo.UpsertBatch(c.Request.Context(), ownerID, res.Records)
	if err != nil {
		h.logger.Error("import write failed", zap.Error(err), zap.Int("rows", len(res.Records)))
		response.Internal(c, "failed to import records")
		return
	}
	h.logger.Info("dataset import completed",
		zap.String("owner_id", ownerID.String()),
		zap.Int("total", res.Total),
		zap.Int("imported", written),
		zap.Int("skipped", res.Skipped))
	response.OK(c, gin.H{
		"summary": Summary{Total: res.Total, Imported: written, Skipped: res.Skipped},
	})
}

// parseUpload reads the multipart "file" field plus the optional "mapping"
// JSON field and parses the spreadsheet. On failure it writes the error
// response and returns ok=false.
func (h *Handler) parseUpload(c *gin.Context) (*Result, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return nil, false
	}
	if h.cfg.MaxFileBytes > 0 && fileHeader.Size > h.cfg.MaxFileBytes {
		response.BadRequest(c, "file exceeds maximum allowed size")
		return nil, false
	}

	mapping, err := parseMapping(c.PostForm("mapping"))
	if err != nil {
		response.BadRequest(c, "invalid mapping: "+err.Error())
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return nil, false
	}
	defer file.Close()

	res, err := h.parse(fileHeader, file, mapping)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrEmptyFile):
			response.BadRequest(c, err.Error())
		default:
			h.logger.Error("parse import file failed", zap.Error(err), zap.String("filename", fileHeader.Filename))
			response.BadRequest(c, "could not parse file")
		}
		return nil, false
	}
	return res, true
}

func (h *Handler) parse(fileHeader *multipart.FileHeader, file multipart.File, mapping map[string]string) (*Result, error) {
	res, err := Parse(fileHeader.Filename, file, mapping)
	if err != nil {
		return nil, err
	}
	truncateRows(res, h.cfg.MaxRows)
	return res, nil
}

// truncateRows enforces the row cap. Rows beyond the cap count as skipped so
// the summary still satisfies total = imported + skipped.
func truncateRows(res *Result, max int) {
	if max <= 0 || len(res.Records) <= max {
		return
	}
	res.Skipped += len(res.Records) - max
	res.Records = res.Records[:max]
}

// parseMapping decodes the client column mapping, lowercasing header keys to
// match ResolveField's lookup.
func parseMapping(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(m))
	for header, target := range m {
		if !validTargets[target] {
			return nil, errors.New("unknown target field: " + target)
		}
		mapping[strings.ToLower(strings.TrimSpace(header))] = target
	}
	return mapping, nil
}

// previewRows returns at most the first ten parsed records for the dry run.
func previewRows(res *Result) interface{} {
	const max = 10
	if len(res.Records) <= max {
		return res.Records
	}
	return res.Records[:max]
}
