package visitors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/visitrack/backend/internal/events"
	"github.com/visitrack/backend/internal/forms"
	"github.com/visitrack/backend/internal/messages"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/pkg/pagination"
	"github.com/visitrack/backend/pkg/queue"
	"github.com/visitrack/backend/pkg/response"
)

// Handler handles visitor registration, listing and check-in endpoints.
type Handler struct {
	repo        *Repository
	eventRepo   *events.Repository
	formRepo    *forms.Repository
	messageRepo *messages.Repository
	jobs        *queue.Queue
	logger      *zap.Logger
}

// NewHandler creates a visitors handler. jobs may be nil when the email worker
// is not configured; registration then skips the badge email.
func NewHandler(repo *Repository, eventRepo *events.Repository, formRepo *forms.Repository,
	messageRepo *messages.Repository, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, formRepo: formRepo,
		messageRepo: messageRepo, jobs: jobs, logger: logger}
}

// RegisterRequest is the body for the public POST /api/events/:id/register.
type RegisterRequest struct {
	FullName      string            `json:"fullName" binding:"required"`
	Email         string            `json:"email" binding:"required,email"`
	PhoneNumber   string            `json:"phoneNumber"`
	Company       string            `json:"company"`
	Location      string            `json:"location"`
	Designation   string            `json:"designation"`
	FormResponses map[string]string `json:"formResponses,omitempty"`
}

// Register handles the public registration endpoint. The visitor is stamped
// with the event's owner id; required dynamic fields come from the event's
// registration form.
func (h *Handler) Register(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("load event failed", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	form, err := h.formRepo.GetByEvent(c.Request.Context(), eventID)
	if err != nil && !errors.Is(err, forms.ErrNotFound) {
		h.logger.Error("load form failed", zap.Error(err))
		response.Internal(c, "failed to load registration form")
		return
	}
	if form != nil {
		for _, f := range form.Fields {
			if f.Required && req.FormResponses[f.ID] == "" {
				response.BadRequest(c, "missing required field: "+f.ID)
				return
			}
		}
	}

	var extra json.RawMessage
	if len(req.FormResponses) > 0 {
		extra, err = json.Marshal(req.FormResponses)
		if err != nil {
			response.BadRequest(c, "invalid formResponses")
			return
		}
	}

	v := &models.Visitor{
		OwnerID:       event.OwnerID,
		EventID:       &event.ID,
		FullName:      req.FullName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Company:       req.Company,
		Location:      req.Location,
		Designation:   req.Designation,
		Status:        models.StatusRegistration,
		FormResponses: extra,
	}
	if err := h.repo.Create(c.Request.Context(), v); err != nil {
		h.logger.Error("create visitor failed", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to register")
		return
	}

	h.queueBadgeEmail(c, event, v)
	response.Created(c, v)
}

func (h *Handler) queueBadgeEmail(c *gin.Context, event *models.Event, v *models.Visitor) {
	if h.jobs == nil {
		return
	}
	log := &models.MessageLog{
		OwnerID:        v.OwnerID,
		EventID:        &event.ID,
		VisitorID:      &v.ID,
		MessageType:    messages.TypeBadgeConfirmation,
		RecipientEmail: v.Email,
		Subject:        "Your badge for " + event.Title,
		Status:         messages.StatusQueued,
	}
	if err := h.messageRepo.Create(c.Request.Context(), log); err != nil {
		h.logger.Error("create message log failed", zap.Error(err))
		return
	}
	err := h.jobs.EnqueueBadgeEmail(c.Request.Context(), queue.BadgeEmailPayload{
		MessageLogID:   log.ID,
		OwnerID:        v.OwnerID,
		VisitorID:      v.ID,
		EventID:        event.ID,
		RecipientEmail: v.Email,
		RecipientName:  v.FullName,
		EventTitle:     event.Title,
	})
	if err != nil {
		h.logger.Error("enqueue badge email failed", zap.Error(err))
	}
}

// List handles GET /api/visitors?page=&limit=&search=.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	p := pagination.FromQuery(c)
	list, total, err := h.repo.List(c.Request.Context(), ownerID, c.Query("search"), p.Limit, p.Offset())
	if err != nil {
		h.logger.Error("list visitors failed", zap.Error(err))
		response.Internal(c, "failed to list visitors")
		return
	}
	response.OK(c, pagination.NewResult(list, total, p))
}

// GetByID handles GET /api/visitors/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid visitor id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	v, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "visitor not found")
			return
		}
		h.logger.Error("get visitor failed", zap.Error(err))
		response.Internal(c, "failed to load visitor")
		return
	}
	response.OK(c, v)
}

// CheckInRequest is the body for POST /api/visitors/:id/checkin. entryType
// accepts any historical synonym and is normalized before the write.
type CheckInRequest struct {
	EntryType string `json:"entryType"`
}

// CheckIn handles the manual check-in endpoint.
func (h *Handler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid visitor id")
		return
	}
	var req CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	if req.EntryType == "" {
		req.EntryType = string(models.EntryManual)
	}
	entryType, ok := models.NormalizeEntryType(req.EntryType)
	if !ok {
		response.BadRequest(c, "unrecognized entry type: "+req.EntryType)
		return
	}
	h.checkIn(c, id, entryType)
}

// QRCheckInRequest is the body for POST /api/checkin/qr. qrData carries the
// visitor UUID encoded in the badge QR.
type QRCheckInRequest struct {
	QRData string `json:"qrData" binding:"required"`
}

// CheckInQR handles the scanner endpoint.
func (h *Handler) CheckInQR(c *gin.Context) {
	var req QRCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "qrData required")
		return
	}
	id, err := uuid.Parse(req.QRData)
	if err != nil {
		response.BadRequest(c, "invalid qr payload")
		return
	}
	h.checkIn(c, id, models.EntryQR)
}

func (h *Handler) checkIn(c *gin.Context, id uuid.UUID, entryType models.EntryType) {
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	v, err := h.repo.CheckIn(c.Request.Context(), ownerID, id, entryType)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "visitor not found")
			return
		}
		h.logger.Error("check-in failed", zap.Error(err), zap.String("visitor_id", id.String()))
		response.Internal(c, "failed to check in visitor")
		return
	}
	response.OK(c, v)
}

// QRImage handles GET /api/visitors/:id/qr. Renders the badge QR as PNG.
func (h *Handler) QRImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid visitor id")
		return
	}
	ownerID := c.MustGet(middleware.ContextOwnerID).(uuid.UUID)
	if _, err := h.repo.GetByOwnerAndID(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "visitor not found")
			return
		}
		h.logger.Error("get visitor failed", zap.Error(err))
		response.Internal(c, "failed to load visitor")
		return
	}
	png, err := qrcode.Encode(id.String(), qrcode.Medium, 256)
	if err != nil {
		h.logger.Error("qr encode failed", zap.Error(err))
		response.Internal(c, "failed to render qr code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
