package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// MaxImageSize bounds a single complaint image upload.
const MaxImageSize = 5 << 20

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ComplaintHandler struct {
	complaints ComplaintService
	logger     *logrus.Logger
}

func NewComplaintHandler(complaints ComplaintService, logger *logrus.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, logger: logger}
}

// Create accepts a multipart form with an optional "image" file.
func (h *ComplaintHandler) Create(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req models.CreateComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	var image *services.Image
	fileHeader, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid image upload", err)
		return
	default:
		if fileHeader.Size > MaxImageSize {
			utils.ErrorResponse(c, http.StatusBadRequest, "Image too large (max 5MB)", nil)
			return
		}
		if !allowedImageExt[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
			utils.ErrorResponse(c, http.StatusBadRequest, "Unsupported image type", nil)
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid image upload", err)
			return
		}
		defer file.Close()
		image = &services.Image{Name: fileHeader.Filename, Content: file}
	}

	complaint, err := h.complaints.CreateComplaint(c.Request.Context(), caller, &req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Complaint created successfully", complaint)
}

func (h *ComplaintHandler) List(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	complaints, err := h.complaints.ListComplaints(caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", complaints)
}

func (h *ComplaintHandler) Get(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	complaint, err := h.complaints.GetComplaint(caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", complaint)
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	complaint, err := h.complaints.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Status updated", complaint)
}

func (h *ComplaintHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.complaints.DeleteComplaint(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Complaint deleted", nil)
}

// Search reads q, agent, from, to (YYYY-MM-DD) and category query parameters.
func (h *ComplaintHandler) Search(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	filter := models.ComplaintFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Agent:    strings.TrimSpace(c.Query("agent")),
		Category: models.Category(strings.TrimSpace(c.Query("category"))),
	}

	var err error
	if filter.From, err = parseDateQuery(c, "from"); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "from must be YYYY-MM-DD", nil)
		return
	}
	if filter.To, err = parseDateQuery(c, "to"); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "to must be YYYY-MM-DD", nil)
		return
	}

	complaints, err := h.complaints.SearchComplaints(caller, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", complaints)
}

// Export streams every complaint as CSV.
func (h *ComplaintHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="complaints.csv"`)
	c.Status(http.StatusOK)

	if err := h.complaints.ExportCSV(c.Writer); err != nil {
		h.logger.WithError(err).Error("Complaint export failed")
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			respondError(c, h.logger, err)
		}
	}
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
