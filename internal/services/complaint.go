package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Caller identifies the authenticated user behind a request.
type Caller struct {
	UserID uint
	Role   models.Role
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Save(name string, content io.Reader) (string, error)
}

// Image is an optional upload attached to a new complaint.
type Image struct {
	Name    string
	Content io.Reader
}

// ComplaintService covers manual complaint CRUD, search and export.
type ComplaintService struct {
	users      models.UserRepository
	complaints models.ComplaintRepository
	images     ImageStore
	indexer    *Indexer
	stats      StatsInvalidator
	logger     *logrus.Logger
}

func NewComplaintService(
	users models.UserRepository,
	complaints models.ComplaintRepository,
	images ImageStore,
	indexer *Indexer,
	stats StatsInvalidator,
	logger *logrus.Logger,
) *ComplaintService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &ComplaintService{
		users:      users,
		complaints: complaints,
		images:     images,
		indexer:    indexer,
		stats:      stats,
		logger:     logger,
	}
}

// CreateComplaint stores a form-submitted complaint raised by caller.
func (s *ComplaintService) CreateComplaint(ctx context.Context, caller Caller, req *models.CreateComplaintRequest, image *Image) (*models.ComplaintDTO, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	category := models.Category(strings.ToUpper(strings.TrimSpace(string(req.Category))))
	if !category.Valid() {
		return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, req.Category)
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageGrievance
	}
	if !messageType.Valid() {
		return nil, fmt.Errorf("%w: invalid message type %q", ErrValidation, req.MessageType)
	}

	priority := req.PriorityLevel
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.PriorityLevel)
	}

	var availability *time.Time
	if strings.TrimSpace(req.AvailabilityDate) != "" {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(req.AvailabilityDate))
		if err != nil {
			return nil, fmt.Errorf("%w: availabilityDate must be YYYY-MM-DD", ErrValidation)
		}
		availability = &d
	}

	user, err := s.users.GetByID(caller.UserID)
	if err != nil {
		return nil, userLookupError(err, strconv.FormatUint(uint64(caller.UserID), 10))
	}

	team := category.Team()
	complaint := &models.Complaint{
		MessageType:      messageType,
		Category:         category,
		SubCategory:      req.SubCategory,
		SpecificCategory: req.SpecificCategory,
		Block:            req.Block,
		SubBlock:         req.SubBlock,
		RoomType:         req.RoomType,
		RoomNo:           req.RoomNo,
		ContactNo:        req.ContactNo,
		AvailabilityDate: availability,
		TimeSlot:         req.TimeSlot,
		PriorityLevel:    priority,
		Description:      description,
		StudentName:      user.FullName,
		Type:             models.TypeManual,
		Status:           models.StatusOpen,
		AssignedTo:       team,
		AssignedTeam:     team,
		RaisedByID:       user.ID,
	}

	if image != nil && image.Content != nil {
		url, err := s.images.Save(image.Name, image.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		complaint.ImageURL = url
	}

	if err := s.complaints.Create(complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}
	complaint.RaisedBy = user

	s.indexer.Index(ctx, complaint, nil)
	s.stats.Invalidate(ctx)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"category":     complaint.Category,
		"user_id":      user.ID,
	}).Info("Complaint created")

	dto := complaint.ToDTO()
	return &dto, nil
}

// ListComplaints returns every complaint for admins and the caller's own
// complaints otherwise.
func (s *ComplaintService) ListComplaints(caller Caller) ([]models.ComplaintDTO, error) {
	var (
		complaints []models.Complaint
		err        error
	)
	if caller.IsAdmin() {
		complaints, err = s.complaints.GetAll()
	} else {
		complaints, err = s.complaints.GetByRaiser(caller.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return toDTOs(complaints), nil
}

// GetComplaint loads one complaint. Clients may only see their own.
func (s *ComplaintService) GetComplaint(caller Caller, id uint) (*models.ComplaintDTO, error) {
	complaint, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && complaint.RaisedByID != caller.UserID {
		return nil, fmt.Errorf("%w: you can only view your own complaints", ErrForbidden)
	}
	dto := complaint.ToDTO()
	return &dto, nil
}

func (s *ComplaintService) UpdateStatus(ctx context.Context, id uint, status models.Status) (*models.ComplaintDTO, error) {
	status = models.Status(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	if err := s.complaints.UpdateStatus(id, status); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: complaint %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	s.stats.Invalidate(ctx)

	complaint, err := s.load(id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"complaint_id": id,
		"status":       status,
	}).Info("Complaint status updated")

	dto := complaint.ToDTO()
	return &dto, nil
}

// DeleteComplaint removes the complaint and, best effort, its vector.
func (s *ComplaintService) DeleteComplaint(ctx context.Context, id uint) error {
	if err := s.complaints.Delete(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: complaint %d", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete complaint: %w", err)
	}

	s.indexer.Remove(ctx, id)
	s.stats.Invalidate(ctx)

	s.logger.WithField("complaint_id", id).Info("Complaint deleted")
	return nil
}

// SearchComplaints filters within the caller's visible complaints.
func (s *ComplaintService) SearchComplaints(caller Caller, filter models.ComplaintFilter) ([]models.ComplaintDTO, error) {
	if filter.Category != "" {
		filter.Category = models.Category(strings.ToUpper(string(filter.Category)))
		if !filter.Category.Valid() {
			return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, filter.Category)
		}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: to is before from", ErrValidation)
	}

	var raisedBy *uint
	if !caller.IsAdmin() {
		raisedBy = &caller.UserID
	}

	complaints, err := s.complaints.Search(raisedBy, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search complaints: %w", err)
	}
	return toDTOs(complaints), nil
}

// CSVHeader is the first line of every export.
const CSVHeader = "Id,MessageType,Category,SubCategory,SpecificCategory,Block,SubBlock,RoomType,RoomNo,ContactNo,AvailabilityDate,TimeSlot,Description,AssignedTo,Status,CreatedAt,RaisedBy,ImageUrl"

// ExportCSV writes every complaint to w, one row at a time. Every present
// value is double-quoted; absent values are left empty.
func (s *ComplaintService) ExportCSV(w io.Writer) error {
	complaints, err := s.complaints.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load complaints: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return err
	}
	for i := range complaints {
		if _, err := bw.WriteString(csvRow(&complaints[i]) + "\n"); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	s.logger.WithField("rows", len(complaints)).Info("Complaints exported")
	return nil
}

func csvRow(c *models.Complaint) string {
	availability := ""
	if c.AvailabilityDate != nil {
		availability = csvQuote(c.AvailabilityDate.Format("2006-01-02"))
	}
	raisedBy := ""
	if c.RaisedBy != nil {
		raisedBy = csvQuote(c.RaisedBy.FullName)
	}

	return strings.Join([]string{
		csvQuote(strconv.FormatUint(uint64(c.ID), 10)),
		csvQuote(string(c.MessageType)),
		csvQuote(string(c.Category)),
		csvQuote(c.SubCategory),
		csvQuote(c.SpecificCategory),
		csvQuote(c.Block),
		csvQuote(c.SubBlock),
		csvQuote(c.RoomType),
		csvQuote(c.RoomNo),
		csvQuote(c.ContactNo),
		availability,
		csvQuote(c.TimeSlot),
		csvQuote(c.Description),
		csvQuote(c.AssignedTo),
		csvQuote(string(c.Status)),
		csvQuote(c.CreatedAt.Format("2006-01-02T15:04:05")),
		raisedBy,
		csvQuote(c.ImageURL),
	}, ",")
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (s *ComplaintService) load(id uint) (*models.Complaint, error) {
	complaint, err := s.complaints.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: complaint %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func toDTOs(complaints []models.Complaint) []models.ComplaintDTO {
	dtos := make([]models.ComplaintDTO, 0, len(complaints))
	for i := range complaints {
		dtos = append(dtos, complaints[i].ToDTO())
	}
	return dtos
}
