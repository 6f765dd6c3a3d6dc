package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hosteldesk/backend/internal/gemini"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/pii"
	"github.com/sirupsen/logrus"
)

// MaxDescriptionLength caps descriptions sent through the AI paths, in runes.
const MaxDescriptionLength = 10000

const (
	msgGenerated          = "Complaint generated successfully"
	msgGeneratedDuplicate = "Complaint generated successfully (similar complaint exists)"
)

// AIComplaintService creates complaints from free-text descriptions.
type AIComplaintService struct {
	users      models.UserRepository
	complaints models.ComplaintRepository
	extractor  ComplaintExtractor
	indexer    *Indexer
	stats      StatsInvalidator
	logger     *logrus.Logger
	now        func() time.Time
}

func NewAIComplaintService(
	users models.UserRepository,
	complaints models.ComplaintRepository,
	extractor ComplaintExtractor,
	indexer *Indexer,
	stats StatsInvalidator,
	logger *logrus.Logger,
) *AIComplaintService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &AIComplaintService{
		users:      users,
		complaints: complaints,
		extractor:  extractor,
		indexer:    indexer,
		stats:      stats,
		logger:     logger,
		now:        time.Now,
	}
}

// GenerateComplaint runs the label-priority path for the user with the given
// username. Extraction failures abort before anything is stored; index
// failures never do.
func (s *AIComplaintService) GenerateComplaint(ctx context.Context, description, username string) (*models.GeneratedComplaint, error) {
	desc, err := validateDescription(description)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, userLookupError(err, username)
	}

	masked := pii.Mask(desc)
	fields, err := s.extractor.Extract(ctx, masked)
	if err != nil {
		s.logGenerationFailure(err, user.ID)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	vector := s.indexer.Vector(ctx, masked)
	duplicate := s.indexer.IsDuplicate(ctx, vector)

	team := fields.Category.Team()
	today := s.today()
	complaint := &models.Complaint{
		MessageType:      fields.MessageType,
		Category:         fields.Category,
		SubCategory:      fields.SubCategory,
		SpecificCategory: fields.SpecificCategory,
		Block:            fields.Block,
		SubBlock:         fields.SubBlock,
		RoomNo:           fields.RoomNo,
		RoomType:         fields.RoomType,
		BuildingCode:     fields.BuildingCode,
		PriorityLevel:    fields.PriorityLevel,
		Description:      desc,
		ContactNo:        user.ContactNumber,
		StudentName:      user.FullName,
		ComplaintDate:    &today,
		Type:             models.TypeAIGenerated,
		Status:           models.StatusOpen,
		AssignedTo:       team,
		AssignedTeam:     team,
		RaisedByID:       user.ID,
	}

	if err := s.complaints.Create(complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}
	complaint.RaisedBy = user

	s.indexer.Index(ctx, complaint, vector)
	s.stats.Invalidate(ctx)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"category":     complaint.Category,
		"priority":     complaint.PriorityLevel,
		"duplicate":    duplicate,
		"defaulted":    fields.Defaulted,
	}).Info("AI complaint created")

	return &models.GeneratedComplaint{
		ComplaintDTO: complaint.ToDTO(),
		Duplicate:    duplicate,
		Message:      generatedMessage(duplicate),
	}, nil
}

// GenerateScoredComplaint runs the integer-priority path for userID.
func (s *AIComplaintService) GenerateScoredComplaint(ctx context.Context, description string, userID uint) (*models.ScoredComplaintResponse, error) {
	desc, err := validateDescription(description)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, userLookupError(err, strconv.FormatUint(uint64(userID), 10))
	}

	masked := pii.Mask(desc)
	fields, err := s.extractor.ExtractScored(ctx, masked)
	if err != nil {
		s.logGenerationFailure(err, user.ID)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	vector := s.indexer.Vector(ctx, masked)
	duplicate := s.indexer.IsDuplicate(ctx, vector)

	team := fields.Category.Team()
	score := fields.PriorityScore
	today := s.today()
	complaint := &models.Complaint{
		MessageType:       models.MessageGrievance,
		Category:          fields.Category,
		SubCategory:       fields.SubCategory,
		Block:             fields.Block,
		BuildingCode:      fields.Block,
		RoomNo:            fields.RoomNo,
		RoomType:          fields.RoomType,
		PriorityScore:     &score,
		PreferredTimeSlot: fields.PreferredTimeSlot,
		Description:       desc,
		ContactNo:         user.ContactNumber,
		StudentName:       user.FullName,
		ComplaintDate:     &today,
		Type:              models.TypeGrievance,
		Status:            models.StatusOpen,
		AssignedTo:        team,
		AssignedTeam:      team,
		RaisedByID:        user.ID,
	}

	if err := s.complaints.Create(complaint); err != nil {
		return nil, fmt.Errorf("failed to save complaint: %w", err)
	}

	s.indexer.Index(ctx, complaint, vector)
	s.stats.Invalidate(ctx)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"category":     complaint.Category,
		"priority":     score,
		"duplicate":    duplicate,
		"defaulted":    fields.Defaulted,
	}).Info("Scored AI complaint created")

	return &models.ScoredComplaintResponse{
		ID:            complaint.ID,
		TicketNo:      complaint.TicketNo,
		Category:      complaint.Category,
		SubCategory:   complaint.SubCategory,
		RoomNo:        complaint.RoomNo,
		Priority:      strconv.Itoa(score),
		PriorityLevel: score,
		Status:        complaint.Status,
		Description:   complaint.Description,
		Duplicate:     duplicate,
		Message:       generatedMessage(duplicate),
	}, nil
}

func (s *AIComplaintService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *AIComplaintService) logGenerationFailure(err error, userID uint) {
	entry := s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    gemini.KindOf(err),
	})
	var gerr *gemini.Error
	if errors.As(err, &gerr) && gerr.Hint != "" {
		entry = entry.WithField("hint", gerr.Hint)
	}
	entry.Error("AI complaint generation failed")
}

func validateDescription(description string) (string, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return "", fmt.Errorf("%w: description is required", ErrValidation)
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	return desc, nil
}

func userLookupError(err error, who string) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: user %s", ErrNotFound, who)
	}
	return fmt.Errorf("failed to load user %s: %w", who, err)
}

func generatedMessage(duplicate bool) string {
	if duplicate {
		return msgGeneratedDuplicate
	}
	return msgGenerated
}
