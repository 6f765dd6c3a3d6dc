package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hosteldesk/backend/internal/gemini"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/pii"
	"github.com/sirupsen/logrus"
)

const (
	clientContextLimit = 20
	adminContextLimit  = 50
)

const clientSystemPrompt = "You are a helpful hostel complaint management assistant. " +
	"Answer questions about the client's complaints using ONLY the provided context. " +
	"If the answer is not in the context, say you don't know. " +
	"Always format your answer EXACTLY in three sections with these headings: " +
	"'Summary', 'Details', and 'Suggestions'. " +
	"When the user asks 'how many', 'count', 'number of' or to 'show/list all' complaints " +
	"for a category (for example plumbing / plumbering), in the Summary give the exact count, and in Details: " +
	"list EACH matching complaint on its own line in this format: " +
	"'- Complaint #<id> | Category: <category> | Status: <status> | Date: <date or N/A> | <short description>'. " +
	"For other questions, still use the same three sections: " +
	"Summary: 1-2 sentence overview; Details: bullet points with ids, categories, statuses, dates; " +
	"Suggestions: bullet points with practical advice for the client (or 'None' if not applicable)."

const adminSystemPrompt = "You are a helpful hostel complaint management assistant for admins. " +
	"Answer questions about all complaints in the system using ONLY the provided context. " +
	"If the answer is not in the context, say you don't know. " +
	"Always format your answer EXACTLY in three sections with these headings: " +
	"'Summary', 'Details', and 'Recommendations'. " +
	"When the admin asks 'how many', 'count', 'number of' or to 'show/list all' complaints " +
	"for a category (for example plumbing / plumbering), in the Summary give the exact count, and in Details: " +
	"list EACH matching complaint on its own line in this format: " +
	"'- Complaint #<id> | Raised By: <non-PII user id like USER-123 or Unknown> | Category: <category> | Status: <status> | Date: <date or N/A> | <short description>'. " +
	"For other questions, still use the same three sections: " +
	"Summary: brief overview; Details: bullet points with important numbers, categories, trends, and risks; " +
	"Recommendations: 1-3 concrete next actions for the admin."

// QAService answers natural-language questions over stored complaints.
type QAService struct {
	users      models.UserRepository
	complaints models.ComplaintRepository
	history    models.QaHistoryRepository
	generator  AnswerGenerator
	analytics  AnalyticsCache
	logger     *logrus.Logger
}

func NewQAService(
	users models.UserRepository,
	complaints models.ComplaintRepository,
	history models.QaHistoryRepository,
	generator AnswerGenerator,
	analytics AnalyticsCache,
	logger *logrus.Logger,
) *QAService {
	return &QAService{
		users:      users,
		complaints: complaints,
		history:    history,
		generator:  generator,
		analytics:  analytics,
		logger:     logger,
	}
}

// AnswerQuestion answers over the complaints raised by userID.
func (s *QAService) AnswerQuestion(ctx context.Context, question string, userID uint) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", ErrValidation)
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return "", userLookupError(err, strconv.FormatUint(uint64(userID), 10))
	}

	complaints, err := s.complaints.GetByRaiser(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load complaints: %w", err)
	}
	if len(complaints) == 0 {
		return fmt.Sprintf("No complaints found for client %s.", user.FullName), nil
	}

	matched := FilterByQuestion(complaints, question)
	retrieved := BuildContext(matched, clientContextLimit, false)

	answer, err := s.generate(ctx, clientSystemPrompt, retrieved, question)
	if err != nil {
		return "", err
	}

	s.saveHistory(ctx, userID, false, question, answer)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"total":    len(complaints),
		"matched":  len(matched),
		"answered": len(answer),
	}).Info("Client question answered")

	return answer, nil
}

// AnswerAdminQuestion answers over every complaint. History is recorded only
// when adminID is set.
func (s *QAService) AnswerAdminQuestion(ctx context.Context, question string, adminID *uint) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", ErrValidation)
	}

	complaints, err := s.complaints.GetAll()
	if err != nil {
		return "", fmt.Errorf("failed to load complaints: %w", err)
	}
	if len(complaints) == 0 {
		return "No complaints found in the system.", nil
	}

	matched := FilterByQuestion(complaints, question)
	retrieved := BuildContext(matched, adminContextLimit, true)

	answer, err := s.generate(ctx, adminSystemPrompt, retrieved, question)
	if err != nil {
		return "", err
	}

	if adminID != nil {
		s.saveHistory(ctx, *adminID, true, question, answer)
	}

	s.logger.WithFields(logrus.Fields{
		"total":   len(complaints),
		"matched": len(matched),
	}).Info("Admin question answered")

	return answer, nil
}

func (s *QAService) generate(ctx context.Context, system, retrieved, question string) (string, error) {
	answer, err := s.generator.Generate(ctx, gemini.ComposePrompt(system, retrieved, question))
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"kind": gemini.KindOf(err),
		}).WithError(err).Error("Question answering failed")
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return answer, nil
}

// saveHistory appends a QA record. A failed write is logged; the answer is
// still returned.
func (s *QAService) saveHistory(ctx context.Context, userID uint, admin bool, question, answer string) {
	record := &models.QaHistory{
		UserID:   userID,
		Admin:    admin,
		Question: question,
		Answer:   answer,
	}
	if err := s.history.Create(record); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to save QA history")
		return
	}

	if s.analytics != nil {
		if err := s.analytics.InvalidateAnalytics(ctx, userID); err != nil {
			s.logger.WithError(err).Debug("Failed to invalidate QA analytics cache")
		}
	}
}

type keywordGroup struct {
	keywords []string
	match    string
}

var (
	categoryGroups = []keywordGroup{
		{keywords: []string{"plumbing", "plumber"}, match: "plumb"},
		{keywords: []string{"electrical", "electrician"}, match: "electric"},
		{keywords: []string{"carpentry", "carpenter"}, match: "carpent"},
		{keywords: []string{"ragging"}, match: "ragging"},
	}
	statusGroups = []keywordGroup{
		{keywords: []string{"open"}, match: "open"},
		{keywords: []string{"resolved", "closed", "solved"}, match: "resolved"},
		{keywords: []string{"in progress", "progress"}, match: "progress"},
	}
)

// wanted returns the match fragments whose keywords appear in q.
func wanted(groups []keywordGroup, q string) []string {
	var fragments []string
	for _, g := range groups {
		for _, k := range g.keywords {
			if strings.Contains(q, k) {
				fragments = append(fragments, g.match)
				break
			}
		}
	}
	return fragments
}

func matchesAny(value string, fragments []string) bool {
	if len(fragments) == 0 {
		return true
	}
	v := strings.ToLower(value)
	for _, f := range fragments {
		if strings.Contains(v, f) {
			return true
		}
	}
	return false
}

// FilterByQuestion keeps the complaints matching the category and status
// keywords found in question. A group with no keyword present matches
// everything; groups are ANDed.
func FilterByQuestion(complaints []models.Complaint, question string) []models.Complaint {
	if question == "" {
		return complaints
	}
	q := strings.ToLower(question)
	categories := wanted(categoryGroups, q)
	statuses := wanted(statusGroups, q)

	filtered := make([]models.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if matchesAny(string(c.Category), categories) && matchesAny(string(c.Status), statuses) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// BuildContext renders at most limit complaints as masked paragraphs. Admin
// context carries a USER-<id> raiser reference and never a name or email.
func BuildContext(complaints []models.Complaint, limit int, admin bool) string {
	if len(complaints) > limit {
		complaints = complaints[:limit]
	}

	blocks := make([]string, 0, len(complaints))
	for _, c := range complaints {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Complaint #%d\n", c.ID)
		if admin {
			if c.RaisedByID != 0 {
				fmt.Fprintf(&sb, "Raised By: USER-%d\n", c.RaisedByID)
			} else {
				sb.WriteString("Raised By: Unknown\n")
			}
		}
		fmt.Fprintf(&sb, "Category: %s\n", c.Category)
		fmt.Fprintf(&sb, "Status: %s\n", c.Status)
		if c.AvailabilityDate != nil {
			fmt.Fprintf(&sb, "Date: %s\n", c.AvailabilityDate.Format("2006-01-02"))
		}
		if c.Description != "" {
			fmt.Fprintf(&sb, "Description: %s\n", pii.Mask(c.Description))
		}
		sb.WriteString("---\n")
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n")
}
