package models

type Category string

const (
	CategoryPlumbing   Category = "PLUMBING"
	CategoryElectrical Category = "ELECTRICAL"
	CategoryRagging    Category = "RAGGING"
	CategoryCarpentry  Category = "CARPENTRY"
	CategoryGeneral    Category = "GENERAL"
)

var Categories = []Category{
	CategoryPlumbing,
	CategoryElectrical,
	CategoryRagging,
	CategoryCarpentry,
	CategoryGeneral,
}

func (c Category) Valid() bool { return contains(Categories, c) }

// Team returns the team responsible for a category. The switch is total over
// Categories; anything else has no team.
func (c Category) Team() string {
	switch c {
	case CategoryPlumbing:
		return "Plumber Team"
	case CategoryElectrical:
		return "Electrician Team"
	case CategoryRagging:
		return "Warden Team"
	case CategoryCarpentry:
		return "Carpenter Team"
	case CategoryGeneral:
		return "Admin Team"
	}
	return ""
}

type MessageType string

const (
	MessageGrievance        MessageType = "GRIEVANCE"
	MessageAssistance       MessageType = "ASSISTANCE"
	MessageEnquiry          MessageType = "ENQUIRY"
	MessageFeedback         MessageType = "FEEDBACK"
	MessagePositiveFeedback MessageType = "POSITIVE_FEEDBACK"
)

var MessageTypes = []MessageType{
	MessageGrievance,
	MessageAssistance,
	MessageEnquiry,
	MessageFeedback,
	MessagePositiveFeedback,
}

func (m MessageType) Valid() bool { return contains(MessageTypes, m) }

// PriorityLevel is the label form of priority. Complaints from the scored
// AI path carry Complaint.PriorityScore instead.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "LOW"
	PriorityMedium   PriorityLevel = "MEDIUM"
	PriorityHigh     PriorityLevel = "HIGH"
	PriorityCritical PriorityLevel = "CRITICAL"
)

var PriorityLevels = []PriorityLevel{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p PriorityLevel) Valid() bool { return contains(PriorityLevels, p) }

const (
	MinPriorityScore     = 1
	MaxPriorityScore     = 10
	DefaultPriorityScore = 5
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved}

func (s Status) Valid() bool { return contains(Statuses, s) }

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleClient || r == RoleAdmin }

const (
	RoomSingle = "Single"
	RoomDouble = "Double"
)

// Complaint.Type values.
const (
	TypeManual      = "MANUAL"
	TypeAIGenerated = "AI_GENERATED"
	TypeGrievance   = "GRIEVANCE"
)

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
