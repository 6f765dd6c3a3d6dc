package models

// GORM models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hosteldesk/backend/internal/idgen"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"<-:create"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a hostel resident (CLIENT) or staff member (ADMIN)
type User struct {
	BaseModel
	Username      string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash  string `json:"-" gorm:"not null"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Role          Role   `json:"role" gorm:"type:varchar(16);not null;default:'CLIENT'"`
}

// Complaint is a maintenance or grievance ticket
type Complaint struct {
	BaseModel
	TicketNo          string        `json:"ticket_no" gorm:"uniqueIndex;not null"`
	MessageType       MessageType   `json:"message_type" gorm:"type:varchar(32);not null"`
	Category          Category      `json:"category" gorm:"type:varchar(32);not null;index"`
	SubCategory       string        `json:"sub_category,omitempty"`
	SpecificCategory  string        `json:"specific_category,omitempty"`
	Block             string        `json:"block,omitempty"`
	SubBlock          string        `json:"sub_block,omitempty"`
	RoomType          string        `json:"room_type,omitempty"`
	RoomNo            string        `json:"room_no,omitempty"`
	BuildingCode      string        `json:"building_code,omitempty"`
	PriorityLevel     PriorityLevel `json:"priority_level,omitempty" gorm:"type:varchar(16)"`
	PriorityScore     *int          `json:"priority_score,omitempty"`
	ContactNo         string        `json:"contact_no,omitempty"`
	AvailabilityDate  *time.Time    `json:"availability_date,omitempty" gorm:"type:date"`
	TimeSlot          string        `json:"time_slot,omitempty"`
	PreferredTimeSlot string        `json:"preferred_time_slot,omitempty"`
	Description       string        `json:"description" gorm:"type:text;not null"`
	RaisedByID        uint          `json:"raised_by_id" gorm:"not null;index"`
	RaisedBy          *User         `json:"raised_by,omitempty" gorm:"foreignKey:RaisedByID"`
	AssignedTo        string        `json:"assigned_to,omitempty"`
	AssignedTeam      string        `json:"assigned_team"`
	Status            Status        `json:"status" gorm:"type:varchar(16);not null;index"`
	ImageURL          string        `json:"image_url,omitempty"`
	AttachmentPath    string        `json:"attachment_path,omitempty"`
	StudentName       string        `json:"student_name,omitempty"`
	ComplaintDate     *time.Time    `json:"complaint_date,omitempty" gorm:"type:date"`
	Type              string        `json:"type,omitempty"`
}

// QaHistory is one answered question. Rows are append-only.
type QaHistory struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;index"`
	Admin    bool      `json:"admin" gorm:"not null;default:false"`
	Question string    `json:"question" gorm:"type:text;not null"`
	Answer   string    `json:"answer" gorm:"type:text;not null"`
	AskedAt  time.Time `json:"asked_at" gorm:"not null;index"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type UserRepository interface {
	Create(user *User) error
	GetByID(id uint) (*User, error)
	GetByUsername(username string) (*User, error)
	ExistsByUsername(username string) (bool, error)
	GetAll() ([]User, error)
}

type ComplaintRepository interface {
	Create(complaint *Complaint) error
	GetByID(id uint) (*Complaint, error)
	GetByRaiser(userID uint) ([]Complaint, error)
	GetAll() ([]Complaint, error)
	UpdateStatus(id uint, status Status) error
	Delete(id uint) error
	Count() (int64, error)
	CountByStatus(status Status) (int64, error)
	CountByCategory() (map[Category]int64, error)
	Search(raisedBy *uint, filter ComplaintFilter) ([]Complaint, error)
}

type QaHistoryRepository interface {
	Create(history *QaHistory) error
	GetRecentByUser(userID uint, limit int) ([]QaHistory, error)
	GetByUser(userID uint) ([]QaHistory, error)
	GetAll() ([]QaHistory, error)
	GetSince(since time.Time, userID *uint) ([]QaHistory, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (User) TableName() string         { return "users" }
func (Complaint) TableName() string    { return "complaints" }
func (QaHistory) TableName() string    { return "qa_history" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}

// Validate enforces the fields every complaint must carry once created.
func (c *Complaint) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if !c.Category.Valid() {
		return fmt.Errorf("invalid category: %q", c.Category)
	}
	if !c.MessageType.Valid() {
		return fmt.Errorf("invalid message type: %q", c.MessageType)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid status: %q", c.Status)
	}
	if c.RaisedByID == 0 {
		return fmt.Errorf("raiser is required")
	}
	if !c.HasPriority() {
		return fmt.Errorf("priority is required")
	}
	return nil
}

// HasPriority reports whether either priority form is set and in range.
func (c *Complaint) HasPriority() bool {
	if c.PriorityLevel.Valid() {
		return true
	}
	return c.PriorityScore != nil && *c.PriorityScore >= MinPriorityScore && *c.PriorityScore <= MaxPriorityScore
}

func (h *QaHistory) Validate() error {
	if h.UserID == 0 {
		return fmt.Errorf("user id is required")
	}
	if h.Question == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

// GORM hooks
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	return u.Validate()
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.TicketNo == "" {
		c.TicketNo = idgen.TicketNo()
	}
	return c.Validate()
}

func (h *QaHistory) BeforeCreate(tx *gorm.DB) error {
	if h.AskedAt.IsZero() {
		h.AskedAt = time.Now()
	}
	return h.Validate()
}
