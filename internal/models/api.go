package models

import (
	"time"
)

type AIComplaintRequest struct {
	Description string `json:"description" binding:"required"`
}

// GeneratedComplaint is returned by the structured AI creation path.
type GeneratedComplaint struct {
	ComplaintDTO
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message"`
}

// ScoredComplaintResponse is returned by the integer-priority AI creation path.
type ScoredComplaintResponse struct {
	ID            uint     `json:"id"`
	TicketNo      string   `json:"ticketNo"`
	Category      Category `json:"category"`
	SubCategory   string   `json:"subCategory"`
	RoomNo        string   `json:"roomNo"`
	Priority      string   `json:"priority"`
	PriorityLevel int      `json:"priorityLevel"`
	Status        Status   `json:"status"`
	Description   string   `json:"description"`
	Duplicate     bool     `json:"duplicate"`
	Message       string   `json:"message"`
}

type UserSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type ComplaintDTO struct {
	ID                uint          `json:"id"`
	TicketNo          string        `json:"ticketNo"`
	MessageType       MessageType   `json:"messageType"`
	Category          Category      `json:"category"`
	SubCategory       string        `json:"subCategory,omitempty"`
	SpecificCategory  string        `json:"specificCategory,omitempty"`
	Block             string        `json:"block,omitempty"`
	SubBlock          string        `json:"subBlock,omitempty"`
	RoomType          string        `json:"roomType,omitempty"`
	RoomNo            string        `json:"roomNo,omitempty"`
	BuildingCode      string        `json:"buildingCode,omitempty"`
	PriorityLevel     PriorityLevel `json:"priorityLevel,omitempty"`
	PriorityScore     *int          `json:"priorityScore,omitempty"`
	ContactNo         string        `json:"contactNo,omitempty"`
	AvailabilityDate  *time.Time    `json:"availabilityDate,omitempty"`
	TimeSlot          string        `json:"timeSlot,omitempty"`
	PreferredTimeSlot string        `json:"preferredTimeSlot,omitempty"`
	Description       string        `json:"description"`
	AssignedTo        string        `json:"assignedTo,omitempty"`
	AssignedTeam      string        `json:"assignedTeam"`
	Status            Status        `json:"status"`
	ImageURL          string        `json:"imageUrl,omitempty"`
	Type              string        `json:"type,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	RaisedBy          *UserSummary  `json:"raisedBy,omitempty"`
}

func (c *Complaint) ToDTO() ComplaintDTO {
	dto := ComplaintDTO{
		ID:                c.ID,
		TicketNo:          c.TicketNo,
		MessageType:       c.MessageType,
		Category:          c.Category,
		SubCategory:       c.SubCategory,
		SpecificCategory:  c.SpecificCategory,
		Block:             c.Block,
		SubBlock:          c.SubBlock,
		RoomType:          c.RoomType,
		RoomNo:            c.RoomNo,
		BuildingCode:      c.BuildingCode,
		PriorityLevel:     c.PriorityLevel,
		PriorityScore:     c.PriorityScore,
		ContactNo:         c.ContactNo,
		AvailabilityDate:  c.AvailabilityDate,
		TimeSlot:          c.TimeSlot,
		PreferredTimeSlot: c.PreferredTimeSlot,
		Description:       c.Description,
		AssignedTo:        c.AssignedTo,
		AssignedTeam:      c.AssignedTeam,
		Status:            c.Status,
		ImageURL:          c.ImageURL,
		Type:              c.Type,
		CreatedAt:         c.CreatedAt,
	}
	if c.RaisedBy != nil {
		dto.RaisedBy = &UserSummary{ID: c.RaisedBy.ID, Name: c.RaisedBy.FullName, Role: c.RaisedBy.Role}
	}
	return dto
}

// CreateComplaintRequest is bound from a multipart form.
type CreateComplaintRequest struct {
	MessageType      MessageType   `form:"messageType" json:"messageType"`
	Category         Category      `form:"category" json:"category" binding:"required"`
	SubCategory      string        `form:"subCategory" json:"subCategory"`
	SpecificCategory string        `form:"specificCategory" json:"specificCategory"`
	Block            string        `form:"block" json:"block"`
	SubBlock         string        `form:"subBlock" json:"subBlock"`
	RoomType         string        `form:"roomType" json:"roomType"`
	RoomNo           string        `form:"roomNo" json:"roomNo"`
	ContactNo        string        `form:"contactNo" json:"contactNo"`
	AvailabilityDate string        `form:"availabilityDate" json:"availabilityDate"`
	TimeSlot         string        `form:"timeSlot" json:"timeSlot"`
	PriorityLevel    PriorityLevel `form:"priorityLevel" json:"priorityLevel"`
	Description      string        `form:"description" json:"description" binding:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// ComplaintFilter narrows a complaint listing. Zero values mean no filter.
type ComplaintFilter struct {
	Query    string
	Agent    string
	From     *time.Time
	To       *time.Time
	Category Category
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	UserID   *uint  `json:"userId"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type QaHistoryDTO struct {
	ID       uint      `json:"id"`
	Admin    bool      `json:"admin"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"askedAt"`
}

// Date marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(data))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type AnalyticsDTO struct {
	TotalQuestions      int64 `json:"totalQuestions"`
	TotalAdminQuestions int64 `json:"totalAdminQuestions"`
	TotalUserQuestions  int64 `json:"totalUserQuestions"`
	SuccessCount        int64 `json:"successCount"`
	ErrorCount          int64 `json:"errorCount"`
	FirstQuestionDate   *Date `json:"firstQuestionDate"`
	LastQuestionDate    *Date `json:"lastQuestionDate"`
}

type DailyCountDTO struct {
	Date  Date  `json:"date"`
	Total int64 `json:"total"`
	Admin int64 `json:"admin"`
	User  int64 `json:"user"`
}

type DashboardStats struct {
	TotalComplaints      int64              `json:"totalComplaints"`
	OpenComplaints       int64              `json:"openComplaints"`
	InProgressComplaints int64              `json:"inProgressComplaints"`
	ResolvedComplaints   int64              `json:"resolvedComplaints"`
	ComplaintsByCategory map[Category]int64 `json:"complaintsByCategory"`
}

type SignupRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required,min=6"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token,omitempty"`
}
