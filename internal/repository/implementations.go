package repository

import (
	"errors"
	"time"

	"github.com/hosteldesk/backend/internal/models"
	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) models.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) GetAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

// ComplaintRepositoryImpl implements ComplaintRepository
type ComplaintRepositoryImpl struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) models.ComplaintRepository {
	return &ComplaintRepositoryImpl{db: db}
}

func (r *ComplaintRepositoryImpl) Create(complaint *models.Complaint) error {
	return r.db.Create(complaint).Error
}

func (r *ComplaintRepositoryImpl) GetByID(id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.Preload("RaisedBy").First(&complaint, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &complaint, nil
}

func (r *ComplaintRepositoryImpl) GetByRaiser(userID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.Preload("RaisedBy").
		Where("raised_by_id = ?", userID).
		Order("created_at DESC").
		Find(&complaints).Error
	return complaints, err
}

func (r *ComplaintRepositoryImpl) GetAll() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.Preload("RaisedBy").
		Order("created_at DESC").
		Find(&complaints).Error
	return complaints, err
}

func (r *ComplaintRepositoryImpl) UpdateStatus(id uint, status models.Status) error {
	result := r.db.Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepositoryImpl) Delete(id uint) error {
	result := r.db.Delete(&models.Complaint{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ComplaintRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Complaint{}).Count(&count).Error
	return count, err
}

func (r *ComplaintRepositoryImpl) CountByStatus(status models.Status) (int64, error) {
	var count int64
	err := r.db.Model(&models.Complaint{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *ComplaintRepositoryImpl) CountByCategory() (map[models.Category]int64, error) {
	var rows []struct {
		Category models.Category
		Count    int64
	}
	err := r.db.Model(&models.Complaint{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// Search applies the filter and, when raisedBy is set, restricts the result
// to that user's complaints.
func (r *ComplaintRepositoryImpl) Search(raisedBy *uint, filter models.ComplaintFilter) ([]models.Complaint, error) {
	query := r.db.Preload("RaisedBy").Model(&models.Complaint{})

	if raisedBy != nil {
		query = query.Where("raised_by_id = ?", *raisedBy)
	}
	if filter.Query != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+escapeLike(filter.Query)+"%")
	}
	if filter.Agent != "" {
		query = query.Where("LOWER(assigned_to) LIKE ?", "%"+escapeLike(filter.Agent)+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.AddDate(0, 0, 1))
	}

	var complaints []models.Complaint
	err := query.Order("created_at DESC").Find(&complaints).Error
	return complaints, err
}

// QaHistoryRepositoryImpl implements QaHistoryRepository
type QaHistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewQaHistoryRepository(db *gorm.DB) models.QaHistoryRepository {
	return &QaHistoryRepositoryImpl{db: db}
}

func (r *QaHistoryRepositoryImpl) Create(history *models.QaHistory) error {
	return r.db.Create(history).Error
}

func (r *QaHistoryRepositoryImpl) GetRecentByUser(userID uint, limit int) ([]models.QaHistory, error) {
	var history []models.QaHistory
	err := r.db.Where("user_id = ?", userID).
		Order("asked_at DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

func (r *QaHistoryRepositoryImpl) GetByUser(userID uint) ([]models.QaHistory, error) {
	var history []models.QaHistory
	err := r.db.Where("user_id = ?", userID).
		Order("asked_at").
		Find(&history).Error
	return history, err
}

func (r *QaHistoryRepositoryImpl) GetAll() ([]models.QaHistory, error) {
	var history []models.QaHistory
	err := r.db.Order("asked_at").Find(&history).Error
	return history, err
}

func (r *QaHistoryRepositoryImpl) GetSince(since time.Time, userID *uint) ([]models.QaHistory, error) {
	query := r.db.Where("asked_at >= ?", since)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var history []models.QaHistory
	err := query.Order("asked_at").Find(&history).Error
	return history, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	User         models.UserRepository
	Complaint    models.ComplaintRepository
	QaHistory    models.QaHistoryRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		User:         NewUserRepository(db),
		Complaint:    NewComplaintRepository(db),
		QaHistory:    NewQaHistoryRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
