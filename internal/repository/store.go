package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hardcorebadger/push-api/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store is the gorm-backed storage collaborator for projects, devices,
// messages, preferences, and delivery statuses.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store and migrates the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&models.Project{},
		&models.Device{},
		&models.Message{},
		&models.Preference{},
		&models.DevicePreference{},
		&models.DeliveryStatus{},
	); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "api_key = ?", apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProjectCredentials applies a partial credential update. Values are
// already encrypted where the column requires it.
func (s *Store) UpdateProjectCredentials(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Devices

// UpsertDevice registers a device, honoring both identities: the
// registration identity (project, user, identifier) and the delivery
// identity (project, platform, token). Re-registering either identity
// updates the existing row instead of duplicating it.
func (s *Store) UpsertDevice(ctx context.Context, device *models.Device) error {
	db := s.db.WithContext(ctx)

	var existing models.Device
	err := db.Where(
		"project_id = ? AND user_id = ? AND identifier = ?",
		device.ProjectID, device.UserID, device.Identifier,
	).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		device.ID = existing.ID
		device.CreatedAt = existing.CreatedAt
		return db.Save(device).Error
	}

	// Same (project, platform, token) re-registered under a new identifier
	// takes over the existing row rather than violating the unique index.
	err = db.Where(
		"project_id = ? AND platform = ? AND token = ?",
		device.ProjectID, device.Platform, device.Token,
	).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		device.ID = existing.ID
		device.CreatedAt = existing.CreatedAt
		return db.Save(device).Error
	}

	return db.Create(device).Error
}

func (s *Store) GetDevice(ctx context.Context, projectID, userID, identifier string) (*models.Device, error) {
	var device models.Device
	err := s.db.WithContext(ctx).Where(
		"project_id = ? AND user_id = ? AND identifier = ?",
		projectID, userID, identifier,
	).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *Store) DeleteDevice(ctx context.Context, projectID, userID, identifier string) error {
	res := s.db.WithContext(ctx).Where(
		"project_id = ? AND user_id = ? AND identifier = ?",
		projectID, userID, identifier,
	).Delete(&models.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDevices returns the devices in a project matching the criteria. Every
// query is scoped by project id; an empty result is not an error.
func (s *Store) ListDevices(ctx context.Context, projectID string, criteria models.TargetCriteria) ([]models.Device, error) {
	query := s.db.WithContext(ctx).Where("project_id = ?", projectID)
	if criteria.UserID != "" {
		query = query.Where("user_id = ?", criteria.UserID)
	}
	if criteria.Platform != "" {
		query = query.Where("platform = ?", criteria.Platform)
	}
	if criteria.DeviceID != "" {
		query = query.Where("identifier = ?", criteria.DeviceID)
	}
	var devices []models.Device
	if err := query.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Preferences

// GetUserPreference returns nil when no row is on file; callers apply the
// enabled-with-all-categories default.
func (s *Store) GetUserPreference(ctx context.Context, projectID, userID string) (*models.Preference, error) {
	var pref models.Preference
	err := s.db.WithContext(ctx).Where(
		"project_id = ? AND user_id = ?", projectID, userID,
	).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (s *Store) UpsertUserPreference(ctx context.Context, pref *models.Preference) error {
	pref.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		UpdateAll: true,
	}).Create(pref).Error
}

// GetDevicePreference returns nil when no row is on file.
func (s *Store) GetDevicePreference(ctx context.Context, deviceID uint) (*models.DevicePreference, error) {
	var pref models.DevicePreference
	err := s.db.WithContext(ctx).First(&pref, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (s *Store) UpsertDevicePreference(ctx context.Context, pref *models.DevicePreference) error {
	pref.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		UpdateAll: true,
	}).Create(pref).Error
}

// Messages

func (s *Store) CreateMessage(ctx context.Context, message *models.Message) error {
	return s.db.WithContext(ctx).Create(message).Error
}

func (s *Store) GetMessage(ctx context.Context, projectID string, id uint) (*models.Message, error) {
	var message models.Message
	err := s.db.WithContext(ctx).Where(
		"id = ? AND project_id = ?", id, projectID,
	).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MessageFilter narrows message listings.
type MessageFilter struct {
	UserID   string
	Platform models.Platform
	Category string
}

func (s *Store) ListMessages(ctx context.Context, projectID string, filter MessageFilter, limit, offset int) ([]models.Message, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Message{}).Where("project_id = ?", projectID)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// Delivery statuses

// UpsertDeliveryStatus records a job outcome keyed by (message, device).
// Status is monotonic forward: once a row has left pending it is never
// overwritten, which makes redelivered jobs safe to repeat.
func (s *Store) UpsertDeliveryStatus(ctx context.Context, messageID, deviceID uint, status models.DeliveryState, detail string) error {
	record := models.DeliveryStatus{
		MessageID: messageID,
		DeviceID:  deviceID,
		Status:    status,
		Detail:    detail,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "message_id"}, {Name: "device_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     record.Status,
			"detail":     record.Detail,
			"updated_at": record.UpdatedAt,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "delivery_statuses", Name: "status"}, Value: string(models.StatePending)},
		}},
	}).Create(&record).Error
}

func (s *Store) ListDeliveryStatuses(ctx context.Context, messageID uint) ([]models.DeliveryStatus, error) {
	var statuses []models.DeliveryStatus
	err := s.db.WithContext(ctx).Where("message_id = ?", messageID).Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}
