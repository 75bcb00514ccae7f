package storage

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/example/gyansetu/internal/models"
)

// GormStore persists records in Postgres through gorm. It fills the hosted
// external-store role of the portal.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateStudent(ctx context.Context, student *models.Student) error {
	return s.db.WithContext(ctx).Create(student).Error
}

func (s *GormStore) ListStudents(ctx context.Context, page, pageSize int) ([]models.Student, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Student{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []models.Student
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (s *GormStore) PatchStudent(ctx context.Context, id string, patch map[string]any) error {
	result := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) AllStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := s.db.WithContext(ctx).Order("created_at asc").Find(&students).Error
	return students, err
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ResultPublished(ctx context.Context) (bool, error) {
	var setting models.SystemSetting
	err := s.db.WithContext(ctx).
		Where("key = ?", models.SettingResultPublished).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return setting.Value == "true", nil
}

func (s *GormStore) SetResultPublished(ctx context.Context, published bool) error {
	value := strconv.FormatBool(published)

	var setting models.SystemSetting
	err := s.db.WithContext(ctx).
		Where("key = ?", models.SettingResultPublished).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.db.WithContext(ctx).Create(&models.SystemSetting{
				Key:   models.SettingResultPublished,
				Value: value,
			}).Error
		}
		return err
	}

	return s.db.WithContext(ctx).
		Model(&setting).
		Update("value", value).Error
}
