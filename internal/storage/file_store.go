package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/models"
)

// fileUser re-exposes the password hash that the API-facing model hides from
// JSON, so accounts survive a reload.
type fileUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

type fileData struct {
	Students []models.Student  `json:"students"`
	Users    []fileUser        `json:"users"`
	Settings map[string]string `json:"settings"`
}

// FileStore keeps everything in a single JSON file, rewritten atomically on
// each mutation. It is the local fallback driver; fine for demos, not for
// concurrent deployments sharing one file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	data   fileData
}

// OpenFileStore loads the file if it exists, otherwise starts empty.
func OpenFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	store := &FileStore{
		path:   path,
		logger: logger,
		data:   fileData{Settings: make(map[string]string)},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	if store.data.Settings == nil {
		store.data.Settings = make(map[string]string)
	}

	logger.Info("file store loaded",
		zap.String("path", path),
		zap.Int("students", len(store.data.Students)),
		zap.Int("users", len(store.data.Users)))
	return store, nil
}

func (s *FileStore) CreateStudent(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	s.data.Students = append(s.data.Students, *student)
	return s.persist()
}

func (s *FileStore) ListStudents(ctx context.Context, page, pageSize int) ([]models.Student, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := int64(len(s.data.Students))
	offset := (page - 1) * pageSize

	// Newest first: walk the append-ordered slice backwards.
	students := make([]models.Student, 0, pageSize)
	for i := len(s.data.Students) - 1 - offset; i >= 0 && len(students) < pageSize; i-- {
		students = append(students, s.data.Students[i])
	}
	return students, total, nil
}

func (s *FileStore) PatchStudent(ctx context.Context, id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Students {
		if s.data.Students[i].ID.String() != id {
			continue
		}
		applyStudentPatch(&s.data.Students[i], patch)
		return s.persist()
	}
	return ErrNotFound
}

func (s *FileStore) AllStudents(ctx context.Context) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students := make([]models.Student, len(s.data.Students))
	copy(students, s.data.Students)
	return students, nil
}

func (s *FileStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.data.Users = append(s.data.Users, fileUser{User: *user, PasswordHash: user.PasswordHash})
	return s.persist()
}

func (s *FileStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, candidate := range s.data.Users {
		if strings.EqualFold(candidate.Email, email) {
			user := candidate.User
			user.PasswordHash = candidate.PasswordHash
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Users {
		if strings.EqualFold(s.data.Users[i].Email, email) {
			s.data.Users[i].PasswordHash = passwordHash
			return s.persist()
		}
	}
	return ErrNotFound
}

func (s *FileStore) ResultPublished(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings[models.SettingResultPublished] == "true", nil
}

func (s *FileStore) SetResultPublished(ctx context.Context, published bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if published {
		s.data.Settings[models.SettingResultPublished] = "true"
	} else {
		s.data.Settings[models.SettingResultPublished] = "false"
	}
	return s.persist()
}

func applyStudentPatch(student *models.Student, patch map[string]any) {
	for column, value := range patch {
		switch column {
		case "roll_number":
			student.RollNumber = toStringPtr(value)
		case "exam_center":
			student.ExamCenter = toStringPtr(value)
		case "result_status":
			if text, ok := value.(string); ok {
				student.ResultStatus = text
			}
		case "document_url":
			if text, ok := value.(string); ok {
				student.DocumentURL = text
			}
		}
	}
}

func toStringPtr(value any) *string {
	if text, ok := value.(string); ok {
		return &text
	}
	return nil
}

// persist writes through a temp file so a crash mid-write cannot truncate the
// data set. Callers hold the lock.
func (s *FileStore) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
