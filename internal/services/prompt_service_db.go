package services

import (
	"errors"
	"time"

	"pressroom_ai_go_backend/internal/models"

	"gorm.io/gorm"
)

// DefaultPromptStore implements PromptStore over gorm
type DefaultPromptStore struct {
	db *gorm.DB
}

// NewPromptStore creates a new DefaultPromptStore
func NewPromptStore(db *gorm.DB) PromptStore {
	return &DefaultPromptStore{db: db}
}

// GetPrompt retrieves one engine's configuration; (nil, nil) when absent
func (s *DefaultPromptStore) GetPrompt(engineType string) (*models.EnginePrompt, error) {
	var prompt models.EnginePrompt
	result := s.db.Where("engine_type = ?", engineType).First(&prompt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &prompt, nil
}

// GetPromptWithFiles retrieves the configuration plus its reference files
func (s *DefaultPromptStore) GetPromptWithFiles(engineType string) (*models.EnginePrompt, []models.PromptFile, error) {
	prompt, err := s.GetPrompt(engineType)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.ListFiles(engineType)
	if err != nil {
		return nil, nil, err
	}
	return prompt, files, nil
}

// ListPrompts retrieves every engine configuration
func (s *DefaultPromptStore) ListPrompts() ([]models.EnginePrompt, error) {
	var prompts []models.EnginePrompt
	result := s.db.Order("engine_type asc").Find(&prompts)
	if result.Error != nil {
		return nil, result.Error
	}
	return prompts, nil
}

// SavePrompt creates or replaces the configuration for its engine selector
// (last-write-wins, the selector is the primary key)
func (s *DefaultPromptStore) SavePrompt(prompt *models.EnginePrompt) error {
	return s.db.Save(prompt).Error
}

// DeletePrompt removes the configuration and its files
func (s *DefaultPromptStore) DeletePrompt(engineType string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("engine_type = ?", engineType).Delete(&models.PromptFile{}).Error; err != nil {
			return err
		}
		return tx.Where("engine_type = ?", engineType).Delete(&models.EnginePrompt{}).Error
	})
}

// ListFiles retrieves an engine's reference files in insertion order
func (s *DefaultPromptStore) ListFiles(engineType string) ([]models.PromptFile, error) {
	var files []models.PromptFile
	result := s.db.Where("engine_type = ?", engineType).
		Order("created_at asc").
		Find(&files)
	if result.Error != nil {
		return nil, result.Error
	}
	return files, nil
}

// AddFile attaches a reference file to an engine
func (s *DefaultPromptStore) AddFile(file *models.PromptFile) error {
	return s.db.Create(file).Error
}

// UpdateFile updates only the provided fields of one file
func (s *DefaultPromptStore) UpdateFile(engineType, fileID string, fileName, fileContent *string) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if fileName != nil {
		updates["file_name"] = *fileName
	}
	if fileContent != nil {
		updates["file_content"] = *fileContent
	}
	result := s.db.Model(&models.PromptFile{}).
		Where("engine_type = ? AND file_id = ?", engineType, fileID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteFile removes one reference file
func (s *DefaultPromptStore) DeleteFile(engineType, fileID string) error {
	return s.db.Where("engine_type = ? AND file_id = ?", engineType, fileID).
		Delete(&models.PromptFile{}).Error
}
