package models

import (
	"time"

	"gorm.io/datatypes"
)

// EnginePrompt is the configuration of one conversational engine. The engine
// selector is the primary key, so there is exactly one active configuration
// per engine and a create-or-replace is last-write-wins.
type EnginePrompt struct {
	EngineType  string            `gorm:"primaryKey;column:engine_type" json:"engineType"`
	Description string            `json:"description"`
	Instruction string            `json:"instruction"`
	IsPublic    bool              `json:"isPublic"`
	OwnerID     string            `json:"ownerId,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// PromptFile is a reference document attached to an engine's prompt. Files
// are concatenated into the directive in full, in insertion order.
type PromptFile struct {
	EngineType  string    `gorm:"primaryKey;column:engine_type" json:"engineType"`
	FileID      string    `gorm:"primaryKey;column:file_id" json:"fileId"`
	FileName    string    `json:"fileName"`
	FileContent string    `json:"fileContent"`
	FileType    string    `json:"fileType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
