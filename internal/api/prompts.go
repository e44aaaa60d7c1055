package api

import (
	"net/http"

	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/models"
	"pressroom_ai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func listPromptsHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		prompts, err := promptStore.ListPrompts()
		if err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"prompts": prompts})
	}
}

func getPromptHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		engineType := c.Param("engineType")
		withFiles := c.DefaultQuery("withFiles", "true") != "false"

		var (
			prompt *models.EnginePrompt
			files  []models.PromptFile
			err    error
		)
		if withFiles {
			prompt, files, err = promptStore.GetPromptWithFiles(engineType)
		} else {
			prompt, err = promptStore.GetPrompt(engineType)
		}
		if err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		if prompt == nil {
			errors.HandleError(c, errors.New404Error("Prompt not found"))
			return
		}
		if !withFiles {
			c.JSON(http.StatusOK, gin.H{"prompt": prompt})
			return
		}
		c.JSON(http.StatusOK, gin.H{"prompt": prompt, "files": files})
	}
}

func savePromptHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Description string `json:"description"`
			Instruction string `json:"instruction"`
			IsPublic    bool   `json:"isPublic"`
			OwnerID     string `json:"ownerId"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		prompt := &models.EnginePrompt{
			EngineType:  c.Param("engineType"),
			Description: request.Description,
			Instruction: request.Instruction,
			IsPublic:    request.IsPublic,
			OwnerID:     request.OwnerID,
		}
		if err := promptStore.SavePrompt(prompt); err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, prompt)
	}
}

func patchPromptHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Description *string `json:"description"`
			Instruction *string `json:"instruction"`
			IsPublic    *bool   `json:"isPublic"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		prompt, err := promptStore.GetPrompt(c.Param("engineType"))
		if err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		if prompt == nil {
			errors.HandleError(c, errors.New404Error("Prompt not found"))
			return
		}

		if request.Description != nil {
			prompt.Description = *request.Description
		}
		if request.Instruction != nil {
			prompt.Instruction = *request.Instruction
		}
		if request.IsPublic != nil {
			prompt.IsPublic = *request.IsPublic
		}
		if err := promptStore.SavePrompt(prompt); err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, prompt)
	}
}

func deletePromptHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := promptStore.DeletePrompt(c.Param("engineType")); err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Prompt deleted"})
	}
}

func listPromptFilesHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := promptStore.ListFiles(c.Param("engineType"))
		if err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}

func addPromptFileHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			FileName    string `json:"fileName" binding:"required"`
			FileContent string `json:"fileContent" binding:"required"`
			FileType    string `json:"fileType"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		file := &models.PromptFile{
			EngineType:  c.Param("engineType"),
			FileID:      uuid.NewString(),
			FileName:    request.FileName,
			FileContent: request.FileContent,
			FileType:    request.FileType,
		}
		if err := promptStore.AddFile(file); err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusCreated, file)
	}
}

func updatePromptFileHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			FileName    *string `json:"fileName"`
			FileContent *string `json:"fileContent"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}
		if request.FileName == nil && request.FileContent == nil {
			errors.HandleError(c, errors.New400Error("Nothing to update"))
			return
		}

		err := promptStore.UpdateFile(c.Param("engineType"), c.Param("fileId"), request.FileName, request.FileContent)
		if err != nil {
			errors.HandleError(c, errors.New404Error("File not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "File updated"})
	}
}

func deletePromptFileHandler(promptStore services.PromptStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := promptStore.DeleteFile(c.Param("engineType"), c.Param("fileId")); err != nil {
			errors.HandleError(c, errors.New500Error(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
	}
}
