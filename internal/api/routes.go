package api

import (
	"pressroom_ai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the REST surface under /api.
func SetupRoutes(r *gin.Engine, conversationService *services.ConversationService, promptStore services.PromptStore, usageService *services.UsageService) {
	api := r.Group("/api")
	{
		api.GET("/conversations", listConversationsHandler(conversationService))
		api.POST("/conversations", createConversationHandler(conversationService))
		api.GET("/conversations/:conversationId", getConversationHandler(conversationService))
		api.PATCH("/conversations/:conversationId", updateConversationTitleHandler(conversationService))
		api.DELETE("/conversations/:conversationId", deleteConversationHandler(conversationService))

		api.GET("/prompts", listPromptsHandler(promptStore))
		api.GET("/prompts/:engineType", getPromptHandler(promptStore))
		api.PUT("/prompts/:engineType", savePromptHandler(promptStore))
		api.PATCH("/prompts/:engineType", patchPromptHandler(promptStore))
		api.DELETE("/prompts/:engineType", deletePromptHandler(promptStore))
		api.GET("/prompts/:engineType/files", listPromptFilesHandler(promptStore))
		api.POST("/prompts/:engineType/files", addPromptFileHandler(promptStore))
		api.PATCH("/prompts/:engineType/files/:fileId", updatePromptFileHandler(promptStore))
		api.DELETE("/prompts/:engineType/files/:fileId", deletePromptFileHandler(promptStore))

		api.GET("/usage/:userId/:engineType", getUsageHandler(usageService))
		api.POST("/usage", recordUsageHandler(usageService))
	}
}
