package api

import (
	"net/http"
	"strconv"

	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func listConversationsHandler(conversationService *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		engineType := c.Query("engineType")
		limit, _ := strconv.Atoi(c.Query("limit"))

		conversations, err := conversationService.ListConversations(userID, engineType, limit)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": conversations})
	}
}

func createConversationHandler(conversationService *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			ConversationID string `json:"conversationId"`
			UserID         string `json:"userId" binding:"required"`
			EngineType     string `json:"engineType"`
			Title          string `json:"title"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		conversation, err := conversationService.CreateConversation(request.ConversationID, request.UserID, request.EngineType, request.Title)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conversation)
	}
}

func getConversationHandler(conversationService *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, err := conversationService.GetConversation(c.Param("conversationId"), c.Query("userId"))
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, conversation)
	}
}

func updateConversationTitleHandler(conversationService *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			UserID string `json:"userId"`
			Title  string `json:"title" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		if err := conversationService.UpdateTitle(c.Param("conversationId"), request.UserID, request.Title); err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Title updated"})
	}
}

func deleteConversationHandler(conversationService *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := conversationService.DeleteConversation(c.Param("conversationId"), c.Query("userId")); err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
	}
}
