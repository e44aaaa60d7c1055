package api

import (
	"net/http"

	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// getUsageHandler serves today's ledger entry for one engine, or the full
// per-engine history when the engine segment is "all".
func getUsageHandler(usageService *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		engineType := c.Param("engineType")
		userPlan := c.Query("plan")

		if engineType == "all" {
			grouped, err := usageService.GetAllUsage(userID)
			if err != nil {
				errors.HandleError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"usage": grouped})
			return
		}

		update, err := usageService.GetUsage(userID, engineType, userPlan)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, update)
	}
}

func recordUsageHandler(usageService *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			UserID     string `json:"userId" binding:"required"`
			EngineType string `json:"engineType" binding:"required"`
			InputText  string `json:"inputText"`
			OutputText string `json:"outputText"`
			UserPlan   string `json:"userPlan"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			errors.HandleError(c, errors.New400Error(err.Error()))
			return
		}

		update, err := usageService.RecordTurn(request.UserID, request.EngineType, request.InputText, request.OutputText, request.UserPlan)
		if err != nil {
			errors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, update)
	}
}
