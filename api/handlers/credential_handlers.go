package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fire-base/dto"
	"fire-base/services"
)

// GetCredentialHandler godoc
// @Summary      Credential status
// @Description  Where the Gemini key comes from (env, local, none). The key itself is never returned.
// @Tags         credential
// @Produce      json
// @Success      200  {object}  services.CredentialStatus
// @Router       /credential [get]
func GetCredentialHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.Status(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// SaveCredentialHandler godoc
// @Summary      Save user credential
// @Tags         credential
// @Accept       json
// @Param        body  body  dto.CredentialRequestDTO  true  "Gemini API key"
// @Produce      json
// @Success      200  {object}  services.CredentialStatus
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /credential [put]
func SaveCredentialHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CredentialRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		status, err := svc.Save(c.Request.Context(), req.APIKey)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// ClearCredentialHandler godoc
// @Summary      Remove user credential
// @Tags         credential
// @Produce      json
// @Success      200  {object}  services.CredentialStatus
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /credential [delete]
func ClearCredentialHandler(svc *services.CredentialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.Clear(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
