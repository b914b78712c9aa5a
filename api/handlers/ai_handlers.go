package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fire-base/dto"
	"fire-base/services"
	"fire-base/store"
)

// BrainstormHandler godoc
// @Summary      Brainstorm ideas
// @Description  Asks Gemini for three ideas about the topic and adds them to the collection
// @Tags         ai
// @Accept       json
// @Param        body  body  dto.BrainstormRequestDTO  true  "Topic"
// @Produce      json
// @Success      201  {object}  dto.BrainstormResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      412  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /brainstorm [post]
func BrainstormHandler(svc *services.IdeaService, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.BrainstormRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		created, err := svc.Brainstorm(c.Request.Context(), req.Topic)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusCreated
		if len(created) == 0 {
			status = http.StatusOK
		}
		c.JSON(status, dto.BrainstormResponseDTO{Data: created, Notice: st.Status().Notice})
	}
}

// SuggestionsHandler godoc
// @Summary      Brainstorm topic suggestions
// @Description  Built-in example prompts with a random pick, plus recent headlines from inspiration feeds
// @Tags         ai
// @Produce      json
// @Success      200  {object}  services.Suggestions
// @Router       /brainstorm/suggestions [get]
func SuggestionsHandler(svc *services.SuggestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Suggest(c.Request.Context()))
	}
}

// CoachingHandler godoc
// @Summary      Request AI coaching
// @Description  Adds a coaching session to the idea; EXPLORE_RESOURCES returns web sources
// @Tags         ai
// @Accept       json
// @Param        id    path  string                  true  "Idea ID"
// @Param        body  body  dto.CoachingRequestDTO  true  "Intent and optional question"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      412  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/coaching [post]
func CoachingHandler(svc *services.IdeaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CoachingRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		idea, err := svc.Coach(c.Request.Context(), c.Param("id"), req.Intent, req.Question)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// GenerateImageHandler godoc
// @Summary      Generate idea image
// @Description  Renders one illustration and stores it as a data URL
// @Tags         ai
// @Param        id   path  string  true  "Idea ID"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      412  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/image [post]
func GenerateImageHandler(svc *services.IdeaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := svc.GenerateImage(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}
