package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fire-base/dto"
	"fire-base/models"
	"fire-base/services"
	"fire-base/store"
)

// ListIdeasHandler godoc
// @Summary      List ideas
// @Description  Filtered and sorted view of the idea collection
// @Tags         ideas
// @Param        favorites  query  bool    false  "Favorites only"
// @Param        category   query  string  false  "Category or ALL_CATEGORIES"
// @Param        impact     query  string  false  "Impact level or ALL_IMPACT_LEVELS"
// @Param        effort     query  string  false  "Effort level or ALL_EFFORT_LEVELS"
// @Param        status     query  string  false  "Progress status or ALL_STATUSES"
// @Param        sort       query  string  false  "Sort option (default createdAtDesc)"
// @Produce      json
// @Success      200  {object}  dto.IdeaListDTO
// @Router       /ideas [get]
func ListIdeasHandler(svc *services.IdeaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		favorites, _ := strconv.ParseBool(c.DefaultQuery("favorites", "false"))
		in := services.ListIdeasInput{
			Filters: store.Filters{
				FavoritesOnly: favorites,
				Category:      c.DefaultQuery("category", store.AllCategories),
				Impact:        c.DefaultQuery("impact", store.AllImpactLevels),
				Effort:        c.DefaultQuery("effort", store.AllEffortLevels),
				Status:        c.DefaultQuery("status", store.AllStatuses),
			},
			Sort: models.ParseSortOption(c.Query("sort")),
		}
		res := svc.List(in)
		c.JSON(http.StatusOK, dto.IdeaListDTO{
			Data:             res.Ideas,
			Total:            res.Total,
			HasActiveFilters: res.HasActiveFilters,
			Sort:             string(in.Sort),
		})
	}
}

// GetIdeaTemplateHandler godoc
// @Summary      Manual idea template
// @Description  Blank idea with defaults for the manual editor; not persisted
// @Tags         ideas
// @Produce      json
// @Success      200  {object}  models.Idea
// @Router       /ideas/template [get]
func GetIdeaTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.NewManualIdea())
	}
}

// GetIdeaHandler godoc
// @Summary      Get idea by id
// @Tags         ideas
// @Param        id   path   string  true  "Idea ID"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id} [get]
func GetIdeaHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// CreateIdeaHandler godoc
// @Summary      Create idea manually
// @Description  Creates a custom idea from the template overlaid with the body
// @Tags         ideas
// @Accept       json
// @Param        body  body  dto.IdeaInputDTO  true  "Idea fields"
// @Produce      json
// @Success      201  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /ideas [post]
func CreateIdeaHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.IdeaInputDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		idea := models.NewManualIdea()
		in.ApplyTo(&idea)
		saved, _, err := st.CreateOrUpdateManual(c.Request.Context(), idea)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, saved)
	}
}

// UpdateIdeaHandler godoc
// @Summary      Update idea
// @Description  Overlays the body onto the stored idea; id and createdAt are kept
// @Tags         ideas
// @Accept       json
// @Param        id    path  string            true  "Idea ID"
// @Param        body  body  dto.IdeaInputDTO  true  "Idea fields"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id} [put]
func UpdateIdeaHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.IdeaInputDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		saved, err := st.UpdateManual(c.Request.Context(), c.Param("id"), in.ApplyTo)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// DeleteIdeaHandler godoc
// @Summary      Delete idea
// @Description  Requires confirm=true; deleting an unknown id is a no-op
// @Tags         ideas
// @Param        id       path   string  true  "Idea ID"
// @Param        confirm  query  bool    true  "Explicit confirmation"
// @Produce      json
// @Success      204
// @Failure      428  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id} [delete]
func DeleteIdeaHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		confirmed, _ := strconv.ParseBool(c.Query("confirm"))
		if err := st.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ToggleFavoriteHandler godoc
// @Summary      Toggle favorite
// @Tags         ideas
// @Param        id   path   string  true  "Idea ID"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/favorite [post]
func ToggleFavoriteHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.ToggleFavorite(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// SetStatusHandler godoc
// @Summary      Set progress status
// @Tags         ideas
// @Accept       json
// @Param        id    path  string                true  "Idea ID"
// @Param        body  body  dto.StatusRequestDTO  true  "New status"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/status [put]
func SetStatusHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.StatusRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		idea, err := st.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// AddTagHandler godoc
// @Summary      Add tag
// @Description  Tag is trimmed and whitespace runs become "-"; duplicates are ignored
// @Tags         tags
// @Accept       json
// @Param        id    path  string             true  "Idea ID"
// @Param        body  body  dto.TagRequestDTO  true  "Tag"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Router       /ideas/{id}/tags [post]
func AddTagHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TagRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		idea, err := st.AddTag(c.Request.Context(), c.Param("id"), req.Tag)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// RenameTagHandler godoc
// @Summary      Rename tag
// @Description  An empty replacement removes the tag
// @Tags         tags
// @Accept       json
// @Param        id    path  string             true  "Idea ID"
// @Param        tag   path  string             true  "Current tag"
// @Param        body  body  dto.TagRequestDTO  true  "Replacement"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/tags/{tag} [put]
func RenameTagHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Tag string `json:"tag"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		idea, err := st.RenameTag(c.Request.Context(), c.Param("id"), c.Param("tag"), req.Tag)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// RemoveTagHandler godoc
// @Summary      Remove tag
// @Tags         tags
// @Param        id   path  string  true  "Idea ID"
// @Param        tag  path  string  true  "Tag"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Router       /ideas/{id}/tags/{tag} [delete]
func RemoveTagHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// SetRefinementHandler godoc
// @Summary      Answer a refinement prompt
// @Description  A blank answer removes the stored answer
// @Tags         ideas
// @Accept       json
// @Param        id    path  string                    true  "Idea ID"
// @Param        body  body  dto.RefinementRequestDTO  true  "Prompt and answer"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/refinements [put]
func SetRefinementHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RefinementRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		idea, err := st.SetRefinement(c.Request.Context(), c.Param("id"), req.Prompt, req.Answer)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// SelectIdeaHandler godoc
// @Summary      Select idea
// @Tags         selection
// @Param        id   path  string  true  "Idea ID"
// @Produce      json
// @Success      200  {object}  models.Idea
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /ideas/{id}/select [post]
func SelectIdeaHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.Select(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// GetSelectionHandler godoc
// @Summary      Current selection
// @Description  Reflects AI merges made after the idea was selected
// @Tags         selection
// @Produce      json
// @Success      200  {object}  models.Idea
// @Success      204
// @Router       /selection [get]
func GetSelectionHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, ok := st.Selected()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// ClearSelectionHandler godoc
// @Summary      Clear selection
// @Tags         selection
// @Success      204
// @Router       /selection [delete]
func ClearSelectionHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		st.ClearSelection()
		c.Status(http.StatusNoContent)
	}
}
