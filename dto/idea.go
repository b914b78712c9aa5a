package dto

import (
	"fire-base/models"
	"fire-base/store"
)

// IdeaListDTO is the derived view plus the counters the list screen needs to
// tell "no ideas yet" apart from "nothing matches the filters".
// swagger:model IdeaListDTO
type IdeaListDTO struct {
	Data             []models.Idea `json:"data"`
	Total            int           `json:"total" example:"12"`
	HasActiveFilters bool          `json:"has_active_filters"`
	Sort             string        `json:"sort" example:"createdAtDesc"`
}

// IdeaInputDTO carries the user-editable fields of an idea. Omitted fields
// keep their current (or template) value.
type IdeaInputDTO struct {
	Title             string                `json:"title" example:"중고 거래로 부수입 만들기"`
	Category          models.Category       `json:"category" example:"수입 증대"`
	Description       *string               `json:"description"`
	PotentialImpact   models.ImpactLevel    `json:"potentialImpact" example:"Medium"`
	EffortLevel       models.EffortLevel    `json:"effortLevel" example:"Low"`
	InitialSteps      []string              `json:"initialSteps"`
	RefinementPrompts []string              `json:"refinementPrompts"`
	UserRefinements   map[string]string     `json:"userRefinements"`
	Tags              []string              `json:"tags"`
	Status            models.ProgressStatus `json:"status" example:"Not Started"`
	IsFavorite        *bool                 `json:"isFavorite"`
}

// ApplyTo overlays the provided fields onto idea. A category change on a
// custom idea resets its refinement questions.
func (in IdeaInputDTO) ApplyTo(idea *models.Idea) {
	idea.Title = in.Title
	if in.Category != "" && in.Category != idea.Category {
		idea.ChangeCategory(in.Category)
	}
	if in.Description != nil {
		idea.Description = *in.Description
	}
	if in.PotentialImpact != "" {
		idea.PotentialImpact = in.PotentialImpact
	}
	if in.EffortLevel != "" {
		idea.EffortLevel = in.EffortLevel
	}
	if in.InitialSteps != nil {
		idea.InitialSteps = append([]string(nil), in.InitialSteps...)
	}
	if in.RefinementPrompts != nil {
		idea.RefinementPrompts = append([]string(nil), in.RefinementPrompts...)
	}
	if in.UserRefinements != nil {
		idea.UserRefinements = make(map[string]string, len(in.UserRefinements))
		for k, v := range in.UserRefinements {
			idea.UserRefinements[k] = v
		}
	}
	if in.Tags != nil {
		idea.Tags = append([]string(nil), in.Tags...)
	}
	if in.Status != "" {
		idea.Status = in.Status
	}
	if in.IsFavorite != nil {
		idea.IsFavorite = *in.IsFavorite
	}
}

type StatusRequestDTO struct {
	Status models.ProgressStatus `json:"status" binding:"required" example:"In Progress"`
}

type TagRequestDTO struct {
	Tag string `json:"tag" binding:"required" example:"부업"`
}

type RefinementRequestDTO struct {
	Prompt string `json:"prompt" binding:"required"`
	Answer string `json:"answer"`
}

type BrainstormRequestDTO struct {
	Topic string `json:"topic" example:"직장인 현실적인 부업 아이디어 좀 알려줘."`
}

type BrainstormResponseDTO struct {
	Data   []models.Idea `json:"data"`
	Notice *store.Notice `json:"notice,omitempty"`
}

type CoachingRequestDTO struct {
	Intent   models.CoachingPromptType `json:"intent" binding:"required" example:"RISK_ANALYSIS"`
	Question string                    `json:"question"`
}

type CredentialRequestDTO struct {
	APIKey string `json:"api_key" binding:"required"`
}
