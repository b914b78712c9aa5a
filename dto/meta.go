package dto

import "fire-base/models"

// OptionDTO is one selectable value with its display label.
type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type MetaDTO struct {
	Categories      []OptionDTO `json:"categories"`
	ImpactLevels    []OptionDTO `json:"impact_levels"`
	EffortLevels    []OptionDTO `json:"effort_levels"`
	Statuses        []OptionDTO `json:"statuses"`
	CoachingIntents []OptionDTO `json:"coaching_intents"`
	SortOptions     []OptionDTO `json:"sort_options"`
	DefaultSort     string      `json:"default_sort"`
}

func NewMetaDTO() MetaDTO {
	meta := MetaDTO{DefaultSort: string(models.DefaultSortOption)}
	for _, c := range models.AllCategories {
		meta.Categories = append(meta.Categories, OptionDTO{Value: string(c), Label: string(c)})
	}
	for _, l := range models.AllLevels {
		meta.ImpactLevels = append(meta.ImpactLevels, OptionDTO{Value: string(l), Label: string(l)})
		meta.EffortLevels = append(meta.EffortLevels, OptionDTO{Value: string(l), Label: string(l)})
	}
	for _, s := range models.AllStatuses {
		meta.Statuses = append(meta.Statuses, OptionDTO{Value: string(s), Label: models.StatusLabel(s)})
	}
	for _, t := range models.AllCoachingPromptTypes {
		meta.CoachingIntents = append(meta.CoachingIntents, OptionDTO{Value: string(t), Label: models.CoachingLabel(t)})
	}
	for _, o := range models.AllSortOptions {
		meta.SortOptions = append(meta.SortOptions, OptionDTO{Value: string(o), Label: models.SortOptionLabel(o)})
	}
	return meta
}
