package store

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fire-base/models"
)

// "No constraint" values for each filter axis. An empty string means the same.
const (
	AllCategories   = "ALL_CATEGORIES"
	AllImpactLevels = "ALL_IMPACT_LEVELS"
	AllEffortLevels = "ALL_EFFORT_LEVELS"
	AllStatuses     = "ALL_STATUSES"
)

// Filters 의 조건은 모두 AND 로 묶인다.
type Filters struct {
	FavoritesOnly bool
	Category      string
	Impact        string
	Effort        string
	Status        string
}

// DefaultFilters 는 모든 아이디어와 일치한다.
func DefaultFilters() Filters {
	return Filters{
		Category: AllCategories,
		Impact:   AllImpactLevels,
		Effort:   AllEffortLevels,
		Status:   AllStatuses,
	}
}

// Active 는 결과를 제한하는 조건이 하나라도 있는지 알려준다.
// "필터에 맞는 아이디어가 없음"과 "아이디어가 아예 없음"을 구분할 때 쓴다.
func (f Filters) Active() bool {
	return f.FavoritesOnly ||
		constrained(f.Category, AllCategories) ||
		constrained(f.Impact, AllImpactLevels) ||
		constrained(f.Effort, AllEffortLevels) ||
		constrained(f.Status, AllStatuses)
}

func (f Filters) match(idea models.Idea) bool {
	if f.FavoritesOnly && !idea.IsFavorite {
		return false
	}
	if constrained(f.Category, AllCategories) && string(idea.Category) != f.Category {
		return false
	}
	if constrained(f.Impact, AllImpactLevels) && string(idea.PotentialImpact) != f.Impact {
		return false
	}
	if constrained(f.Effort, AllEffortLevels) && string(idea.EffortLevel) != f.Effort {
		return false
	}
	if constrained(f.Status, AllStatuses) && string(idea.Status) != f.Status {
		return false
	}
	return true
}

func constrained(v, sentinel string) bool {
	return v != "" && v != sentinel
}

// DeriveView 는 ideas 의 복사본을 필터링하고 정렬한다.
// 입력은 수정하지 않고, 동률은 입력 순서를 유지한다.
func DeriveView(ideas []models.Idea, filters Filters, opt models.SortOption) []models.Idea {
	out := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if filters.match(idea) {
			out = append(out, idea.Clone())
		}
	}

	less := comparator(opt)
	sort.SliceStable(out, func(a, b int) bool {
		return less(out[a], out[b])
	})
	return out
}

func comparator(opt models.SortOption) func(a, b models.Idea) bool {
	switch opt {
	case models.SortCreatedAtAsc:
		return func(a, b models.Idea) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.SortTitleAsc:
		col := collate.New(language.Korean)
		return func(a, b models.Idea) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case models.SortTitleDesc:
		col := collate.New(language.Korean)
		return func(a, b models.Idea) bool { return col.CompareString(a.Title, b.Title) > 0 }
	case models.SortImpactAsc:
		return func(a, b models.Idea) bool { return a.PotentialImpact.Rank() < b.PotentialImpact.Rank() }
	case models.SortImpactDesc:
		return func(a, b models.Idea) bool { return a.PotentialImpact.Rank() > b.PotentialImpact.Rank() }
	case models.SortEffortAsc:
		return func(a, b models.Idea) bool { return a.EffortLevel.Rank() < b.EffortLevel.Rank() }
	case models.SortEffortDesc:
		return func(a, b models.Idea) bool { return a.EffortLevel.Rank() > b.EffortLevel.Rank() }
	default:
		return func(a, b models.Idea) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}
