package models

// 열거형 값은 브라우저 앱이 저장해 온 값과 같다.
// 서버 이전에 쓰인 스냅샷도 그대로 디코딩된다.

// Category 아이디어 분류
type Category string

const (
	CategoryIncomeGeneration Category = "수입 증대"
	CategoryExpenseReduction Category = "지출 감소"
	CategoryInvestment       Category = "투자"
	CategoryOther            Category = "기타"
)

// AllCategories 는 선언 순서다. 프롬프트 문구와 옵션 목록이 이 순서를 쓴다.
var AllCategories = []Category{
	CategoryIncomeGeneration,
	CategoryExpenseReduction,
	CategoryInvestment,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Level is shared by ImpactLevel and EffortLevel.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

type ImpactLevel = Level
type EffortLevel = Level

var AllLevels = []Level{LevelLow, LevelMedium, LevelHigh}

func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// Rank 는 low < medium < high 순서를 매긴다. 모르는 값은 -1.
func (l Level) Rank() int {
	for i, v := range AllLevels {
		if l == v {
			return i
		}
	}
	return -1
}

// ProgressStatus 진행 상태
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "Not Started"
	StatusInProgress ProgressStatus = "In Progress"
	StatusCompleted  ProgressStatus = "Completed"
	StatusOnHold     ProgressStatus = "On Hold"
)

var AllStatuses = []ProgressStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusOnHold,
}

func (s ProgressStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CoachingPromptType 은 AI 코칭 요청 하나의 의도다.
type CoachingPromptType string

const (
	CoachingActionPlanDetail        CoachingPromptType = "ACTION_PLAN_DETAIL"
	CoachingRiskAnalysis            CoachingPromptType = "RISK_ANALYSIS"
	CoachingAlternativePerspectives CoachingPromptType = "ALTERNATIVE_PERSPECTIVES"
	CoachingUserSpecificQuery       CoachingPromptType = "USER_SPECIFIC_QUERY"
	CoachingExploreResources        CoachingPromptType = "EXPLORE_RESOURCES"
	CoachingIdeaElaboration         CoachingPromptType = "IDEA_ELABORATION"
)

var AllCoachingPromptTypes = []CoachingPromptType{
	CoachingActionPlanDetail,
	CoachingRiskAnalysis,
	CoachingAlternativePerspectives,
	CoachingUserSpecificQuery,
	CoachingExploreResources,
	CoachingIdeaElaboration,
}

func (t CoachingPromptType) Valid() bool {
	for _, v := range AllCoachingPromptTypes {
		if t == v {
			return true
		}
	}
	return false
}

// UsesSearch 는 해당 의도가 구글 검색 그라운딩을 쓰는지 알려준다.
func (t CoachingPromptType) UsesSearch() bool {
	return t == CoachingExploreResources
}

// SortOption 목록 정렬 방식
type SortOption string

const (
	SortCreatedAtDesc SortOption = "createdAtDesc"
	SortCreatedAtAsc  SortOption = "createdAtAsc"
	SortTitleAsc      SortOption = "titleAsc"
	SortTitleDesc     SortOption = "titleDesc"
	SortImpactDesc    SortOption = "impactDesc"
	SortImpactAsc     SortOption = "impactAsc"
	SortEffortAsc     SortOption = "effortAsc"
	SortEffortDesc    SortOption = "effortDesc"
)

var AllSortOptions = []SortOption{
	SortCreatedAtDesc,
	SortCreatedAtAsc,
	SortTitleAsc,
	SortTitleDesc,
	SortImpactDesc,
	SortImpactAsc,
	SortEffortAsc,
	SortEffortDesc,
}

const DefaultSortOption = SortCreatedAtDesc

func (s SortOption) Valid() bool {
	for _, v := range AllSortOptions {
		if s == v {
			return true
		}
	}
	return false
}

// ParseSortOption 은 빈 값이나 모르는 값이면 기본 정렬로 돌아간다.
func ParseSortOption(s string) SortOption {
	opt := SortOption(s)
	if opt.Valid() {
		return opt
	}
	return DefaultSortOption
}
