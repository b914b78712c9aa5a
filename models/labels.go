package models

var statusLabels = map[ProgressStatus]string{
	StatusNotStarted: "시작 안 함",
	StatusInProgress: "진행 중",
	StatusCompleted:  "완료됨",
	StatusOnHold:     "보류 중",
}

var coachingLabels = map[CoachingPromptType]string{
	CoachingActionPlanDetail:        "실행 계획 상세화",
	CoachingRiskAnalysis:            "리스크 분석",
	CoachingAlternativePerspectives: "다른 관점 제안",
	CoachingUserSpecificQuery:       "사용자 지정 질문",
	CoachingExploreResources:        "관련 자료 및 심층 정보 탐색",
	CoachingIdeaElaboration:         "아이디어 심층 탐구",
}

var sortOptionLabels = map[SortOption]string{
	SortCreatedAtDesc: "생성일 (최신 순)",
	SortCreatedAtAsc:  "생성일 (오래된 순)",
	SortTitleAsc:      "제목 (오름차순)",
	SortTitleDesc:     "제목 (내림차순)",
	SortImpactDesc:    "잠재적 효과 (높음 > 낮음)",
	SortImpactAsc:     "잠재적 효과 (낮음 > 높음)",
	SortEffortAsc:     "필요 노력 (낮음 > 높음)",
	SortEffortDesc:    "필요 노력 (높음 > 낮음)",
}

// StatusLabel 은 한국어 라벨을 반환한다. 모르는 값이면 원래 값을 그대로 쓴다.
func StatusLabel(s ProgressStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func CoachingLabel(t CoachingPromptType) string {
	if l, ok := coachingLabels[t]; ok {
		return l
	}
	return string(t)
}

func SortOptionLabel(s SortOption) string {
	if l, ok := sortOptionLabels[s]; ok {
		return l
	}
	return string(s)
}

var refinementPrompts = map[Category][]string{
	CategoryIncomeGeneration: {
		"이 수입원을 통해 월 목표 수입은 얼마인가요?",
		"주요 타겟 고객은 누구인가요?",
		"수익 창출을 위해 어떤 기술이나 지식이 필요한가요?",
		"첫 고객/매출을 만들기 위한 가장 중요한 단계는 무엇인가요?",
	},
	CategoryExpenseReduction: {
		"이 절약 방법을 통해 월 평균 얼마를 아낄 수 있을 것으로 예상하나요?",
		"실천하기 위해 가장 큰 장애물은 무엇인가요?",
		"이 방법 외에 추가로 고려할 수 있는 절약 아이템이 있나요?",
		"이 절약이 삶의 질에 미칠 수 있는 영향은 무엇인가요?",
	},
	CategoryInvestment: {
		"이 투자 전략의 예상 연간 수익률은 어느 정도인가요?",
		"감당할 수 있는 최대 손실률은 어느 정도인가요?",
		"투자를 위해 필요한 최소 자본금과 기간은 어떻게 되나요?",
		"이 투자와 관련된 주요 위험 요인은 무엇이라고 생각하나요?",
	},
	CategoryOther: {
		"이 아이디어를 통해 궁극적으로 이루고 싶은 목표는 무엇인가요?",
		"성공적인 실행을 위해 가장 필요한 자원(시간, 돈, 기술 등)은 무엇인가요?",
		"아이디어를 실현하는 과정에서 예상되는 어려움은 무엇인가요?",
		"이 아이디어가 당신의 FIRE 목표 달성에 어떻게 기여할 수 있나요?",
	},
}

// RefinementPromptsFor 는 카테고리별 기본 질문의 새 복사본을 반환한다.
func RefinementPromptsFor(c Category) []string {
	src := refinementPrompts[c]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// BrainstormExamples 는 목록이 비어 있을 때 보여주는 예시 주제다.
var BrainstormExamples = []string{
	"새로운 FIRE 아이디어를 추천해주세요.",
	"경제적 자유를 위한 영감을 주세요.",
	"오늘 시도해볼 만한 부수입 아이템은?",
	"초보자를 위한 투자 아이디어 알려줘.",
	"지출을 줄일 수 있는 창의적인 방법은?",
	"FIRE 달성에 도움될 만한 아이디어 좀!",
	"색다른 재테크 아이디어가 있을까요?",
	"월 10만원으로 시작할 수 있는 소액 투자 아이디어 추천해줘.",
	"자동으로 돈 버는 시스템 구축 아이디어는?",
	"직장인 현실적인 부업 아이디어 좀 알려줘.",
}
