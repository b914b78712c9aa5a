package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrEmptyTitle      = errors.New("idea title is required")
	ErrInvalidCategory = errors.New("invalid idea category")
	ErrInvalidLevel    = errors.New("invalid impact or effort level")
	ErrInvalidStatus   = errors.New("invalid progress status")
)

// WebSource 는 검색 그라운딩 코칭이 돌려준 출처 하나다.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundingChunk 는 스냅샷이 써 온 {web: {uri, title}} 모양을 유지한다.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// AICoachingSession 은 Idea 에 속하며 따로 생명주기가 없다.
type AICoachingSession struct {
	PromptType        CoachingPromptType `json:"promptType"`
	PromptSent        string             `json:"promptSent"`
	Response          string             `json:"response"`
	Timestamp         time.Time          `json:"timestamp"`
	GroundingMetadata []GroundingChunk   `json:"groundingMetadata,omitempty"`
}

// Idea 는 유일한 영속 엔티티다.
// ImageURL 과 ImagePrompt 는 함께 채워지거나 함께 비어 있다.
type Idea struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Category           Category            `json:"category"`
	Description        string              `json:"description"`
	PotentialImpact    ImpactLevel         `json:"potentialImpact"`
	EffortLevel        EffortLevel         `json:"effortLevel"`
	InitialSteps       []string            `json:"initialSteps"`
	RefinementPrompts  []string            `json:"refinementPrompts"`
	UserRefinements    map[string]string   `json:"userRefinements"`
	IsCustom           bool                `json:"isCustom"`
	CreatedAt          time.Time           `json:"createdAt"`
	IsFavorite         bool                `json:"isFavorite"`
	Status             ProgressStatus      `json:"status"`
	Tags               []string            `json:"tags"`
	AICoachingSessions []AICoachingSession `json:"aiCoachingSessions"`
	ImageURL           string              `json:"imageUrl,omitempty"`
	ImagePrompt        string              `json:"imagePrompt,omitempty"`
}

// ApplyDefaults 는 레코드에 빠져 있을 수 있는 필드를 기본값으로 채운다.
// 기본값 규칙은 여기에만 있다. 저장소 읽기, 직접 저장, 시드 승격이 모두 이 함수를 거친다.
func (i *Idea) ApplyDefaults() {
	if i.Status == "" {
		i.Status = StatusNotStarted
	}
	if i.Tags == nil {
		i.Tags = []string{}
	}
	if i.AICoachingSessions == nil {
		i.AICoachingSessions = []AICoachingSession{}
	}
	if i.InitialSteps == nil {
		i.InitialSteps = []string{}
	}
	if i.RefinementPrompts == nil {
		i.RefinementPrompts = []string{}
	}
	if i.UserRefinements == nil {
		i.UserRefinements = map[string]string{}
	}
}

// Validate checks the fields a user or a client can get wrong.
func (i Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if !i.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, i.Category)
	}
	if !i.PotentialImpact.Valid() || !i.EffortLevel.Valid() {
		return fmt.Errorf("%w: impact=%q effort=%q", ErrInvalidLevel, i.PotentialImpact, i.EffortLevel)
	}
	if i.Status != "" && !i.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, i.Status)
	}
	return nil
}

// Clone 은 깊은 복사본을 반환한다. 호출자와 스토어가 슬라이스나 맵을 공유하지 않는다.
func (i Idea) Clone() Idea {
	out := i
	out.InitialSteps = cloneStrings(i.InitialSteps)
	out.RefinementPrompts = cloneStrings(i.RefinementPrompts)
	out.Tags = cloneStrings(i.Tags)
	if i.UserRefinements != nil {
		out.UserRefinements = make(map[string]string, len(i.UserRefinements))
		for k, v := range i.UserRefinements {
			out.UserRefinements[k] = v
		}
	}
	out.AICoachingSessions = CloneSessions(i.AICoachingSessions)
	return out
}

func CloneSessions(in []AICoachingSession) []AICoachingSession {
	if in == nil {
		return nil
	}
	out := make([]AICoachingSession, len(in))
	for idx, s := range in {
		out[idx] = s
		if s.GroundingMetadata != nil {
			out[idx].GroundingMetadata = make([]GroundingChunk, len(s.GroundingMetadata))
			for j, c := range s.GroundingMetadata {
				if c.Web != nil {
					web := *c.Web
					c.Web = &web
				}
				out[idx].GroundingMetadata[j] = c
			}
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SortSessionsNewestFirst 는 코칭 기록을 timestamp 기준 최신 순으로 정렬한다.
func SortSessionsNewestFirst(sessions []AICoachingSession) {
	sort.SliceStable(sessions, func(a, b int) bool {
		return sessions[a].Timestamp.After(sessions[b].Timestamp)
	})
}

// NewManualIdea 는 사용자가 직접 작성할 때 쓰는 템플릿이다.
// id 와 createdAt 은 비워 두고 첫 저장 때 스토어가 채운다.
func NewManualIdea() Idea {
	idea := Idea{
		Category:          CategoryOther,
		PotentialImpact:   LevelMedium,
		EffortLevel:       LevelMedium,
		InitialSteps:      []string{""},
		RefinementPrompts: RefinementPromptsFor(CategoryOther),
		UserRefinements:   map[string]string{},
		IsCustom:          true,
		Status:            StatusNotStarted,
	}
	idea.ApplyDefaults()
	return idea
}

// ChangeCategory 는 카테고리를 바꾼다. 직접 작성한 아이디어는 새 카테고리의
// 구체화 질문을 받고 이전 질문의 답은 지워진다.
func (i *Idea) ChangeCategory(c Category) {
	i.Category = c
	if i.IsCustom {
		i.RefinementPrompts = RefinementPromptsFor(c)
		i.UserRefinements = map[string]string{}
	}
}

// IdeaSeed 는 Idea 로 승격되기 전 AI 가 제안한 뼈대다.
type IdeaSeed struct {
	Title             string      `json:"title"`
	Category          Category    `json:"category"`
	Description       string      `json:"description"`
	PotentialImpact   ImpactLevel `json:"potentialImpact"`
	EffortLevel       EffortLevel `json:"effortLevel"`
	InitialSteps      []string    `json:"initialSteps"`
	RefinementPrompts []string    `json:"refinementPrompts"`
}

func (s IdeaSeed) Validate() error {
	if !s.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
	}
	if !s.PotentialImpact.Valid() || !s.EffortLevel.Valid() {
		return fmt.Errorf("%w: impact=%q effort=%q", ErrInvalidLevel, s.PotentialImpact, s.EffortLevel)
	}
	return nil
}

// Promote 는 시드를 기본값이 채워진 Idea 로 만든다.
func (s IdeaSeed) Promote(id string, createdAt time.Time) Idea {
	idea := Idea{
		ID:                id,
		Title:             s.Title,
		Category:          s.Category,
		Description:       s.Description,
		PotentialImpact:   s.PotentialImpact,
		EffortLevel:       s.EffortLevel,
		InitialSteps:      cloneStrings(s.InitialSteps),
		RefinementPrompts: cloneStrings(s.RefinementPrompts),
		UserRefinements:   map[string]string{},
		IsCustom:          false,
		CreatedAt:         createdAt,
		Status:            StatusNotStarted,
	}
	idea.ApplyDefaults()
	return idea
}
