package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fire-base/kvstore"
	"fire-base/logger"
	"fire-base/models"
)

// ErrCorruptSnapshot 은 저장된 값이 JSON 배열이 아닐 때 반환된다.
var ErrCorruptSnapshot = errors.New("stored idea snapshot is corrupt")

// IdeaRepository 는 아이디어 전체를 하나의 키 아래 JSON 배열로 저장한다.
// 버전 필드는 없고, 예전 레코드는 읽을 때 보정한다.
type IdeaRepository struct {
	kv  kvstore.Store
	key string
}

func NewIdeaRepository(kv kvstore.Store, key string) *IdeaRepository {
	return &IdeaRepository{kv: kv, key: key}
}

// Load 는 저장된 컬렉션을 반환한다. 저장된 것이 없으면 빈 목록이다.
func (r *IdeaRepository) Load(ctx context.Context) ([]models.Idea, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	if !ok || raw == "" {
		return []models.Idea{}, nil
	}
	return DecodeIdeas([]byte(raw))
}

// Save serializes the full collection.
func (r *IdeaRepository) Save(ctx context.Context, ideas []models.Idea) error {
	if ideas == nil {
		ideas = []models.Idea{}
	}
	raw, err := json.Marshal(ideas)
	if err != nil {
		return fmt.Errorf("encode ideas: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("save ideas: %w", err)
	}
	return nil
}

// DecodeIdeas 는 로드 시 한 번 실행되는 관대한 디코딩 단계다.
// 아예 디코딩되지 않는 레코드는 버리고, 나머지는 기본값을 채운 뒤
// 열거형 범위 안으로 보정한다.
func DecodeIdeas(raw []byte) ([]models.Idea, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	ideas := make([]models.Idea, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for idx, rec := range records {
		var idea models.Idea
		if err := json.Unmarshal(rec, &idea); err != nil {
			logger.WarnWithFields("dropping undecodable idea record", logger.Fields{
				"index": idx,
				"error": err.Error(),
			})
			continue
		}
		idea.ApplyDefaults()
		coerceEnums(&idea)

		if _, dup := seen[idea.ID]; idea.ID == "" || dup {
			old := idea.ID
			idea.ID = uuid.NewString()
			logger.WarnWithFields("reissued idea id", logger.Fields{
				"index":  idx,
				"old_id": old,
				"new_id": idea.ID,
			})
		}
		seen[idea.ID] = struct{}{}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func coerceEnums(idea *models.Idea) {
	fields := logger.Fields{"idea_id": idea.ID}
	coerced := false
	if !idea.Category.Valid() {
		fields["category"] = string(idea.Category)
		idea.Category = models.CategoryOther
		coerced = true
	}
	if !idea.PotentialImpact.Valid() {
		fields["potential_impact"] = string(idea.PotentialImpact)
		idea.PotentialImpact = models.LevelMedium
		coerced = true
	}
	if !idea.EffortLevel.Valid() {
		fields["effort_level"] = string(idea.EffortLevel)
		idea.EffortLevel = models.LevelMedium
		coerced = true
	}
	if !idea.Status.Valid() {
		fields["status"] = string(idea.Status)
		idea.Status = models.StatusNotStarted
		coerced = true
	}
	idea.Tags = models.NormalizeTags(idea.Tags)

	sessions := idea.AICoachingSessions[:0]
	for _, s := range idea.AICoachingSessions {
		if !s.PromptType.Valid() {
			fields["dropped_session_type"] = string(s.PromptType)
			coerced = true
			continue
		}
		sessions = append(sessions, s)
	}
	// 상세 화면과 프롬프트 빌더는 최신 세션이 앞에 있다고 가정한다.
	models.SortSessionsNewestFirst(sessions)
	idea.AICoachingSessions = sessions

	if coerced {
		logger.WarnWithFields("coerced unknown values in stored idea", fields)
	}
}
