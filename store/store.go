package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fire-base/logger"
	"fire-base/models"
)

var (
	ErrNotFound             = errors.New("idea not found")
	ErrConfirmationRequired = errors.New("delete must be confirmed")
	ErrBusy                 = errors.New("an AI request is already running")
	ErrTagNotFound          = errors.New("tag not found")
	ErrUnknownPrompt        = errors.New("refinement prompt does not belong to the idea")
	ErrInvalidSeed          = errors.New("invalid idea seed")
)

const (
	MsgNoSeeds    = "AI가 현재 입력에 대한 아이디어를 찾지 못했습니다. 다른 질문이나 키워드로 시도해보세요."
	MsgLoadFailed = "저장소에서 아이디어를 불러오는데 실패했습니다."
	MsgSaveFailed = "아이디어를 저장소에 저장하는데 실패했습니다."
)

// brainstormSlot 은 아이디어 생성 요청의 in-flight 키다. 아이디어 id 는 uuid 이므로 겹치지 않는다.
const brainstormSlot = "brainstorm"

// Persister 는 스토어가 write-through 로 쓰는 영속화 어댑터다.
type Persister interface {
	Load(ctx context.Context) ([]models.Idea, error)
	Save(ctx context.Context, ideas []models.Idea) error
}

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice 는 사용자에게 잠깐 보여주는 알림이다. 변경 작업을 막지 않는다.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Status 는 도메인 상태가 아니라 화면 조율용 상태다.
type Status struct {
	Loading  bool     `json:"loading"`
	InFlight []string `json:"in_flight"`
	Notice   *Notice  `json:"notice,omitempty"`
}

type Store struct {
	mu sync.Mutex
	// notifyMu 는 mu 를 놓기 전에 잡아서 옵저버 알림이 커밋 순서대로 나가게 한다.
	notifyMu sync.Mutex

	repo       Persister
	ideas      []models.Idea
	selectedID string
	notice     *Notice
	inFlight   map[string]time.Time

	observers []Observer
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(repo Persister, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		ideas:    []models.Idea{},
		inFlight: map[string]time.Time{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init 은 저장된 스냅샷으로 컬렉션을 교체한다.
// 실패하면 빈 컬렉션을 유지하고 에러 알림을 남긴 뒤 에러를 반환한다.
func (s *Store) Init(ctx context.Context) error {
	ideas, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logger.ErrorWithFields("failed to load ideas", logger.Fields{"error": err.Error()})
		s.ideas = []models.Idea{}
		s.setNoticeLocked(NoticeError, MsgLoadFailed)
		return err
	}
	s.ideas = ideas
	logger.InfoWithFields("ideas loaded", logger.Fields{"count": len(ideas)})
	return nil
}

// Ideas 는 스토어 순서(최신 순)대로 컬렉션의 깊은 복사본을 반환한다.
func (s *Store) Ideas() []models.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Idea, len(s.ideas))
	for i, idea := range s.ideas {
		out[i] = idea.Clone()
	}
	return out
}

func (s *Store) Get(id string) (models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Idea{}, ErrNotFound
	}
	return s.ideas[idx].Clone(), nil
}

// CreateFromAISeed 는 시드 묶음을 아이디어로 만들어 앞에 추가한다.
// 전부 추가되거나 하나도 추가되지 않는다. 빈 묶음은 안내 알림만 남긴다.
func (s *Store) CreateFromAISeed(ctx context.Context, seeds []models.IdeaSeed) ([]models.Idea, error) {
	if len(seeds) == 0 {
		s.SetNotice(NoticeInfo, MsgNoSeeds)
		return []models.Idea{}, nil
	}
	for i, seed := range seeds {
		if err := seed.Validate(); err != nil {
			return nil, fmt.Errorf("%w at %d: %v", ErrInvalidSeed, i, err)
		}
	}

	var created []models.Idea
	err := s.mutate(ctx, "create_from_seed", func() ([]Change, error) {
		createdAt := s.now()
		taken := s.idSetLocked()
		batch := make([]models.Idea, 0, len(seeds))
		changes := make([]Change, 0, len(seeds))
		for _, seed := range seeds {
			id := s.uniqueIDLocked(taken)
			taken[id] = struct{}{}
			idea := seed.Promote(id, createdAt)
			batch = append(batch, idea)
			changes = append(changes, Change{Kind: ChangeCreated, IdeaID: id, Idea: idea.Clone()})
		}
		s.ideas = append(batch, s.ideas...)
		created = cloneAll(batch)
		return changes, nil
	})
	return created, err
}

// CreateOrUpdateManual 은 같은 id 가 있으면 제자리에서 교체하고, 없으면 앞에 추가한다.
// 교체할 때 id, createdAt, AI 필드는 저장된 값을 유지한다. 두 번째 반환값은 생성 여부다.
func (s *Store) CreateOrUpdateManual(ctx context.Context, idea models.Idea) (models.Idea, bool, error) {
	if err := idea.Validate(); err != nil {
		return models.Idea{}, false, err
	}
	idea = idea.Clone()
	idea.Title = strings.TrimSpace(idea.Title)
	idea.ApplyDefaults()
	idea.Tags = models.NormalizeTags(idea.Tags)

	var (
		saved   models.Idea
		created bool
	)
	err := s.mutate(ctx, "save_manual", func() ([]Change, error) {
		if idx := s.indexLocked(idea.ID); idea.ID != "" && idx >= 0 {
			keepOwnedFields(&idea, s.ideas[idx])
			s.ideas[idx] = idea
			saved = idea.Clone()
			return []Change{{Kind: ChangeUpdated, IdeaID: idea.ID, Idea: idea.Clone()}}, nil
		}

		if idea.ID == "" {
			idea.ID = s.uniqueIDLocked(s.idSetLocked())
		}
		if idea.CreatedAt.IsZero() {
			idea.CreatedAt = s.now()
		}
		s.ideas = append([]models.Idea{idea}, s.ideas...)
		saved = idea.Clone()
		created = true
		return []Change{{Kind: ChangeCreated, IdeaID: idea.ID, Idea: idea.Clone()}}, nil
	})
	return saved, created, err
}

// UpdateManual 은 저장된 아이디어 위에 edit 을 락 안에서 적용한다.
// 읽기와 쓰기 사이에 병합된 AI 결과가 덮어써지지 않는다.
func (s *Store) UpdateManual(ctx context.Context, id string, edit func(*models.Idea)) (models.Idea, error) {
	return s.update(ctx, "save_manual", id, func(idea *models.Idea) error {
		stored := idea.Clone()
		edit(idea)
		if err := idea.Validate(); err != nil {
			return err
		}
		idea.Title = strings.TrimSpace(idea.Title)
		idea.ApplyDefaults()
		idea.Tags = models.NormalizeTags(idea.Tags)
		keepOwnedFields(idea, stored)
		return nil
	})
}

// keepOwnedFields 는 직접 편집으로 바뀌면 안 되는 필드를 stored 값으로 되돌린다.
// id, createdAt 과 AI 가 채우는 필드가 해당된다.
func keepOwnedFields(idea *models.Idea, stored models.Idea) {
	idea.ID = stored.ID
	idea.CreatedAt = stored.CreatedAt
	idea.AICoachingSessions = models.CloneSessions(stored.AICoachingSessions)
	if idea.AICoachingSessions == nil {
		idea.AICoachingSessions = []models.AICoachingSession{}
	}
	idea.ImageURL = stored.ImageURL
	idea.ImagePrompt = stored.ImagePrompt
}

// Delete 는 확인된 삭제만 수행한다. 없는 id 는 아무 일도 하지 않는다.
func (s *Store) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.mutate(ctx, "delete", func() ([]Change, error) {
		idx := s.indexLocked(id)
		if idx < 0 {
			return nil, nil
		}
		s.ideas = append(s.ideas[:idx:idx], s.ideas[idx+1:]...)
		if s.selectedID == id {
			s.selectedID = ""
		}
		return []Change{{Kind: ChangeDeleted, IdeaID: id}}, nil
	})
}

func (s *Store) ToggleFavorite(ctx context.Context, id string) (models.Idea, error) {
	return s.update(ctx, "toggle_favorite", id, func(idea *models.Idea) error {
		idea.IsFavorite = !idea.IsFavorite
		return nil
	})
}

func (s *Store) SetStatus(ctx context.Context, id string, status models.ProgressStatus) (models.Idea, error) {
	if !status.Valid() {
		return models.Idea{}, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	return s.update(ctx, "set_status", id, func(idea *models.Idea) error {
		idea.Status = status
		return nil
	})
}

// AddTag 는 raw 를 정규화해 추가한다. 빈 태그나 중복 태그는 무시한다.
func (s *Store) AddTag(ctx context.Context, id, raw string) (models.Idea, error) {
	return s.update(ctx, "add_tag", id, func(idea *models.Idea) error {
		idea.Tags, _ = models.AddTag(idea.Tags, raw)
		return nil
	})
}

// RenameTag 는 tag 를 raw 로 바꾼다. 빈 값으로 바꾸면 태그가 삭제된다.
func (s *Store) RenameTag(ctx context.Context, id, tag, raw string) (models.Idea, error) {
	return s.update(ctx, "rename_tag", id, func(idea *models.Idea) error {
		for i, t := range idea.Tags {
			if t == tag {
				idea.Tags = models.RenameTag(idea.Tags, i, raw)
				return nil
			}
		}
		return ErrTagNotFound
	})
}

func (s *Store) RemoveTag(ctx context.Context, id, tag string) (models.Idea, error) {
	return s.update(ctx, "remove_tag", id, func(idea *models.Idea) error {
		idea.Tags = models.RemoveTag(idea.Tags, tag)
		return nil
	})
}

// SetRefinement 는 구체화 질문에 대한 답을 기록한다. 빈 답은 항목을 지운다.
func (s *Store) SetRefinement(ctx context.Context, id, prompt, answer string) (models.Idea, error) {
	return s.update(ctx, "set_refinement", id, func(idea *models.Idea) error {
		known := false
		for _, p := range idea.RefinementPrompts {
			if p == prompt {
				known = true
				break
			}
		}
		if !known {
			return ErrUnknownPrompt
		}
		if strings.TrimSpace(answer) == "" {
			delete(idea.UserRefinements, prompt)
			return nil
		}
		idea.UserRefinements[prompt] = answer
		return nil
	})
}

// AIResultPatch 는 AI 결과가 덮어쓸 수 있는 필드다. nil 이면 건드리지 않는다.
type AIResultPatch struct {
	AICoachingSessions *[]models.AICoachingSession
	ImageURL           *string
	ImagePrompt        *string
}

func (p AIResultPatch) fields() []string {
	var f []string
	if p.AICoachingSessions != nil {
		f = append(f, "aiCoachingSessions")
	}
	if p.ImageURL != nil {
		f = append(f, "imageUrl")
	}
	if p.ImagePrompt != nil {
		f = append(f, "imagePrompt")
	}
	return f
}

// MergeAIResult 는 patch 에 지정된 필드만 덮어쓴다.
// 선택은 id 로 들고 있으므로 열린 상세 화면은 다음 조회에서 병합 결과를 본다.
func (s *Store) MergeAIResult(ctx context.Context, id string, patch AIResultPatch) (models.Idea, error) {
	var merged models.Idea
	err := s.mutate(ctx, "merge_ai_result", func() ([]Change, error) {
		idx := s.indexLocked(id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		idea := &s.ideas[idx]
		if patch.AICoachingSessions != nil {
			idea.AICoachingSessions = models.CloneSessions(*patch.AICoachingSessions)
			if idea.AICoachingSessions == nil {
				idea.AICoachingSessions = []models.AICoachingSession{}
			}
		}
		if patch.ImageURL != nil {
			idea.ImageURL = *patch.ImageURL
		}
		if patch.ImagePrompt != nil {
			idea.ImagePrompt = *patch.ImagePrompt
		}
		merged = idea.Clone()
		return []Change{{Kind: ChangeAIMerged, IdeaID: id, Idea: idea.Clone(), Fields: patch.fields()}}, nil
	})
	return merged, err
}

func (s *Store) Select(id string) (models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Idea{}, ErrNotFound
	}
	s.selectedID = id
	return s.ideas[idx].Clone(), nil
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// Selected 는 선택된 아이디어의 현재 상태를 반환한다.
func (s *Store) Selected() (models.Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return models.Idea{}, false
	}
	idx := s.indexLocked(s.selectedID)
	if idx < 0 {
		return models.Idea{}, false
	}
	return s.ideas[idx].Clone(), true
}

// BeginAI 는 아이디어에 AI 요청이 진행 중임을 표시한다.
// EndAI 전까지 같은 아이디어의 두 번째 요청은 ErrBusy 로 거절된다.
func (s *Store) BeginAI(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return ErrNotFound
	}
	return s.beginLocked(id)
}

func (s *Store) EndAI(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// BeginBrainstorm 은 아이디어 생성 요청을 한 번에 하나만 허용한다.
func (s *Store) BeginBrainstorm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(brainstormSlot)
}

func (s *Store) EndBrainstorm() {
	s.EndAI(brainstormSlot)
}

func (s *Store) beginLocked(key string) error {
	if _, busy := s.inFlight[key]; busy {
		return ErrBusy
	}
	s.inFlight[key] = s.now()
	return nil
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Loading:  len(s.inFlight) > 0,
		InFlight: make([]string, 0, len(s.inFlight)),
	}
	for k := range s.inFlight {
		st.InFlight = append(st.InFlight, k)
	}
	sort.Strings(st.InFlight)
	if s.notice != nil {
		n := *s.notice
		st.Notice = &n
	}
	return st
}

func (s *Store) SetNotice(kind NoticeKind, message string) {
	s.mu.Lock()
	s.setNoticeLocked(kind, message)
	s.mu.Unlock()
}

func (s *Store) ClearNotice() {
	s.mu.Lock()
	s.notice = nil
	s.mu.Unlock()
}

func (s *Store) setNoticeLocked(kind NoticeKind, message string) {
	s.notice = &Notice{Kind: kind, Message: message, At: s.now()}
}

// update 는 작업용 복사본에 fn 을 적용하고 fn 이 성공했을 때만 반영한다.
func (s *Store) update(ctx context.Context, op, id string, fn func(*models.Idea) error) (models.Idea, error) {
	var updated models.Idea
	err := s.mutate(ctx, op, func() ([]Change, error) {
		idx := s.indexLocked(id)
		if idx < 0 {
			return nil, ErrNotFound
		}
		working := s.ideas[idx].Clone()
		working.ApplyDefaults()
		if err := fn(&working); err != nil {
			return nil, err
		}
		s.ideas[idx] = working
		updated = working.Clone()
		return []Change{{Kind: ChangeUpdated, IdeaID: id, Idea: working.Clone()}}, nil
	})
	return updated, err
}

// mutate 는 락 안에서 fn 을 실행하고 변경이 있으면 컬렉션을 저장한다.
// 저장에 실패해도 메모리 결과는 유지하고 에러 알림을 남긴다.
func (s *Store) mutate(ctx context.Context, op string, fn func() ([]Change, error)) error {
	s.mu.Lock()
	changes, err := fn()
	if err != nil || len(changes) == 0 {
		s.mu.Unlock()
		return err
	}
	saveErr := s.repo.Save(ctx, s.ideas)
	if saveErr != nil {
		logger.ErrorWithFields("failed to persist ideas", logger.Fields{
			"op":    op,
			"error": saveErr.Error(),
		})
		s.setNoticeLocked(NoticeError, MsgSaveFailed)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, o := range s.observers {
		for _, c := range changes {
			o.IdeaChanged(ctx, c)
		}
		if saveErr != nil {
			o.PersistFailed(ctx, op, saveErr)
		}
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) idSetLocked() map[string]struct{} {
	set := make(map[string]struct{}, len(s.ideas))
	for _, idea := range s.ideas {
		set[idea.ID] = struct{}{}
	}
	return set
}

func (s *Store) uniqueIDLocked(taken map[string]struct{}) string {
	for {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != brainstormSlot {
			return id
		}
	}
}

func cloneAll(ideas []models.Idea) []models.Idea {
	out := make([]models.Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Clone()
	}
	return out
}
