package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-base/models"
)

type fakePersister struct {
	mu      sync.Mutex
	loaded  []models.Idea
	loadErr error
	saveErr error
	saves   int
	last    []models.Idea
}

func (f *fakePersister) Load(context.Context) ([]models.Idea, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loaded, nil
}

func (f *fakePersister) Save(_ context.Context, ideas []models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.last = cloneAll(ideas)
	return nil
}

type recordingObserver struct {
	changes      []Change
	persistFails []string
}

func (r *recordingObserver) IdeaChanged(_ context.Context, c Change) {
	r.changes = append(r.changes, c)
}

func (r *recordingObserver) PersistFailed(_ context.Context, op string, _ error) {
	r.persistFails = append(r.persistFails, op)
}

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs(ids ...string) func() string {
	i := 0
	return func() string {
		if i < len(ids) {
			id := ids[i]
			i++
			return id
		}
		i++
		return fmt.Sprintf("gen-%d", i)
	}
}

func newTestStore(t *testing.T, p *fakePersister, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s := New(p, opts...)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func seed(title string, c models.Category) models.IdeaSeed {
	return models.IdeaSeed{
		Title:             title,
		Category:          c,
		Description:       title + " 설명",
		PotentialImpact:   models.LevelHigh,
		EffortLevel:       models.LevelLow,
		InitialSteps:      []string{"1단계"},
		RefinementPrompts: []string{"질문?"},
	}
}

func existing(id, title string) models.Idea {
	idea := models.Idea{
		ID:              id,
		Title:           title,
		Category:        models.CategoryOther,
		PotentialImpact: models.LevelMedium,
		EffortLevel:     models.LevelMedium,
		CreatedAt:       fixedNow.Add(-time.Hour),
	}
	idea.ApplyDefaults()
	return idea
}

func TestInit_LoadFailureKeepsEmptyState(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("disk gone")}
	s := New(p)

	err := s.Init(context.Background())
	require.Error(t, err)
	assert.Empty(t, s.Ideas())

	st := s.Status()
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeError, st.Notice.Kind)
	assert.Equal(t, MsgLoadFailed, st.Notice.Message)
}

func TestCreateFromAISeed(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{loaded: []models.Idea{existing("taken", "기존")}}
	obs := &recordingObserver{}
	// the first generated id collides with an existing one and must be skipped
	s := newTestStore(t, p, WithIDGenerator(sequentialIDs("taken", "n1", "n1", "n2")), WithObserver(obs))

	created, err := s.CreateFromAISeed(ctx, []models.IdeaSeed{
		seed("블로그 운영", models.CategoryIncomeGeneration),
		seed("통신비 절감", models.CategoryExpenseReduction),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "n1", created[0].ID)
	assert.Equal(t, "n2", created[1].ID)
	for _, idea := range created {
		assert.Equal(t, fixedNow, idea.CreatedAt)
		assert.False(t, idea.IsCustom)
		assert.False(t, idea.IsFavorite)
		assert.Equal(t, models.StatusNotStarted, idea.Status)
		assert.Empty(t, idea.Tags)
		assert.Empty(t, idea.AICoachingSessions)
	}

	ideas := s.Ideas()
	require.Len(t, ideas, 3)
	assert.Equal(t, []string{"n1", "n2", "taken"}, []string{ideas[0].ID, ideas[1].ID, ideas[2].ID})
	assert.Equal(t, 1, p.saves)
	assert.Len(t, p.last, 3)
	assert.Len(t, obs.changes, 2)
	assert.Equal(t, ChangeCreated, obs.changes[0].Kind)
}

func TestCreateFromAISeed_EmptyIsInfoOnly(t *testing.T) {
	p := &fakePersister{loaded: []models.Idea{existing("a", "A")}}
	s := newTestStore(t, p)

	created, err := s.CreateFromAISeed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Len(t, s.Ideas(), 1)
	assert.Equal(t, 0, p.saves)

	st := s.Status()
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeInfo, st.Notice.Kind)
}

func TestCreateFromAISeed_InvalidSeedAddsNothing(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	bad := seed("bad", models.Category("부업"))
	_, err := s.CreateFromAISeed(context.Background(), []models.IdeaSeed{seed("ok", models.CategoryInvestment), bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSeed))
	assert.Empty(t, s.Ideas())
	assert.Equal(t, 0, p.saves)
}

func TestCreateOrUpdateManual(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{loaded: []models.Idea{existing("a", "A"), existing("b", "B")}}
	s := newTestStore(t, p, WithIDGenerator(sequentialIDs("new-1")))

	t.Run("empty title is rejected", func(t *testing.T) {
		idea := models.NewManualIdea()
		idea.Title = "   "
		_, _, err := s.CreateOrUpdateManual(ctx, idea)
		assert.ErrorIs(t, err, models.ErrEmptyTitle)
	})

	t.Run("new idea is prepended with fresh id", func(t *testing.T) {
		idea := models.NewManualIdea()
		idea.Title = "  중고 거래  "
		idea.Tags = []string{"a b", "a-b"}

		saved, created, err := s.CreateOrUpdateManual(ctx, idea)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "new-1", saved.ID)
		assert.Equal(t, "중고 거래", saved.Title)
		assert.Equal(t, fixedNow, saved.CreatedAt)
		assert.Equal(t, []string{"a-b"}, saved.Tags)
		assert.Equal(t, "new-1", s.Ideas()[0].ID)
	})

	t.Run("existing idea is replaced in place", func(t *testing.T) {
		before, err := s.Get("b")
		require.NoError(t, err)

		edit := before
		edit.Title = "B 수정"
		edit.CreatedAt = fixedNow.Add(24 * time.Hour)
		edit.Status = ""
		edit.Tags = nil

		saved, created, err := s.CreateOrUpdateManual(ctx, edit)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, before.CreatedAt, saved.CreatedAt)
		assert.Equal(t, models.StatusNotStarted, saved.Status)
		assert.Equal(t, []string{}, saved.Tags)

		ideas := s.Ideas()
		require.Len(t, ideas, 3)
		assert.Equal(t, "b", ideas[2].ID)
		assert.Equal(t, "B 수정", ideas[2].Title)
	})
}

func TestUpdateManual_KeepsAIResultMergedAfterRead(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{loaded: []models.Idea{existing("a", "A")}}
	s := newTestStore(t, p)

	// 편집 화면이 읽어 간 시점의 상태
	stale, err := s.Get("a")
	require.NoError(t, err)

	sessions := []models.AICoachingSession{{PromptType: models.CoachingRiskAnalysis, Response: "위험 요소", Timestamp: fixedNow}}
	url, prompt := "data:image/jpeg;base64,AA", "p"
	_, err = s.MergeAIResult(ctx, "a", AIResultPatch{AICoachingSessions: &sessions, ImageURL: &url, ImagePrompt: &prompt})
	require.NoError(t, err)

	t.Run("overlay edit", func(t *testing.T) {
		saved, err := s.UpdateManual(ctx, "a", func(idea *models.Idea) {
			idea.Title = "  새 제목 "
			idea.ID = "other"
			idea.AICoachingSessions = nil
			idea.ImageURL = ""
		})
		require.NoError(t, err)
		assert.Equal(t, "a", saved.ID)
		assert.Equal(t, "새 제목", saved.Title)
		assert.Len(t, saved.AICoachingSessions, 1)
		assert.Equal(t, url, saved.ImageURL)
		assert.Equal(t, prompt, saved.ImagePrompt)
	})

	t.Run("full record saved from a stale copy", func(t *testing.T) {
		stale.Title = "옛 화면에서 저장"
		saved, created, err := s.CreateOrUpdateManual(ctx, stale)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "옛 화면에서 저장", saved.Title)
		assert.Len(t, saved.AICoachingSessions, 1)
		assert.Equal(t, url, saved.ImageURL)
	})

	t.Run("invalid edit leaves the idea untouched", func(t *testing.T) {
		_, err := s.UpdateManual(ctx, "a", func(idea *models.Idea) { idea.Title = " " })
		assert.ErrorIs(t, err, models.ErrEmptyTitle)
		got, err := s.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "옛 화면에서 저장", got.Title)
	})

	t.Run("missing idea", func(t *testing.T) {
		_, err := s.UpdateManual(ctx, "nope", func(*models.Idea) {})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// favoriteLog 는 Save 가 호출된 순서대로 즐겨찾기가 바뀐 아이디어를 기록한다.
type favoriteLog struct {
	mu    sync.Mutex
	last  map[string]bool
	order []string
}

func (f *favoriteLog) Load(context.Context) ([]models.Idea, error) { return nil, nil }

func (f *favoriteLog) Save(_ context.Context, ideas []models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, idea := range ideas {
		if prev, ok := f.last[idea.ID]; ok && prev != idea.IsFavorite {
			f.order = append(f.order, idea.ID)
		}
		f.last[idea.ID] = idea.IsFavorite
	}
	return nil
}

type orderObserver struct {
	mu  sync.Mutex
	ids []string
}

func (o *orderObserver) IdeaChanged(_ context.Context, c Change) {
	if c.Kind != ChangeUpdated {
		return
	}
	o.mu.Lock()
	o.ids = append(o.ids, c.IdeaID)
	o.mu.Unlock()
}

func (o *orderObserver) PersistFailed(context.Context, string, error) {}

func TestObserversSeeCommitOrder(t *testing.T) {
	ctx := context.Background()
	log := &favoriteLog{last: map[string]bool{}}
	obs := &orderObserver{}
	s := New(log, WithObserver(obs))
	require.NoError(t, s.Init(ctx))

	var ids []string
	for i := 0; i < 20; i++ {
		idea := models.NewManualIdea()
		idea.Title = fmt.Sprintf("아이디어 %d", i)
		saved, _, err := s.CreateOrUpdateManual(ctx, idea)
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.ToggleFavorite(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	require.Len(t, log.order, len(ids))
	assert.Equal(t, log.order, obs.ids)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{loaded: []models.Idea{existing("a", "A"), existing("b", "B")}}
	s := newTestStore(t, p)

	_, err := s.Select("a")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "a", false), ErrConfirmationRequired)
	assert.Len(t, s.Ideas(), 2)

	require.NoError(t, s.Delete(ctx, "a", true))
	view := DeriveView(s.Ideas(), DefaultFilters(), models.DefaultSortOption)
	for _, idea := range view {
		assert.NotEqual(t, "a", idea.ID)
	}
	_, ok := s.Selected()
	assert.False(t, ok)

	saves := p.saves
	require.NoError(t, s.Delete(ctx, "missing", true))
	assert.Equal(t, saves, p.saves)
	assert.Len(t, s.Ideas(), 1)
}

func TestToggleFavoriteAndStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{existing("a", "A")}})

	idea, err := s.ToggleFavorite(ctx, "a")
	require.NoError(t, err)
	assert.True(t, idea.IsFavorite)
	idea, err = s.ToggleFavorite(ctx, "a")
	require.NoError(t, err)
	assert.False(t, idea.IsFavorite)

	_, err = s.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	idea, err = s.SetStatus(ctx, "a", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, idea.Status)

	_, err = s.SetStatus(ctx, "a", models.ProgressStatus("Paused"))
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestTagEdits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{existing("a", "A")}})

	idea, err := s.AddTag(ctx, "a", "  side   hustle ")
	require.NoError(t, err)
	assert.Equal(t, []string{"side-hustle"}, idea.Tags)

	idea, err = s.AddTag(ctx, "a", "side-hustle")
	require.NoError(t, err)
	assert.Equal(t, []string{"side-hustle"}, idea.Tags)

	idea, err = s.AddTag(ctx, "a", "배당")
	require.NoError(t, err)
	assert.Equal(t, []string{"side-hustle", "배당"}, idea.Tags)

	idea, err = s.RenameTag(ctx, "a", "side-hustle", "배당")
	require.NoError(t, err)
	assert.Equal(t, []string{"side-hustle", "배당"}, idea.Tags, "collision leaves tags unchanged")

	idea, err = s.RenameTag(ctx, "a", "side-hustle", "부업")
	require.NoError(t, err)
	assert.Equal(t, []string{"부업", "배당"}, idea.Tags)

	_, err = s.RenameTag(ctx, "a", "nope", "x")
	assert.ErrorIs(t, err, ErrTagNotFound)

	idea, err = s.RenameTag(ctx, "a", "부업", "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{"배당"}, idea.Tags)

	idea, err = s.RemoveTag(ctx, "a", "배당")
	require.NoError(t, err)
	assert.Empty(t, idea.Tags)
}

func TestSetRefinement(t *testing.T) {
	ctx := context.Background()
	base := existing("a", "A")
	base.RefinementPrompts = []string{"목표 금액은?"}
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{base}})

	idea, err := s.SetRefinement(ctx, "a", "목표 금액은?", "1억")
	require.NoError(t, err)
	assert.Equal(t, "1억", idea.UserRefinements["목표 금액은?"])

	_, err = s.SetRefinement(ctx, "a", "다른 질문", "x")
	assert.ErrorIs(t, err, ErrUnknownPrompt)

	idea, err = s.SetRefinement(ctx, "a", "목표 금액은?", " ")
	require.NoError(t, err)
	assert.NotContains(t, idea.UserRefinements, "목표 금액은?")
}

func TestMergeAIResult_OnlyNamedFields(t *testing.T) {
	ctx := context.Background()
	base := existing("a", "A")
	base.Description = "설명"
	base.Tags = []string{"x"}
	base.ImageURL = "data:old"
	base.ImagePrompt = "old prompt"
	obs := &recordingObserver{}
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{base}}, WithObserver(obs))

	_, err := s.Select("a")
	require.NoError(t, err)

	sessions := []models.AICoachingSession{{
		PromptType: models.CoachingRiskAnalysis,
		PromptSent: "p",
		Response:   "r",
		Timestamp:  fixedNow,
	}}
	merged, err := s.MergeAIResult(ctx, "a", AIResultPatch{AICoachingSessions: &sessions})
	require.NoError(t, err)

	expected := base.Clone()
	expected.AICoachingSessions = sessions
	assert.Equal(t, expected, merged)

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Len(t, selected.AICoachingSessions, 1)

	url, prompt := "data:image/jpeg;base64,AA", "new prompt"
	merged, err = s.MergeAIResult(ctx, "a", AIResultPatch{ImageURL: &url, ImagePrompt: &prompt})
	require.NoError(t, err)
	assert.Equal(t, url, merged.ImageURL)
	assert.Equal(t, prompt, merged.ImagePrompt)
	assert.Len(t, merged.AICoachingSessions, 1)

	_, err = s.MergeAIResult(ctx, "missing", AIResultPatch{ImageURL: &url})
	assert.ErrorIs(t, err, ErrNotFound)

	require.Len(t, obs.changes, 2)
	assert.Equal(t, []string{"aiCoachingSessions"}, obs.changes[0].Fields)
	assert.Equal(t, []string{"imageUrl", "imagePrompt"}, obs.changes[1].Fields)
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{loaded: []models.Idea{existing("a", "A")}}
	obs := &recordingObserver{}
	s := newTestStore(t, p, WithObserver(obs))
	p.saveErr = errors.New("quota exceeded")

	idea, err := s.ToggleFavorite(ctx, "a")
	require.NoError(t, err)
	assert.True(t, idea.IsFavorite)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	st := s.Status()
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeError, st.Notice.Kind)
	assert.Equal(t, MsgSaveFailed, st.Notice.Message)
	assert.Equal(t, []string{"toggle_favorite"}, obs.persistFails)

	s.ClearNotice()
	assert.Nil(t, s.Status().Notice)
}

func TestInFlightMarker(t *testing.T) {
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{existing("a", "A")}})

	require.NoError(t, s.BeginAI("a"))
	assert.ErrorIs(t, s.BeginAI("a"), ErrBusy)
	assert.ErrorIs(t, s.BeginAI("missing"), ErrNotFound)

	st := s.Status()
	assert.True(t, st.Loading)
	assert.Equal(t, []string{"a"}, st.InFlight)

	require.NoError(t, s.BeginBrainstorm())
	assert.ErrorIs(t, s.BeginBrainstorm(), ErrBusy)

	s.EndAI("a")
	s.EndBrainstorm()
	assert.False(t, s.Status().Loading)
	assert.NoError(t, s.BeginAI("a"))
}

func TestIdeasReturnsCopies(t *testing.T) {
	base := existing("a", "A")
	base.Tags = []string{"x"}
	s := newTestStore(t, &fakePersister{loaded: []models.Idea{base}})

	ideas := s.Ideas()
	ideas[0].Tags[0] = "mutated"
	ideas[0].Title = "mutated"

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)
}
