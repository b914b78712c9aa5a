package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fire-base/gateway"
	"fire-base/logger"
	"fire-base/models"
	"fire-base/store"
)

var (
	ErrEmptyTopic     = errors.New("brainstorm topic is required")
	ErrEmptyQuestion  = errors.New("question is required for a user specific query")
	ErrUnknownIntent  = errors.New("unknown coaching intent")
	ErrIncompleteIdea = errors.New("title and category are required for image generation")
)

const msgUnknownAIFailed = "AI 요청 처리 중 알 수 없는 오류가 발생했습니다."

// AIGateway is the subset of gateway.Gateway the service needs.
type AIGateway interface {
	GenerateIdeaSeeds(ctx context.Context, credential, topic string) ([]models.IdeaSeed, error)
	RequestCoaching(ctx context.Context, credential, prompt string, intent models.CoachingPromptType) (gateway.CoachingResult, error)
	GenerateImage(ctx context.Context, credential, title string, category models.Category) (gateway.ImageResult, error)
}

type SourceEnricher interface {
	Enrich(ctx context.Context, sources []models.GroundingChunk) []models.GroundingChunk
}

// IdeaService runs the AI workflows against the store. Gateway calls happen
// outside the store lock; results are merged back by idea id.
type IdeaService struct {
	store    *store.Store
	ai       AIGateway
	creds    *CredentialService
	enricher SourceEnricher
	now      func() time.Time
}

func NewIdeaService(st *store.Store, ai AIGateway, creds *CredentialService, enricher SourceEnricher) *IdeaService {
	return &IdeaService{
		store:    st,
		ai:       ai,
		creds:    creds,
		enricher: enricher,
		now:      time.Now,
	}
}

type ListIdeasInput struct {
	Filters store.Filters
	Sort    models.SortOption
}

type ListIdeasResult struct {
	Ideas            []models.Idea
	Total            int
	HasActiveFilters bool
}

func (s *IdeaService) List(in ListIdeasInput) ListIdeasResult {
	all := s.store.Ideas()
	view := store.DeriveView(all, in.Filters, in.Sort)
	return ListIdeasResult{
		Ideas:            view,
		Total:            len(all),
		HasActiveFilters: in.Filters.Active(),
	}
}

// Brainstorm asks the gateway for seeds and adds the whole batch to the store.
func (s *IdeaService) Brainstorm(ctx context.Context, topic string) ([]models.Idea, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if err := s.store.BeginBrainstorm(); err != nil {
		return nil, err
	}
	defer s.store.EndBrainstorm()

	s.store.ClearNotice()
	credential, err := s.creds.Resolve(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	seeds, err := s.ai.GenerateIdeaSeeds(ctx, credential, topic)
	if err != nil {
		return nil, s.fail(err)
	}

	created, err := s.store.CreateFromAISeed(ctx, seeds)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "brainstorm completed", logger.Fields{
		"topic":   topic,
		"created": len(created),
	})
	return created, nil
}

// Coach sends one coaching request for the idea and prepends the resulting
// session. Only aiCoachingSessions is written back.
func (s *IdeaService) Coach(ctx context.Context, id string, intent models.CoachingPromptType, question string) (models.Idea, error) {
	if !intent.Valid() {
		return models.Idea{}, ErrUnknownIntent
	}
	question = strings.TrimSpace(question)
	if intent == models.CoachingUserSpecificQuery && question == "" {
		return models.Idea{}, ErrEmptyQuestion
	}
	if err := s.store.BeginAI(id); err != nil {
		return models.Idea{}, err
	}
	defer s.store.EndAI(id)

	idea, err := s.store.Get(id)
	if err != nil {
		return models.Idea{}, err
	}
	credential, err := s.creds.Resolve(ctx)
	if err != nil {
		return models.Idea{}, s.fail(err)
	}

	prompt := gateway.BuildCoachingPrompt(idea, intent, idea.AICoachingSessions, question)
	result, err := s.ai.RequestCoaching(ctx, credential, prompt, intent)
	if err != nil {
		return models.Idea{}, s.fail(err)
	}

	sources := result.Sources
	if s.enricher != nil && len(sources) > 0 {
		sources = s.enricher.Enrich(ctx, sources)
	}
	session := models.AICoachingSession{
		PromptType:        intent,
		PromptSent:        prompt,
		Response:          result.Text,
		Timestamp:         s.now(),
		GroundingMetadata: sources,
	}

	// 요청 중에 편집된 내용이 있을 수 있으므로 최신 상태를 다시 읽는다.
	latest, err := s.store.Get(id)
	if err != nil {
		return models.Idea{}, err
	}
	sessions := append([]models.AICoachingSession{session}, latest.AICoachingSessions...)
	return s.store.MergeAIResult(ctx, id, store.AIResultPatch{AICoachingSessions: &sessions})
}

// GenerateImage renders an illustration for the idea. Only imageUrl and
// imagePrompt are written back.
func (s *IdeaService) GenerateImage(ctx context.Context, id string) (models.Idea, error) {
	if err := s.store.BeginAI(id); err != nil {
		return models.Idea{}, err
	}
	defer s.store.EndAI(id)

	idea, err := s.store.Get(id)
	if err != nil {
		return models.Idea{}, err
	}
	if strings.TrimSpace(idea.Title) == "" || !idea.Category.Valid() {
		return models.Idea{}, ErrIncompleteIdea
	}
	credential, err := s.creds.Resolve(ctx)
	if err != nil {
		return models.Idea{}, s.fail(err)
	}

	result, err := s.ai.GenerateImage(ctx, credential, idea.Title, idea.Category)
	if err != nil {
		return models.Idea{}, s.fail(err)
	}
	return s.store.MergeAIResult(ctx, id, store.AIResultPatch{
		ImageURL:    &result.ImageData,
		ImagePrompt: &result.PromptUsed,
	})
}

// fail records the error as the store notice and returns it unchanged.
func (s *IdeaService) fail(err error) error {
	var se *gateway.ServiceError
	switch {
	case errors.As(err, &se):
		s.store.SetNotice(store.NoticeError, se.Message)
	case errors.Is(err, gateway.ErrMissingCredential):
		s.store.SetNotice(store.NoticeError, gateway.MsgCredentialRequired)
	default:
		s.store.SetNotice(store.NoticeError, msgUnknownAIFailed)
	}
	return err
}
