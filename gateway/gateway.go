package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"fire-base/config"
	"fire-base/logger"
	"fire-base/models"
)

const (
	OpSeeds    = "generate_seeds"
	OpCoaching = "coaching"
	OpImage    = "generate_image"
)

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// CallRecorder observes every backend call. Outcome is "ok" or "error".
type CallRecorder interface {
	ObserveAICall(op, outcome string, elapsed time.Duration)
}

type CoachingResult struct {
	Text    string
	Sources []models.GroundingChunk
}

type ImageResult struct {
	ImageData  string // data URL
	PromptUsed string
}

type Gateway struct {
	model      string
	imageModel string
	timeout    time.Duration

	quota    *QuotaLimiter
	factory  BackendFactory
	recorder CallRecorder

	mu      sync.Mutex
	clients map[string]Backend
}

type Option func(*Gateway)

func WithBackendFactory(f BackendFactory) Option {
	return func(g *Gateway) { g.factory = f }
}

func WithQuota(q *QuotaLimiter) Option {
	return func(g *Gateway) { g.quota = q }
}

func WithRecorder(r CallRecorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

func New(cfg config.GeminiConfig, opts ...Option) *Gateway {
	g := &Gateway{
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		timeout:    cfg.Timeout(),
		factory:    NewGenAIBackend,
		clients:    map[string]Backend{},
	}
	if g.model == "" {
		g.model = config.DefaultGeminiModel
	}
	if g.imageModel == "" {
		g.imageModel = config.DefaultImagenModel
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateIdeaSeeds 는 topic 에 대한 아이디어 세 개를 요청한다.
// 형식이나 열거형 검증에 실패한 항목은 버리고, 파싱할 수 없는 응답은 ErrMalformedResponse 다.
func (g *Gateway) GenerateIdeaSeeds(ctx context.Context, credential, topic string) ([]models.IdeaSeed, error) {
	var seeds []models.IdeaSeed
	err := g.call(ctx, OpSeeds, prefixSeeds, credential, func(ctx context.Context, b Backend) error {
		resp, err := b.GenerateContent(ctx, g.model, genai.Text(SeedPrompt(topic)), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return err
		}
		seeds, err = ParseSeeds(responseText(resp))
		return err
	})
	if err != nil {
		return nil, err
	}
	return seeds, nil
}

// RequestCoaching 은 완성된 프롬프트를 보낸다.
// 자료 탐색 의도는 구글 검색 도구를 켜고 출처를 함께 돌려준다.
func (g *Gateway) RequestCoaching(ctx context.Context, credential, prompt string, intent models.CoachingPromptType) (CoachingResult, error) {
	var result CoachingResult
	err := g.call(ctx, OpCoaching, prefixCoaching, credential, func(ctx context.Context, b Backend) error {
		var cfg *genai.GenerateContentConfig
		if intent.UsesSearch() {
			cfg = &genai.GenerateContentConfig{
				Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
			}
		}
		resp, err := b.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return err
		}
		result.Text = strings.TrimSpace(responseText(resp))
		result.Sources = groundingSources(resp)
		return nil
	})
	return result, err
}

// GenerateImage 는 아이디어 이미지를 JPEG 한 장으로 만들어 data URL 로 반환한다.
func (g *Gateway) GenerateImage(ctx context.Context, credential, title string, category models.Category) (ImageResult, error) {
	prompt := ImagePrompt(title, category)
	var result ImageResult
	err := g.call(ctx, OpImage, prefixImage, credential, func(ctx context.Context, b Backend) error {
		resp, err := b.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: "image/jpeg",
		})
		if err != nil {
			return err
		}
		if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
			len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
			return &ServiceError{Op: OpImage, Message: prefixImage + "이미지 데이터를 받지 못했습니다.", Cause: ErrNoImage}
		}
		result = ImageResult{
			ImageData:  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes),
			PromptUsed: prompt,
		}
		return nil
	})
	return result, err
}

func (g *Gateway) call(ctx context.Context, op, prefix, credential string, fn func(context.Context, Backend) error) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return missingCredential(op)
	}

	ok, err := g.quota.WaitAndReserve(ctx)
	if err != nil {
		return classify(op, prefix, err)
	}
	if !ok {
		logger.WarnCtx(ctx, "AI quota exhausted", logger.Fields{"op": op})
		return &ServiceError{Op: op, Message: prefix + "오늘의 AI 요청 한도를 모두 사용했습니다.", Cause: ErrQuotaExceeded}
	}

	backend, err := g.backend(ctx, credential)
	if err != nil {
		return classify(op, prefix, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	err = fn(ctx, backend)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		logger.ErrorCtx(ctx, "AI call failed", logger.Fields{
			"op":         op,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		})
		err = classify(op, prefix, err)
	} else {
		logger.InfoCtx(ctx, "AI call completed", logger.Fields{
			"op":         op,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
	if g.recorder != nil {
		g.recorder.ObserveAICall(op, outcome, elapsed)
	}
	return err
}

// backend 는 키별로 캐시된 백엔드를 반환하고, 처음이면 새로 만든다.
func (g *Gateway) backend(ctx context.Context, credential string) (Backend, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.clients[credential]; ok {
		return b, nil
	}
	b, err := g.factory(ctx, credential)
	if err != nil {
		return nil, err
	}
	g.clients[credential] = b
	return b, nil
}

// Forget 은 삭제되거나 교체된 키의 캐시된 백엔드를 버린다.
func (g *Gateway) Forget(credential string) {
	g.mu.Lock()
	delete(g.clients, strings.TrimSpace(credential))
	g.mu.Unlock()
}

// rawSeed 는 필드가 빠진 것과 비어 있는 것을 구분하려고 포인터를 쓴다.
type rawSeed struct {
	Title             *string   `json:"title"`
	Category          *string   `json:"category"`
	Description       *string   `json:"description"`
	PotentialImpact   *string   `json:"potentialImpact"`
	EffortLevel       *string   `json:"effortLevel"`
	InitialSteps      *[]string `json:"initialSteps"`
	RefinementPrompts *[]string `json:"refinementPrompts"`
}

func (r rawSeed) toSeed() (models.IdeaSeed, bool) {
	if r.Title == nil || r.Category == nil || r.Description == nil || r.PotentialImpact == nil ||
		r.EffortLevel == nil || r.InitialSteps == nil || r.RefinementPrompts == nil {
		return models.IdeaSeed{}, false
	}
	seed := models.IdeaSeed{
		Title:             *r.Title,
		Category:          models.Category(*r.Category),
		Description:       *r.Description,
		PotentialImpact:   models.Level(*r.PotentialImpact),
		EffortLevel:       models.Level(*r.EffortLevel),
		InitialSteps:      *r.InitialSteps,
		RefinementPrompts: *r.RefinementPrompts,
	}
	if seed.InitialSteps == nil || seed.RefinementPrompts == nil || seed.Validate() != nil {
		return models.IdeaSeed{}, false
	}
	return seed, true
}

// ParseSeeds 는 코드 펜스가 있으면 벗기고 시드 배열을 디코딩한다.
// 배열이 아닌 올바른 JSON 이면 시드가 없는 것으로 본다.
func ParseSeeds(text string) ([]models.IdeaSeed, error) {
	body := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(body); m != nil && m[1] != "" {
		body = strings.TrimSpace(m[1])
	}

	if !json.Valid([]byte(body)) {
		return nil, &ServiceError{
			Op:      OpSeeds,
			Message: prefixSeeds + "잘못된 JSON 형식입니다.",
			Cause:   fmt.Errorf("%w: %.100q", ErrMalformedResponse, body),
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		logger.WarnWithFields("seed response is not a JSON array", logger.Fields{"error": err.Error()})
		return []models.IdeaSeed{}, nil
	}

	seeds := make([]models.IdeaSeed, 0, len(items))
	for idx, item := range items {
		var raw rawSeed
		if err := json.Unmarshal(item, &raw); err != nil {
			logger.DebugWithFields("dropping seed with wrong field types", logger.Fields{"index": idx, "error": err.Error()})
			continue
		}
		seed, ok := raw.toSeed()
		if !ok {
			logger.DebugWithFields("dropping invalid seed", logger.Fields{"index": idx})
			continue
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

func groundingSources(resp *genai.GenerateContentResponse) []models.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	var out []models.GroundingChunk
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, models.GroundingChunk{Web: &models.WebSource{URI: chunk.Web.URI, Title: chunk.Web.Title}})
	}
	return out
}
