package gateway

import (
	"context"

	"google.golang.org/genai"
)

// Backend 는 게이트웨이가 쓰는 genai 모델 서비스의 일부다.
type Backend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// BackendFactory builds a backend for one credential.
type BackendFactory func(ctx context.Context, credential string) (Backend, error)

type genaiBackend struct {
	client *genai.Client
}

// NewGenAIBackend 는 주어진 키로 Gemini API 클라이언트를 만든다.
func NewGenAIBackend(ctx context.Context, credential string) (Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  credential,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &genaiBackend{client: client}, nil
}

func (b *genaiBackend) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return b.client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (b *genaiBackend) GenerateImages(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return b.client.Models.GenerateImages(ctx, model, prompt, cfg)
}
