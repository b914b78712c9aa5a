package services

import (
	"context"
	"math/rand/v2"

	"fire-base/feeder"
	"fire-base/models"
)

type HeadlineSource interface {
	Headlines(ctx context.Context) []feeder.RssFeedItem
}

type Suggestions struct {
	Pick      string               `json:"pick"`
	Examples  []string             `json:"examples"`
	Headlines []feeder.RssFeedItem `json:"headlines"`
}

// SuggestionService offers brainstorm topics: the built-in examples plus
// recent headlines from the inspiration feeds.
type SuggestionService struct {
	headlines HeadlineSource
	intn      func(n int) int
}

func NewSuggestionService(headlines HeadlineSource) *SuggestionService {
	return &SuggestionService{headlines: headlines, intn: rand.IntN}
}

func (s *SuggestionService) Suggest(ctx context.Context) Suggestions {
	examples := append([]string(nil), models.BrainstormExamples...)
	out := Suggestions{
		Examples:  examples,
		Headlines: []feeder.RssFeedItem{},
	}
	if len(examples) > 0 {
		out.Pick = examples[s.intn(len(examples))]
	}
	if s.headlines != nil {
		if items := s.headlines.Headlines(ctx); items != nil {
			out.Headlines = items
		}
	}
	return out
}
