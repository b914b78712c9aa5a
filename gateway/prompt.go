package gateway

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"fire-base/models"
)

// maxHistorySessions 는 프롬프트에 다시 넣는 이전 코칭 기록의 최대 개수다.
const maxHistorySessions = 5

var (
	userQuestionPattern = regexp.MustCompile(`(?i)specific question about this idea: "([^"]+)"`)
	taskPattern         = regexp.MustCompile(`(?is)Your task is to: (.*?)\nKeep your response`)
	newlinesPattern     = regexp.MustCompile(`\n+`)
)

func joinQuoted[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, `", "`)
}

// SeedPrompt 는 아이디어 생성 요청 문구다.
func SeedPrompt(topic string) string {
	categories := joinQuoted(models.AllCategories)
	levels := joinQuoted(models.AllLevels)

	return fmt.Sprintf(`
You are an AI assistant for "FIRE Tribe Base," a platform helping users achieve Financial Independence, Retire Early (FIRE).
The user is looking for ideas related to: "%[1]s".

Generate 3 diverse and actionable ideas. For each idea, provide:
1. title: (string, concise and engaging, max 10 words)
2. category: (string, must be one of: "%[2]s")
3. description: (string, 1-3 sentences explaining the core concept and its relevance to FIRE)
4. potentialImpact: (string, must be one of: "%[3]s") - relative to FIRE goals.
5. effortLevel: (string, must be one of: "%[3]s") - initial effort to get started.
6. initialSteps: (array of 2-4 strings, actionable first steps a user can take)
7. refinementPrompts: (array of 2-3 strings, insightful questions to help the user elaborate on this idea and tailor it to their situation)

Return the response as a JSON array of objects. Each object must strictly follow this structure:
{
  "title": "예시 아이디어 제목",
  "category": "%[4]s",
  "description": "아이디어에 대한 간략한 설명입니다.",
  "potentialImpact": "Medium",
  "effortLevel": "Medium",
  "initialSteps": ["첫 번째 단계", "두 번째 단계", "세 번째 단계"],
  "refinementPrompts": ["질문 1?", "질문 2?"]
}

IMPORTANT JSON FORMATTING RULES:
- The entire response MUST be a single, valid JSON array starting with '[' and ending with ']'.
- Do not include any text or markdown formatting outside of this JSON array.
- All keys and string values must be enclosed in double quotes, with special characters properly escaped.
- There should be no trailing comma after the last element in any array or object.

All textual content within the JSON (titles, descriptions, steps, prompts) MUST BE IN KOREAN.
The category value MUST exactly match one of the provided Korean category names: "%[2]s".
The ideas should be practical and inspiring for someone pursuing FIRE.
Focus on creativity and concrete actions.
`, topic, categories, levels, models.CategoryIncomeGeneration)
}

// ImagePrompt is the Imagen prompt for an idea.
func ImagePrompt(title string, category models.Category) string {
	return fmt.Sprintf(`Concept art for a financial independence idea: "%s". Theme: %s. Style: modern, minimalist, symbolic. Focus on clarity and positive financial growth.`, title, category)
}

// BuildCoachingPrompt 는 아이디어 정보, 최근 코칭 최대 5개 요약, 의도별 과제,
// 마무리 지시문 순서로 코칭 프롬프트를 만든다. sessions 는 최신 순이어야 한다.
func BuildCoachingPrompt(idea models.Idea, intent models.CoachingPromptType, sessions []models.AICoachingSession, question string) string {
	var b strings.Builder

	b.WriteString(`You are an AI coach for "FIRE Tribe Base," specializing in Financial Independence, Retire Early (FIRE) strategies.
You MUST provide all responses in KOREAN.
The user is seeking coaching for their idea. Here is the current information about the idea:
`)
	fmt.Fprintf(&b, "- Idea Title (아이디어 제목): %s\n", idea.Title)
	fmt.Fprintf(&b, "- Category (카테고리): %s\n", idea.Category)
	fmt.Fprintf(&b, "- Description (설명): %s\n", idea.Description)
	fmt.Fprintf(&b, "- Potential Impact (잠재적 효과): %s\n", idea.PotentialImpact)
	fmt.Fprintf(&b, "- Effort Level (필요 노력): %s\n", idea.EffortLevel)
	fmt.Fprintf(&b, "- Current Status (현재 상태): %s\n", models.StatusLabel(idea.Status))
	fmt.Fprintf(&b, "- Initial Steps Planned (초기 실행 단계): %s\n", orDefault(strings.Join(idea.InitialSteps, "; "), "지정되지 않음"))
	fmt.Fprintf(&b, "- User Refinements/Notes (사용자 구체화 내용): %s\n", orDefault(refinementSummary(idea), "없음"))
	fmt.Fprintf(&b, "- Tags (태그): %s\n", orDefault(strings.Join(idea.Tags, ", "), "없음"))

	if len(sessions) > 0 {
		b.WriteString("\nPREVIOUS COACHING HISTORY (most recent first):\n")
		for i, s := range sessions {
			if i == maxHistorySessions {
				break
			}
			writeSessionSummary(&b, len(sessions)-i, s)
		}
		b.WriteString("-----------------------------------\n")
	}

	fmt.Fprintf(&b, "\nYour task is to: %s\n", coachingTask(intent, question))
	b.WriteString("Keep your response concise, actionable, and directly addressing the request. Avoid conversational fluff. Ensure your entire response is in KOREAN. Return only the core advice.")
	return b.String()
}

func writeSessionSummary(b *strings.Builder, number int, s models.AICoachingSession) {
	fmt.Fprintf(b, "--- Session %d (Type: %s, Timestamp: %s) ---\n", number, models.CoachingLabel(s.PromptType), koreanTimestamp(s.Timestamp))

	if s.PromptType == models.CoachingUserSpecificQuery {
		if m := userQuestionPattern.FindStringSubmatch(s.PromptSent); m != nil {
			fmt.Fprintf(b, "  User Asked: \"%s\"\n", truncate(m[1], 150))
		} else {
			b.WriteString("  User initiated a specific query.\n")
		}
	} else if m := taskPattern.FindStringSubmatch(s.PromptSent); m != nil {
		task := newlinesPattern.ReplaceAllString(truncateRunes(m[1], 100), " ")
		fmt.Fprintf(b, "  AI was asked to: %s...\n", task)
	}

	resp := newlinesPattern.ReplaceAllString(truncate(s.Response, 200), " ")
	fmt.Fprintf(b, "  AI Responded: \"%s\"\n", resp)
}

func coachingTask(intent models.CoachingPromptType, question string) string {
	switch intent {
	case models.CoachingActionPlanDetail:
		return "Based on the idea details, provide a concrete, actionable 5-7 step detailed action plan in KOREAN. Each step should be clear, sequential, and help the user move forward. Focus on practical actions."
	case models.CoachingRiskAnalysis:
		return "Analyze the idea and identify 3 key potential risks or challenges the user might face, in KOREAN. For each risk, suggest a brief, actionable mitigation strategy."
	case models.CoachingAlternativePerspectives:
		return "Provide 2-3 alternative perspectives or creative enhancements for this idea, in KOREAN. Think about how the user could expand, simplify, or approach the idea differently to improve its FIRE potential."
	case models.CoachingUserSpecificQuery:
		if strings.TrimSpace(question) == "" {
			return "Provide general advice on this idea in KOREAN (User question was not provided)."
		}
		return fmt.Sprintf(`The user has a specific question about this idea: "%s". Please provide a detailed and actionable answer to this specific question in KOREAN. Focus your response on directly addressing the user's query in the context of the idea. Consider all previous conversation history provided.`, question)
	case models.CoachingExploreResources:
		return `Using Google Search, identify 3-5 highly relevant online resources (articles, tools, tutorials, case studies) that can help the user further develop or implement their idea.
For each resource, provide:
1. The name or title of the resource.
2. The direct URL.
3. A brief (1-2 sentence) KOREAN explanation of why this resource is relevant to the user's idea.
Present this as a numbered list. All your responses MUST BE IN KOREAN.
Example:
1. 자료명: 유용한 아티클 제목
   URL: https://example.com/article1
   설명: 이 아티클은 아이디어의 특정 측면에 대한 심층적인 정보를 제공합니다.
Ensure URLs are complete and correct. This information will help the user explore practical next steps.
`
	case models.CoachingIdeaElaboration:
		return "Elaborate on the user's idea in KOREAN. Provide a more detailed breakdown of the concept. Suggest 2-3 related sub-ideas or potential expansions. Identify potential synergies with other common FIRE strategies. Discuss any less obvious pitfalls or opportunities for innovation related to this core idea. Be practical and inspiring."
	default:
		return "Provide general guidance and encouragement for this idea in KOREAN."
	}
}

// refinementSummary 는 질문 순서대로 답을 나열하고, 남은 옛 질문의 답은 정렬해서 뒤에 붙인다.
func refinementSummary(idea models.Idea) string {
	seen := make(map[string]bool, len(idea.UserRefinements))
	var parts []string
	for _, p := range idea.RefinementPrompts {
		if v, ok := idea.UserRefinements[p]; ok && !seen[p] {
			parts = append(parts, p+": "+v)
			seen[p] = true
		}
	}
	var rest []string
	for k := range idea.UserRefinements {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, k+": "+idea.UserRefinements[k])
	}
	return strings.Join(parts, "; ")
}

// koreanTimestamp renders t like "2025. 5. 1. 오후 3:04:05".
func koreanTimestamp(t time.Time) string {
	ampm := "오전"
	if t.Hour() >= 12 {
		ampm = "오후"
	}
	return fmt.Sprintf("%s %s %s", t.Format("2006. 1. 2."), ampm, t.Format("3:04:05"))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// truncate 는 s 를 n 글자로 자르고 "..." 를 붙인다.
func truncate(s string, n int) string {
	if out := truncateRunes(s, n); out != s {
		return out + "..."
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
