package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/config"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
)

// AIService talks to the upstream OpenAI-compatible collaborator. Responses
// are untrusted: callers always pass the decoded sections through the
// section validator before anything is stored or rendered.
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// SubTopicProposal is one candidate sub-topic from a lesson-plan generation,
// before an id has been minted for it.
type SubTopicProposal struct {
	Title    string              `json:"title"`
	Category string              `json:"category"`
	Level    model.LanguageLevel `json:"level"`
}

type lessonPlanResponse struct {
	SubTopics []SubTopicProposal `json:"sub_topics"`
}

type sectionsResponse struct {
	Sections []model.Section `json:"sections"`
}

// Chat sends one system+user exchange and returns the raw assistant text.
// Timeouts and transport failures come back as the typed generation errors;
// callers never hang on a slow collaborator.
func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", util.ErrGenerationTimeout
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", util.ErrGenerationTimeout
		}
		return "", fmt.Errorf("%w: %v", util.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: status %d", util.ErrGenerationUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("AI returned unparsable response: %v", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// GenerateLessonPlan asks the collaborator for count sub-topic proposals
// tailored to the learner's profile.
func (s *AIService) GenerateLessonPlan(ctx context.Context, learner *model.User, count int) ([]SubTopicProposal, error) {
	system := "You are a language-tutoring curriculum planner. Respond with JSON only, no prose."
	prompt := fmt.Sprintf(
		"Propose %d lesson sub-topics for a %s learner of %s (native language: %s).\n"+
			"Learner goals: %s\nKnown gaps: %s\n"+
			"Respond as {\"sub_topics\":[{\"title\":string,\"category\":string,\"level\":string}]} "+
			"where category is one of grammar, vocabulary, conversation, pronunciation and level is the CEFR level in lowercase.",
		count, learner.Level, learner.TargetLanguage, learner.NativeLanguage, learner.Goals, learner.Gaps,
	)

	content, err := s.Chat(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	var plan lessonPlanResponse
	if err := json.Unmarshal(extractJSON(content), &plan); err != nil {
		return nil, fmt.Errorf("lesson plan is not valid JSON: %v", err)
	}
	if len(plan.SubTopics) == 0 {
		return nil, fmt.Errorf("lesson plan contains no sub-topics")
	}
	for i, st := range plan.SubTopics {
		if strings.TrimSpace(st.Title) == "" {
			return nil, fmt.Errorf("lesson plan sub-topic %d has no title", i)
		}
	}

	return plan.SubTopics, nil
}

// GenerateSections asks the collaborator to expand one sub-topic into raw
// interactive-document sections.
func (s *AIService) GenerateSections(ctx context.Context, subTopic *model.SubTopic, learner *model.User) ([]model.Section, error) {
	content, err := s.Chat(ctx, sectionSystemPrompt, s.sectionPrompt(subTopic, learner))
	if err != nil {
		return nil, err
	}

	var parsed sectionsResponse
	if err := json.Unmarshal(extractJSON(content), &parsed); err != nil {
		return nil, fmt.Errorf("sections are not valid JSON: %v", err)
	}
	if len(parsed.Sections) == 0 {
		return nil, fmt.Errorf("generator returned no sections")
	}

	return parsed.Sections, nil
}

// RegenerateSection re-requests a single malformed section without touching
// the rest of the document.
func (s *AIService) RegenerateSection(ctx context.Context, subTopic *model.SubTopic, learner *model.User, section model.Section) (model.Section, error) {
	prompt := fmt.Sprintf(
		"%s\nRegenerate only the %q section titled %q. Respond as {\"sections\":[<that one section>]}.",
		s.sectionPrompt(subTopic, learner), section.ContentType, section.Title,
	)

	content, err := s.Chat(ctx, sectionSystemPrompt, prompt)
	if err != nil {
		return model.Section{}, err
	}

	var parsed sectionsResponse
	if err := json.Unmarshal(extractJSON(content), &parsed); err != nil {
		return model.Section{}, fmt.Errorf("regenerated section is not valid JSON: %v", err)
	}
	if len(parsed.Sections) == 0 {
		return model.Section{}, fmt.Errorf("regeneration returned no section")
	}

	return parsed.Sections[0], nil
}

const sectionSystemPrompt = "You are a language-lesson author. Respond with JSON only, no prose. " +
	"Every section needs content_type, title, ai_placeholder and payload; payload shape follows content_type."

func (s *AIService) sectionPrompt(subTopic *model.SubTopic, learner *model.User) string {
	return fmt.Sprintf(
		"Create interactive lesson sections for the sub-topic %q (category %s, level %s) "+
			"for a learner of %s whose native language is %s.\n"+
			"Allowed content_type values: vocabulary_matching, matching, list, full_dialogue, text, info_card, "+
			"grammar_explanation, translation_match, listen_repeat, complete_sentence.\n"+
			"Respond as {\"sections\":[{\"content_type\":string,\"title\":string,\"ai_placeholder\":string,\"payload\":object}]}.",
		subTopic.Title, subTopic.Category, subTopic.Level, learner.TargetLanguage, learner.NativeLanguage,
	)
}

// extractJSON strips markdown fences the model sometimes wraps around its
// JSON despite instructions.
func extractJSON(content string) []byte {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	return []byte(trimmed)
}
