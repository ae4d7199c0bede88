package model

import "encoding/json"

// ContentType tags a section payload. The set is closed: anything outside it
// is malformed by definition, the AI collaborator is never trusted to invent
// new shapes.
type ContentType string

const (
	TypeVocabularyMatching ContentType = "vocabulary_matching"
	TypeMatching           ContentType = "matching"
	TypeList               ContentType = "list"
	TypeFullDialogue       ContentType = "full_dialogue"
	TypeText               ContentType = "text"
	TypeInfoCard           ContentType = "info_card"
	TypeGrammarExplanation ContentType = "grammar_explanation"
	TypeTranslationMatch   ContentType = "translation_match"
	TypeListenRepeat       ContentType = "listen_repeat"
	TypeCompleteSentence   ContentType = "complete_sentence"
)

// KnownContentTypes is the closed content-type set.
var KnownContentTypes = map[ContentType]bool{
	TypeVocabularyMatching: true,
	TypeMatching:           true,
	TypeList:               true,
	TypeFullDialogue:       true,
	TypeText:               true,
	TypeInfoCard:           true,
	TypeGrammarExplanation: true,
	TypeTranslationMatch:   true,
	TypeListenRepeat:       true,
	TypeCompleteSentence:   true,
}

// EntryOrigin distinguishes AI-authored entries from synthesized filler.
// The ratio of fallback-origin content is an operator quality signal; the
// learner-facing renderer does not show it.
type EntryOrigin string

const (
	OriginAI       EntryOrigin = "ai"
	OriginFallback EntryOrigin = "fallback"
)

// Section is one unit of an interactive document. Payload shape is
// determined by ContentType; the validator decodes it through the matching
// variant struct rather than probing fields ad hoc.
// swagger:model Section
type Section struct {
	ContentType   ContentType     `json:"content_type"`
	Title         string          `json:"title"`
	AIPlaceholder string          `json:"ai_placeholder"` // field the generator must populate
	Payload       json.RawMessage `json:"payload"`
}

// --- payload variants, one per content type ---

type VocabularyEntry struct {
	Word            string      `json:"word"`
	Translation     string      `json:"translation"`
	ExampleSentence string      `json:"example_sentence"`
	Origin          EntryOrigin `json:"origin,omitempty"`
}

type VocabularyPayload struct {
	Words []VocabularyEntry `json:"words"`
}

type MatchingPair struct {
	Left   string      `json:"left"`
	Right  string      `json:"right"`
	Origin EntryOrigin `json:"origin,omitempty"`
}

type MatchingPayload struct {
	Pairs []MatchingPair `json:"pairs"`
}

type ListItem struct {
	Text   string      `json:"text"`
	Origin EntryOrigin `json:"origin,omitempty"`
}

type ListPayload struct {
	Items []ListItem `json:"items"`
}

type DialogueTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	// Role is the classified speaker role (tutor/learner/narrator),
	// resolved through the injectable role cache, never stored by the AI.
	Role string `json:"role,omitempty"`
}

type DialoguePayload struct {
	Turns []DialogueTurn `json:"turns"`
}

// TextPayload serves text, info_card and grammar_explanation.
type TextPayload struct {
	Body string `json:"body"`
}

type TranslationPair struct {
	Source string      `json:"source"`
	Target string      `json:"target"`
	Origin EntryOrigin `json:"origin,omitempty"`
}

type TranslationMatchPayload struct {
	Pairs []TranslationPair `json:"pairs"`
}

type ListenRepeatPhrase struct {
	Text     string  `json:"text"`
	AudioURL string  `json:"audio_url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

type ListenRepeatPayload struct {
	Phrases []ListenRepeatPhrase `json:"phrases"`
}

type CompleteSentenceItem struct {
	SentenceWithGap string `json:"sentence_with_gap"`
	Answer          string `json:"answer"`
}

type CompleteSentencePayload struct {
	Items []CompleteSentenceItem `json:"items"`
}
