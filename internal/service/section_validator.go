package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
)

type ValidationStatus string

const (
	StatusOK          ValidationStatus = "ok"
	StatusUnderfilled ValidationStatus = "underfilled"
	StatusMalformed   ValidationStatus = "malformed"
)

// ValidationReport is the validator's verdict on one section. Underfilled
// sections are recoverable through the fallback synthesizer; malformed ones
// are not and force a per-section regeneration upstream.
type ValidationReport struct {
	Status       ValidationStatus
	MissingCount int
	Reason       string
}

// SectionValidator checks AI-returned section payloads against the declared
// content type. The AI collaborator is an untrusted producer: every payload
// is decoded through the variant struct for its tag, never probed ad hoc.
type SectionValidator struct{}

func NewSectionValidator() *SectionValidator {
	return &SectionValidator{}
}

// MinimumEntries is the level-dependent cardinality floor for countable
// types. Beginners need more worked examples; the generator legitimately
// produces fewer as proficiency rises, so a lower count at a higher level is
// not a defect.
func (v *SectionValidator) MinimumEntries(level model.LanguageLevel) int {
	switch level {
	case model.LevelA1, model.LevelA2:
		return 5
	case model.LevelB1, model.LevelB2:
		return 4
	default:
		return 3
	}
}

func (v *SectionValidator) Validate(section model.Section, level model.LanguageLevel) ValidationReport {
	if !model.KnownContentTypes[section.ContentType] {
		return malformed(fmt.Sprintf("unknown content type %q", section.ContentType))
	}
	if len(section.Payload) == 0 {
		return malformed("empty payload")
	}

	switch section.ContentType {
	case model.TypeVocabularyMatching:
		return v.validateVocabulary(section.Payload, level)
	case model.TypeMatching:
		return v.validateMatching(section.Payload, level)
	case model.TypeList:
		return v.validateList(section.Payload, level)
	case model.TypeFullDialogue:
		return v.validateDialogue(section.Payload)
	case model.TypeTranslationMatch:
		return v.validateTranslationMatch(section.Payload)
	case model.TypeText, model.TypeInfoCard, model.TypeGrammarExplanation:
		return v.validateText(section.Payload)
	case model.TypeListenRepeat:
		return v.validateListenRepeat(section.Payload)
	case model.TypeCompleteSentence:
		return v.validateCompleteSentence(section.Payload)
	}
	return malformed(fmt.Sprintf("unhandled content type %q", section.ContentType))
}

func (v *SectionValidator) validateVocabulary(raw json.RawMessage, level model.LanguageLevel) ValidationReport {
	var payload model.VocabularyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("vocabulary payload: " + err.Error())
	}
	for i, w := range payload.Words {
		if strings.TrimSpace(w.Word) == "" || strings.TrimSpace(w.Translation) == "" {
			return malformed(fmt.Sprintf("vocabulary entry %d missing word or translation", i))
		}
	}
	return v.countable(len(payload.Words), level)
}

func (v *SectionValidator) validateMatching(raw json.RawMessage, level model.LanguageLevel) ValidationReport {
	var payload model.MatchingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("matching payload: " + err.Error())
	}
	for i, p := range payload.Pairs {
		if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
			return malformed(fmt.Sprintf("matching pair %d has an empty side", i))
		}
	}
	return v.countable(len(payload.Pairs), level)
}

func (v *SectionValidator) validateList(raw json.RawMessage, level model.LanguageLevel) ValidationReport {
	var payload model.ListPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("list payload: " + err.Error())
	}
	for i, item := range payload.Items {
		if strings.TrimSpace(item.Text) == "" {
			return malformed(fmt.Sprintf("list item %d is empty", i))
		}
	}
	return v.countable(len(payload.Items), level)
}

func (v *SectionValidator) validateDialogue(raw json.RawMessage) ValidationReport {
	var payload model.DialoguePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("dialogue payload: " + err.Error())
	}
	if len(payload.Turns) == 0 {
		return malformed("dialogue has no turns")
	}
	for i, t := range payload.Turns {
		if strings.TrimSpace(t.Speaker) == "" {
			return malformed(fmt.Sprintf("dialogue turn %d has no speaker", i))
		}
		if strings.TrimSpace(t.Text) == "" {
			return malformed(fmt.Sprintf("dialogue turn %d has no text", i))
		}
	}
	return ok()
}

func (v *SectionValidator) validateTranslationMatch(raw json.RawMessage) ValidationReport {
	var payload model.TranslationMatchPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("translation_match payload: " + err.Error())
	}
	if len(payload.Pairs) == 0 {
		return malformed("translation_match has no pairs")
	}
	for i, p := range payload.Pairs {
		if strings.TrimSpace(p.Source) == "" || strings.TrimSpace(p.Target) == "" {
			return malformed(fmt.Sprintf("translation pair %d missing source or target", i))
		}
	}
	return ok()
}

func (v *SectionValidator) validateText(raw json.RawMessage) ValidationReport {
	var payload model.TextPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("text payload: " + err.Error())
	}
	if strings.TrimSpace(payload.Body) == "" {
		return malformed("text body is empty")
	}
	return ok()
}

func (v *SectionValidator) validateListenRepeat(raw json.RawMessage) ValidationReport {
	var payload model.ListenRepeatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("listen_repeat payload: " + err.Error())
	}
	if len(payload.Phrases) == 0 {
		return malformed("listen_repeat has no phrases")
	}
	for i, p := range payload.Phrases {
		if strings.TrimSpace(p.Text) == "" {
			return malformed(fmt.Sprintf("listen_repeat phrase %d is empty", i))
		}
	}
	return ok()
}

func (v *SectionValidator) validateCompleteSentence(raw json.RawMessage) ValidationReport {
	var payload model.CompleteSentencePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return malformed("complete_sentence payload: " + err.Error())
	}
	if len(payload.Items) == 0 {
		return malformed("complete_sentence has no items")
	}
	for i, item := range payload.Items {
		if !strings.Contains(item.SentenceWithGap, "___") {
			return malformed(fmt.Sprintf("complete_sentence item %d has no gap marker", i))
		}
		if strings.TrimSpace(item.Answer) == "" {
			return malformed(fmt.Sprintf("complete_sentence item %d has no answer", i))
		}
	}
	return ok()
}

func (v *SectionValidator) countable(count int, level model.LanguageLevel) ValidationReport {
	min := v.MinimumEntries(level)
	if count >= min {
		return ok()
	}
	return ValidationReport{Status: StatusUnderfilled, MissingCount: min - count}
}

func ok() ValidationReport {
	return ValidationReport{Status: StatusOK}
}

func malformed(reason string) ValidationReport {
	return ValidationReport{Status: StatusMalformed, Reason: reason}
}
