package service

import (
	"encoding/json"
	"fmt"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
)

// Word-substitution templates for synthesized entries. Indexed by a seed
// derived from the section content itself, so the same input always yields
// the same filler.
var (
	exampleSentenceTemplates = []string{
		"I used the word \"%s\" in class today.",
		"Can you make your own sentence with \"%s\"?",
		"My teacher wrote \"%s\" on the board.",
		"Yesterday I practiced saying \"%s\" out loud.",
		"The word \"%s\" comes up often in conversation.",
	}
	reviewPromptTemplates = []string{
		"Review: %s",
		"Say it again: %s",
		"One more time: %s",
	}
)

// FallbackService deterministically pads underfilled countable sections up
// to the level-appropriate minimum. It only recombines material already in
// the section; it never invents structural content (dialogues, translations,
// prose), so those types cannot be rescued here.
type FallbackService struct{}

func NewFallbackService() *FallbackService {
	return &FallbackService{}
}

// Fill appends missing synthesized entries to a countable section and
// returns the rewritten section plus the number of entries added. Synthesized
// entries carry OriginFallback so diagnostics can report the fallback ratio.
func (s *FallbackService) Fill(section model.Section, missing int) (model.Section, int, error) {
	if missing <= 0 {
		return section, 0, nil
	}

	switch section.ContentType {
	case model.TypeVocabularyMatching:
		return s.fillVocabulary(section, missing)
	case model.TypeMatching:
		return s.fillMatching(section, missing)
	case model.TypeList:
		return s.fillList(section, missing)
	default:
		// Structural types cannot be safely templated; an underfilled one
		// is as unusable as a malformed one.
		return section, 0, fmt.Errorf("%w: cannot synthesize %s content", util.ErrMalformedSection, section.ContentType)
	}
}

func (s *FallbackService) fillVocabulary(section model.Section, missing int) (model.Section, int, error) {
	var payload model.VocabularyPayload
	if err := json.Unmarshal(section.Payload, &payload); err != nil {
		return section, 0, fmt.Errorf("%w: %v", util.ErrMalformedSection, err)
	}
	if len(payload.Words) == 0 {
		return section, 0, fmt.Errorf("%w: no vocabulary entries to derive filler from", util.ErrMalformedSection)
	}

	seed := 0
	for _, w := range payload.Words {
		seed += charSum(w.Word)
	}

	for i := 0; i < missing; i++ {
		src := payload.Words[(seed+i)%len(payload.Words)]
		tmpl := exampleSentenceTemplates[(seed+i)%len(exampleSentenceTemplates)]
		payload.Words = append(payload.Words, model.VocabularyEntry{
			Word:            src.Word,
			Translation:     src.Translation,
			ExampleSentence: fmt.Sprintf(tmpl, src.Word),
			Origin:          model.OriginFallback,
		})
	}

	return rewritePayload(section, model.VocabularyPayload{Words: payload.Words}, missing)
}

func (s *FallbackService) fillMatching(section model.Section, missing int) (model.Section, int, error) {
	var payload model.MatchingPayload
	if err := json.Unmarshal(section.Payload, &payload); err != nil {
		return section, 0, fmt.Errorf("%w: %v", util.ErrMalformedSection, err)
	}
	if len(payload.Pairs) == 0 {
		return section, 0, fmt.Errorf("%w: no matching pairs to derive filler from", util.ErrMalformedSection)
	}

	seed := 0
	for _, p := range payload.Pairs {
		seed += charSum(p.Left)
	}

	for i := 0; i < missing; i++ {
		src := payload.Pairs[(seed+i)%len(payload.Pairs)]
		tmpl := reviewPromptTemplates[(seed+i)%len(reviewPromptTemplates)]
		payload.Pairs = append(payload.Pairs, model.MatchingPair{
			Left:   fmt.Sprintf(tmpl, src.Left),
			Right:  src.Right,
			Origin: model.OriginFallback,
		})
	}

	return rewritePayload(section, model.MatchingPayload{Pairs: payload.Pairs}, missing)
}

func (s *FallbackService) fillList(section model.Section, missing int) (model.Section, int, error) {
	var payload model.ListPayload
	if err := json.Unmarshal(section.Payload, &payload); err != nil {
		return section, 0, fmt.Errorf("%w: %v", util.ErrMalformedSection, err)
	}
	if len(payload.Items) == 0 {
		return section, 0, fmt.Errorf("%w: no list items to derive filler from", util.ErrMalformedSection)
	}

	seed := 0
	for _, item := range payload.Items {
		seed += charSum(item.Text)
	}

	for i := 0; i < missing; i++ {
		src := payload.Items[(seed+i)%len(payload.Items)]
		tmpl := reviewPromptTemplates[(seed+i)%len(reviewPromptTemplates)]
		payload.Items = append(payload.Items, model.ListItem{
			Text:   fmt.Sprintf(tmpl, src.Text),
			Origin: model.OriginFallback,
		})
	}

	return rewritePayload(section, model.ListPayload{Items: payload.Items}, missing)
}

// charSum is the documented determinism seed: the byte sum of the content
// itself, never wall-clock time.
func charSum(s string) int {
	sum := 0
	for _, b := range []byte(s) {
		sum += int(b)
	}
	return sum
}

func rewritePayload(section model.Section, payload interface{}, added int) (model.Section, int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return section, 0, err
	}
	section.Payload = raw
	return section, added, nil
}
