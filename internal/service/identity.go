package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"
)

// maxSlugLen keeps minted ids inside the varchar(191) sub-topic id column
// even with a 36-char lesson uuid prefix.
const maxSlugLen = 60

// MintSubTopicID builds a globally unique sub-topic id:
//
//	<lessonID>_<batchTS>_<index>_<slug(title)>
//
// The lesson prefix keeps the id traceable to its parent, the millisecond
// batch timestamp separates regenerations of the same lesson, and the index
// separates same-batch titles that slugify identically. No storage lookup is
// needed before first write; a write conflict downstream is treated as
// ErrIdentityCollision, never retried with a reused id.
func MintSubTopicID(lessonID string, batchTS int64, index int, title string) (string, error) {
	if lessonID == "" {
		return "", fmt.Errorf("mint sub-topic id: empty lesson id")
	}
	if batchTS <= 0 {
		return "", util.ErrNonMonotonicBatch
	}
	if index < 0 {
		return "", fmt.Errorf("mint sub-topic id: negative batch index %d", index)
	}
	return fmt.Sprintf("%s_%d_%d_%s", lessonID, batchTS, index, Slugify(title)), nil
}

// Slugify lowercases a human title and reduces it to hyphen-separated ASCII
// words. Titles that slugify to nothing (e.g. fully non-Latin) come back as
// "topic"; uniqueness never depends on the slug, only readability does.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "topic"
	}
	return slug
}
