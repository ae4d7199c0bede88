package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email is already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthorized     = errors.New("unauthorized")

	ErrLessonNotFound   = errors.New("lesson not found")
	ErrSubTopicNotFound = errors.New("sub-topic not found")
	ErrDocumentNotFound = errors.New("document not found")

	// Upstream AI collaborator failures. Timeout and unavailability are
	// retryable; the learner sees a degraded fallback document, never a
	// raw parse error.
	ErrGenerationTimeout     = errors.New("generation request timed out")
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrMalformedSection means the AI payload failed structural
	// validation. It is never auto-fixed; the section is regenerated.
	ErrMalformedSection = errors.New("malformed section payload")

	// ErrIdentityCollision means a freshly minted sub-topic id already
	// exists in storage. That can only happen on clock skew or a
	// single-flight violation, so the batch aborts instead of deduping.
	ErrIdentityCollision = errors.New("sub-topic identity collision")

	// ErrGenerationInFlight rejects a second concurrent plan generation
	// for the same lesson.
	ErrGenerationInFlight = errors.New("a generation for this lesson is already in flight")

	// ErrNonMonotonicBatch fails a generation closed when the new batch
	// timestamp is not strictly after the lesson's last recorded batch.
	ErrNonMonotonicBatch = errors.New("batch timestamp is not monotonic for this lesson")

	// ErrAmbiguousMigration marks a legacy record with more than one
	// candidate target; it is reported and left untouched, never guessed.
	ErrAmbiguousMigration = errors.New("ambiguous legacy migration target")

	ErrInvalidAudioExt = errors.New("unsupported audio format")
)
