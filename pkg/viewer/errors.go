package viewer

import "errors"

var (
	// ErrNotDevMode is returned for dev-mode tooling used in presentation mode.
	ErrNotDevMode = errors.New("viewer: dev mode is off")

	// ErrNoBookmark is returned when restoring before any save.
	ErrNoBookmark = errors.New("viewer: no saved camera")

	// ErrUnknownAsset is returned when selecting something that is not a light or the model.
	ErrUnknownAsset = errors.New("viewer: unknown asset")

	// ErrNoChat is returned when the viewer was built without a chat session.
	ErrNoChat = errors.New("viewer: chat not configured")

	// ErrNoClipboard is returned when copying without a clipboard.
	ErrNoClipboard = errors.New("viewer: clipboard not configured")
)
