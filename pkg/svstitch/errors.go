package svstitch

// The failure taxonomy. Configuration problems kill initialization
// outright; capture and geometry problems kill one stitch cycle and
// nothing else; numeric edge cases never surface as errors at all
// (they are absorbed as sentinel coordinates or unchanged gains).

import "errors"

var (
	// ErrConfiguration: missing/malformed calibration or config.
	// Fatal to initialization, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrCapture: a camera delivered no frame this cycle. The cycle
	// is skipped; the caller keeps the previous composite.
	ErrCapture = errors.New("capture error")

	// ErrGeometry: frame/mask dimensions disagree in a way the
	// corrective resize couldn't fix. Fatal to the cycle only.
	ErrGeometry = errors.New("geometry error")
)
