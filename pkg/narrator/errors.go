package narrator

import "errors"

var (
	// ErrTourActive is returned when starting a tour while one is running.
	ErrTourActive = errors.New("a tour is already active")
	// ErrNoTour is returned for operations that need a prepared tour.
	ErrNoTour = errors.New("no tour prepared")
	// ErrInvalidPOI is returned when a session references a POI the
	// orchestrator cannot narrate.
	ErrInvalidPOI = errors.New("invalid POI")
	// ErrGenerationFailed wraps provider failures during script generation.
	ErrGenerationFailed = errors.New("narration generation failed")
	// ErrTimeout is returned when generation exceeds its phase deadline.
	ErrTimeout = errors.New("narration generation timed out")
	// ErrTimingInvalid is returned when a narration cannot fit between the
	// vehicle and the POI.
	ErrTimingInvalid = errors.New("narration timing invalid")
)
