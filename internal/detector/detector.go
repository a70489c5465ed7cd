// Package detector defines the inference capability injected into the
// detection service: a function from a media reference to a verdict. The
// lifecycle logic depends only on the Func type, so it is testable without a
// real model.
package detector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/akovalyov/deeptrace/internal/models"
)

// Outcome is the verdict produced by a detector run.
type Outcome struct {
	// Result is the classification of the media.
	Result models.DetectionResult
	// Confidence lies in [0, 1].
	Confidence float64
	// Seconds is the processing duration.
	Seconds float64
}

// Func runs inference on the media at mediaPath.
type Func func(ctx context.Context, mediaPath string, mediaType models.MediaType) (Outcome, error)

// Random returns a stand-in detector producing uniformly random confidence
// scores, mirroring the placeholder model: images score in [0.3, 0.9) with
// fake above 0.7 and real below 0.3; videos score in [0.2, 0.8) with fake
// above 0.6 and real below 0.4; anything between is uncertain.
func Random(seed int64) Func {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))

	return func(ctx context.Context, mediaPath string, mediaType models.MediaType) (Outcome, error) {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		start := time.Now()

		mu.Lock()
		u := rng.Float64()
		mu.Unlock()

		var confidence float64
		var result models.DetectionResult
		switch mediaType {
		case models.MediaVideo:
			confidence = 0.2 + u*0.6
			switch {
			case confidence > 0.6:
				result = models.ResultFake
			case confidence < 0.4:
				result = models.ResultReal
			default:
				result = models.ResultUncertain
			}
		default:
			confidence = 0.3 + u*0.6
			switch {
			case confidence > 0.7:
				result = models.ResultFake
			case confidence < 0.3:
				result = models.ResultReal
			default:
				result = models.ResultUncertain
			}
		}

		return Outcome{
			Result:     result,
			Confidence: confidence,
			Seconds:    time.Since(start).Seconds(),
		}, nil
	}
}
