package deps

import (
	"time"

	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/media"
)

// Emitter receives job events
type Emitter interface {
	Status(message string)
	Log(message string)
	Progress(done, total int64, message string)
}

// Recorder collects job metrics
type Recorder interface {
	ItemSaved(kind media.Kind, bytes int64)
	ItemSkipped(kind media.Kind)
	ItemFailed(kind media.Kind)
	JobFinished(state entities.State, duration time.Duration)
}
