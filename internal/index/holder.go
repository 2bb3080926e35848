package index

import (
	"sync"

	"github.com/hyperjump/sakuin/internal/models"
)

// Holder publishes the current corpus model to concurrent readers. Models are
// immutable once published, so readers only hold the lock for the pointer
// load and queries never block each other or a concurrent swap for long.
type Holder struct {
	mu    sync.RWMutex
	model *models.CorpusModel
}

// NewHolder returns a holder publishing model, which may be nil until the
// first refresh completes.
func NewHolder(model *models.CorpusModel) *Holder {
	return &Holder{model: model}
}

// Current returns the most recently published model, or nil.
func (h *Holder) Current() *models.CorpusModel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model
}

// Replace publishes model. In-flight readers keep the model they already
// loaded; new readers observe the replacement.
func (h *Holder) Replace(model *models.CorpusModel) {
	h.mu.Lock()
	h.model = model
	h.mu.Unlock()
}
