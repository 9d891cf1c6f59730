package june

import (
	"strings"
	"sync"
)

// memEfficientKernelSignature appears in CUDA fault text when the
// memory-efficient attention kernel rejects the loaded model.
const memEfficientKernelSignature = "cutlassF"

// EngineConfig holds the construction parameters for an Engine.
type EngineConfig struct {
	// SystemPrompt seeds every new context as its first message. Empty
	// means no system message.
	SystemPrompt string
	// Sampling carries default model-specific generation parameters,
	// passed through to the backend on every call. Per-call overrides
	// take precedence key by key.
	Sampling map[string]any
	// Sink receives the filtered live output stream. Nil disables
	// streaming; the backend still returns the full completion.
	Sink Sink
	// Store configures context eviction.
	Store StoreOptions
}

// Engine coordinates one generation turn per call: it resolves or creates
// the context, appends the user message, invokes the backend with the
// marker filter wired as the output sink, retries once on a known
// kernel-incompatibility fault, and appends the assistant reply.
type Engine struct {
	backend  Backend
	store    *ContextStore
	sink     Sink
	sampling map[string]any

	mu    sync.Mutex
	turns map[string]*sync.Mutex
}

// NewEngine creates an engine over the given backend.
func NewEngine(backend Backend, cfg EngineConfig) *Engine {
	return &Engine{
		backend:  backend,
		store:    NewContextStore(cfg.SystemPrompt, cfg.Store),
		sink:     cfg.Sink,
		sampling: cfg.Sampling,
		turns:    make(map[string]*sync.Mutex),
	}
}

// Generate runs one conversation turn. An empty contextID starts a new
// conversation and the returned completion carries the minted id; a known
// id resumes its history; an unknown id is silently initialized and the
// completion carries no id.
func (e *Engine) Generate(message, contextID string) (Completion, error) {
	return e.GenerateWithOptions(message, contextID, nil)
}

// GenerateWithOptions is Generate with per-call sampling overrides, merged
// over the engine defaults.
func (e *Engine) GenerateWithOptions(message, contextID string, sampling map[string]any) (Completion, error) {
	id, minted, _ := e.store.Resolve(contextID)

	unlock := e.lockTurn(id)
	defer unlock()

	// Re-check under the turn lock: a concurrent first turn on the same id
	// may have initialized it between Resolve and here.
	if _, _, known := e.store.Resolve(id); !known {
		e.store.Initialize(id)
	}
	if err := e.store.AppendUser(id, message); err != nil {
		return Completion{}, err
	}
	history, err := e.store.History(id)
	if err != nil {
		return Completion{}, err
	}

	opts := e.generateOptions(sampling)
	result, err := e.backend.Generate(history, opts)
	if err != nil {
		if !e.retryable(err) {
			return Completion{}, err
		}
		e.backend.DisableOptimizedAttentionKernels()
		result, err = e.backend.Generate(history, opts)
		if err != nil {
			return Completion{}, err
		}
	}

	reply := normalize(result)
	if err := e.store.AppendAssistant(id, reply); err != nil {
		return Completion{}, err
	}

	completion := Completion{Role: RoleAssistant, Content: reply.Content}
	if minted {
		completion.ContextID = id
	}
	return completion, nil
}

// History returns the stored message sequence for a context id.
func (e *Engine) History(contextID string) ([]Message, error) {
	return e.store.History(contextID)
}

// Contexts returns the ids of all live contexts.
func (e *Engine) Contexts() []string {
	return e.store.IDs()
}

// retryable reports whether a backend fault is the known transient class:
// the memory-efficient attention kernel signature on a CUDA device. Every
// other fault, including a repeat after the retry, propagates unmodified.
func (e *Engine) retryable(err error) bool {
	return strings.Contains(err.Error(), memEfficientKernelSignature) &&
		e.backend.Device() == DeviceCUDA
}

// generateOptions builds the per-call backend configuration: stop/pad token
// ids from the backend's markers, the marker filter wrapping the engine
// sink, and the merged sampling parameters.
func (e *Engine) generateOptions(overrides map[string]any) GenerateOptions {
	markers := e.backend.Markers()

	sampling := make(map[string]any, len(e.sampling)+len(overrides))
	for k, v := range e.sampling {
		sampling[k] = v
	}
	for k, v := range overrides {
		sampling[k] = v
	}

	var sink Sink
	if e.sink != nil {
		sink = NewMarkerFilter(markers.BOS, markers.EOS, e.sink)
	}

	return GenerateOptions{
		PadTokenID: markers.EOSTokenID,
		EOSTokenID: markers.EOSTokenID,
		Sink:       sink,
		Sampling:   sampling,
	}
}

// normalize collapses the backend's result variants into a single assistant
// message: the last message of a full conversation, or the bare string
// wrapped in the assistant role.
func normalize(result RawResult) Message {
	switch r := result.(type) {
	case Conversation:
		if len(r) == 0 {
			return Message{Role: RoleAssistant}
		}
		return r[len(r)-1]
	case BareText:
		return Message{Role: RoleAssistant, Content: string(r)}
	default:
		return Message{Role: RoleAssistant}
	}
}

// lockTurn serializes turns per context id so concurrent calls against the
// same conversation cannot interleave appends. Turns on distinct ids
// proceed in parallel.
func (e *Engine) lockTurn(id string) func() {
	e.mu.Lock()
	turn, ok := e.turns[id]
	if !ok {
		turn = &sync.Mutex{}
		e.turns[id] = turn
	}
	e.mu.Unlock()

	turn.Lock()
	return turn.Unlock
}
