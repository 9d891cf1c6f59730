// Package june implements the conversational core: per-context message
// histories, the generation engine that drives one turn per call, and the
// marker filter that cleans the raw token stream before it reaches the
// caller. The model itself sits behind the Backend interface; see
// internal/ollama and internal/dummy for implementations.
package june

// Device identifies the compute backend the model runs on.
type Device string

// Known devices. The retry policy only applies on CUDA.
const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// Markers describes the tokenizer sentinels of the model behind a backend.
type Markers struct {
	BOS        string // beginning-of-sequence marker text
	EOS        string // end-of-sequence marker text
	EOSTokenID int    // end-of-sequence token id, doubles as the pad id
}

// Sink receives finalized text fragments as the backend produces them.
// The backend invokes OnChunk synchronously during Generate; final marks
// the last fragment of the stream.
type Sink interface {
	OnChunk(text string, final bool)
}

// GenerateOptions is the per-call generation configuration handed to the
// backend. Sampling carries model-specific parameters (temperature, top_p,
// ...) that the engine passes through opaquely.
type GenerateOptions struct {
	PadTokenID int
	EOSTokenID int
	Sink       Sink
	Sampling   map[string]any
}

// RawResult is a backend completion: either a bare completion string or the
// full updated conversation. The engine resolves the variant with a type
// switch; backends never return any other implementation.
type RawResult interface {
	rawResult()
}

// BareText is a completion returned as a plain string.
type BareText string

// Conversation is a completion returned as the full updated message list,
// prompt included; the last message is the assistant reply.
type Conversation []Message

func (BareText) rawResult()     {}
func (Conversation) rawResult() {}

// Backend is the generation capability the engine consumes.
type Backend interface {
	// Generate runs one blocking generation pass over the history, pushing
	// finalized text fragments into opts.Sink as they become available.
	Generate(history []Message, opts GenerateOptions) (RawResult, error)

	// Markers reports the tokenizer sentinels of the loaded model.
	Markers() Markers

	// Device reports the active compute device.
	Device() Device

	// DisableOptimizedAttentionKernels turns off the memory-efficient and
	// flash attention paths. One-way and process-wide; invoked by the
	// engine only on the kernel-incompatibility retry path.
	DisableOptimizedAttentionKernels()
}
