// Package dummy implements an in-process generation backend for development
// and offline runs. It replays scripted replies, or echoes the last user
// message when the script runs out, and streams its output the way a real
// backend does: prompt echo first (BOS-marked), then reply fragments, with
// the EOS marker closing the stream.
package dummy

import (
	"strings"
	"sync"

	"github.com/thomascherickal/june/internal/june"
)

const BackendName = "dummy"

// Config defines the configuration interface for the dummy backend
type Config interface {
	GetDevice() june.Device
	GetMarkers() june.Markers
}

// Backend implements the june.Backend interface without a model.
type Backend struct {
	config Config

	mu              sync.Mutex
	script          []string
	turn            int
	kernelsDisabled int
}

// NewBackend creates a new dummy backend instance
func NewBackend(config Config) *Backend {
	return &Backend{config: config}
}

// SetScript queues canned replies, consumed one per Generate call.
func (b *Backend) SetScript(replies ...string) {
	b.mu.Lock()
	b.script = replies
	b.turn = 0
	b.mu.Unlock()
}

// Markers reports the configured tokenizer sentinels.
func (b *Backend) Markers() june.Markers {
	return b.config.GetMarkers()
}

// Device reports the configured compute device.
func (b *Backend) Device() june.Device {
	return b.config.GetDevice()
}

// DisableOptimizedAttentionKernels records the toggle for inspection.
func (b *Backend) DisableOptimizedAttentionKernels() {
	b.mu.Lock()
	b.kernelsDisabled++
	b.mu.Unlock()
}

// KernelsDisabled reports how often the disable hook was invoked.
func (b *Backend) KernelsDisabled() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kernelsDisabled
}

// Generate produces the next scripted reply and returns the full updated
// conversation, the way chat-template pipelines do.
func (b *Backend) Generate(history []june.Message, opts june.GenerateOptions) (june.RawResult, error) {
	reply := b.nextReply(history)
	markers := b.config.GetMarkers()

	if opts.Sink != nil {
		// Raw output opens with the echoed prompt, BOS-marked, which the
		// engine's filter is expected to drop.
		opts.Sink.OnChunk(markers.BOS+renderPrompt(history), false)

		words := strings.SplitAfter(reply, " ")
		for _, word := range words[:len(words)-1] {
			opts.Sink.OnChunk(word, false)
		}
		opts.Sink.OnChunk(words[len(words)-1]+markers.EOS, true)
	}

	conversation := make(june.Conversation, 0, len(history)+1)
	conversation = append(conversation, history...)
	conversation = append(conversation, june.Message{Role: june.RoleAssistant, Content: reply})
	return conversation, nil
}

func (b *Backend) nextReply(history []june.Message) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.turn < len(b.script) {
		reply := b.script[b.turn]
		b.turn++
		return reply
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == june.RoleUser {
			return "echo: " + history[i].Content
		}
	}
	return "echo:"
}

func renderPrompt(history []june.Message) string {
	var sb strings.Builder
	for i, msg := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

var _ june.Backend = (*Backend)(nil)
