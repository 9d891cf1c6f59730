// Package ollama implements the generation backend against a local Ollama
// server's chat API, streaming fragments into the engine's sink as the
// server produces them.
package ollama

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/thomascherickal/june/internal/june"
)

const (
	BackendName    = "ollama"
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// Config defines the configuration interface for the Ollama backend
type Config interface {
	GetModel() string
	GetBaseURL() string
	GetDevice() june.Device
	GetMarkers() june.Markers
}

// Backend implements the june.Backend interface against an Ollama server
type Backend struct {
	config Config
	client *http.Client
	debug  bool

	kernelsDisabled atomic.Bool
}

// NewBackend creates a new Ollama backend instance
func NewBackend(config Config) *Backend {
	return &Backend{
		config: config,
		client: &http.Client{},
	}
}

// SetDebug enables or disables debug output
func (b *Backend) SetDebug(enabled bool) {
	b.debug = enabled
}

// Markers reports the tokenizer sentinels of the configured model.
func (b *Backend) Markers() june.Markers {
	return b.config.GetMarkers()
}

// Device reports the configured compute device.
func (b *Backend) Device() june.Device {
	return b.config.GetDevice()
}

// DisableOptimizedAttentionKernels takes the optimized attention paths out
// of play. The server exposes no finer kernel toggle over its options API,
// so subsequent requests route the model off the GPU entirely.
func (b *Backend) DisableOptimizedAttentionKernels() {
	b.kernelsDisabled.Store(true)
}

// chatRequest represents the request body for Ollama's chat API
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents one streamed line of Ollama's chat API response
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// Generate runs one blocking generation pass over the history. The server
// streams the reply as JSON lines; each fragment is pushed into opts.Sink
// as it arrives and the assembled completion is returned as bare text.
func (b *Backend) Generate(history []june.Message, opts june.GenerateOptions) (june.RawResult, error) {
	messages := make([]chatMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	options := make(map[string]any, len(opts.Sampling)+1)
	for k, v := range opts.Sampling {
		options[k] = v
	}
	if b.kernelsDisabled.Load() {
		options["num_gpu"] = 0
	}

	reqBody := chatRequest{
		Model:    b.config.GetModel(),
		Messages: messages,
		Stream:   true,
		Options:  options,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequest("POST", b.config.GetBaseURL()+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", strings.TrimSpace(string(body)))
	}

	var completion strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var line chatResponse
		if err := decoder.Decode(&line); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error parsing response stream: %v", err)
		}
		if line.Error != "" {
			return nil, fmt.Errorf("API error: %s", line.Error)
		}

		if line.Message.Content != "" || line.Done {
			if opts.Sink != nil {
				opts.Sink.OnChunk(line.Message.Content, line.Done)
			}
			completion.WriteString(line.Message.Content)
		}
		if line.Done {
			break
		}
	}

	return june.BareText(completion.String()), nil
}

var _ june.Backend = (*Backend)(nil)
