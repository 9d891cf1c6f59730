package june

import "testing"

type chunk struct {
	text  string
	final bool
}

type recordingSink struct {
	chunks []chunk
}

func (s *recordingSink) OnChunk(text string, final bool) {
	s.chunks = append(s.chunks, chunk{text: text, final: final})
}

func TestMarkerFilterOnChunk(t *testing.T) {
	tests := []struct {
		name       string
		bos        string
		eos        string
		text       string
		want       string
		suppressed bool
	}{
		{
			name: "clean chunk passes through unchanged",
			bos:  "<s>",
			eos:  "</s>",
			text: "hello world",
			want: "hello world",
		},
		{
			name:       "chunk equal to bos marker is suppressed",
			bos:        "<s>",
			eos:        "</s>",
			text:       "<s>",
			suppressed: true,
		},
		{
			name:       "chunk prefixed by bos marker is suppressed whole",
			bos:        "<s>",
			eos:        "</s>",
			text:       "<s>You are a helpful assistant.",
			suppressed: true,
		},
		{
			name: "trailing eos marker is stripped",
			bos:  "<s>",
			eos:  "</s>",
			text: "hello</s>",
			want: "hello",
		},
		{
			name: "eos marker in the middle is left alone",
			bos:  "<s>",
			eos:  "</s>",
			text: "he</s>llo",
			want: "he</s>llo",
		},
		{
			name: "bos marker not at the start is left alone",
			bos:  "<s>",
			eos:  "</s>",
			text: "a<s>b",
			want: "a<s>b",
		},
		{
			name: "only one trailing eos occurrence is stripped",
			bos:  "<s>",
			eos:  "</s>",
			text: "hi</s></s>",
			want: "hi</s>",
		},
		{
			name: "empty markers forward everything",
			text: "<s>hello</s>",
			want: "<s>hello</s>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			filter := NewMarkerFilter(tt.bos, tt.eos, sink)

			filter.OnChunk(tt.text, false)

			if tt.suppressed {
				if len(sink.chunks) != 0 {
					t.Fatalf("expected chunk to be suppressed, got %v", sink.chunks)
				}
				return
			}
			if len(sink.chunks) != 1 {
				t.Fatalf("expected 1 forwarded chunk, got %d", len(sink.chunks))
			}
			if sink.chunks[0].text != tt.want {
				t.Errorf("forwarded %q, want %q", sink.chunks[0].text, tt.want)
			}
		})
	}
}

func TestMarkerFilterForwardsFinalFlag(t *testing.T) {
	sink := &recordingSink{}
	filter := NewMarkerFilter("<s>", "</s>", sink)

	filter.OnChunk("done</s>", true)

	if len(sink.chunks) != 1 {
		t.Fatalf("expected 1 forwarded chunk, got %d", len(sink.chunks))
	}
	if !sink.chunks[0].final {
		t.Error("final flag was not forwarded")
	}
	if sink.chunks[0].text != "done" {
		t.Errorf("forwarded %q, want %q", sink.chunks[0].text, "done")
	}
}

func TestMarkerFilterSuppressedFinalChunk(t *testing.T) {
	sink := &recordingSink{}
	filter := NewMarkerFilter("<s>", "</s>", sink)

	// A suppressed chunk forwards nothing, even when it ends the stream.
	filter.OnChunk("<s>prompt echo", true)

	if len(sink.chunks) != 0 {
		t.Fatalf("expected no forwarded chunks, got %v", sink.chunks)
	}
}
