package june

import "strings"

// MarkerFilter strips tokenizer sentinels from the raw generation stream
// before fragments reach the downstream sink. Backends echo the constructed
// prompt as part of raw output and terminate with a sentinel token whose
// textual form must not leak to the user: a fragment that begins with the
// BOS marker is prompt echo and is dropped whole, and a trailing EOS marker
// is removed from the fragment that carries it. The filter holds no state
// beyond its construction parameters.
type MarkerFilter struct {
	bos  string
	eos  string
	next Sink
}

// NewMarkerFilter wraps next with BOS/EOS stripping for the given markers.
func NewMarkerFilter(bos, eos string, next Sink) *MarkerFilter {
	return &MarkerFilter{bos: bos, eos: eos, next: next}
}

// OnChunk implements Sink. Forwarding is one-way; a fragment already
// forwarded is never retracted.
func (f *MarkerFilter) OnChunk(text string, final bool) {
	if f.bos != "" && strings.HasPrefix(text, f.bos) {
		return
	}
	if f.eos != "" {
		text = strings.TrimSuffix(text, f.eos)
	}
	f.next.OnChunk(text, final)
}
