package frame

// SegmentWriter adapts an Encoder to io.Writer: every Write call queues a
// copy of its input as one segment. Nothing reaches the wire until the
// Encoder itself is encoded.
type SegmentWriter struct {
	enc *Encoder
}

func NewSegmentWriter(enc *Encoder) *SegmentWriter {
	return &SegmentWriter{enc: enc}
}

func (w *SegmentWriter) Write(p []byte) (int, error) {
	w.enc.AddRaw(p)
	return len(p), nil
}
