package dispatch

import "strings"

// CallbackFuncs adapts plain functions to Callback. Nil fields are skipped.
type CallbackFuncs struct {
	Chunk func(chunk string)
	Stat  func(tps float32)
}

// OnStreamReceived implements Callback.
func (f CallbackFuncs) OnStreamReceived(chunk string) {
	if f.Chunk != nil {
		f.Chunk(chunk)
	}
}

// OnStatStreamReceived implements Callback.
func (f CallbackFuncs) OnStatStreamReceived(tps float32) {
	if f.Stat != nil {
		f.Stat(tps)
	}
}

// Recorder is a Callback that keeps everything it receives.
type Recorder struct {
	Chunks []string
	Stats  []float32
}

// OnStreamReceived implements Callback.
func (r *Recorder) OnStreamReceived(chunk string) {
	r.Chunks = append(r.Chunks, chunk)
}

// OnStatStreamReceived implements Callback.
func (r *Recorder) OnStatStreamReceived(tps float32) {
	r.Stats = append(r.Stats, tps)
}

// Text returns the received chunks joined together.
func (r *Recorder) Text() string {
	return strings.Join(r.Chunks, "")
}
