package conversation

// imageState is the pending image state machine used while translating agent
// turns. The zero value is the no-pending-image state.
//
//	noPendingImage --hold(uri)--> pendingImage(uri)
//	pendingImage   --release()--> noPendingImage
type imageState struct {
	uri string
}

func (s imageState) pending() bool {
	return s.uri != ""
}

func (s imageState) hold(uri string) imageState {
	return imageState{uri: uri}
}

func (s imageState) release() (imageState, string) {
	return imageState{}, s.uri
}
