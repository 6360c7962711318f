// Package conversation holds the application-level chat history and
// translates it into wire messages for the plain chat and agent turn APIs.
package conversation

// MessageType tags what a turn carries.
type MessageType int

const (
	TypeText MessageType = iota
	TypeImage
)

// String implements fmt.Stringer.
func (t MessageType) String() string {
	switch t {
	case TypeImage:
		return "image"
	default:
		return "text"
	}
}

// ParseMessageType parses "text" or "image". Anything else is text.
func ParseMessageType(s string) MessageType {
	if s == "image" || s == "IMAGE" {
		return TypeImage
	}
	return TypeText
}

// Turn is one entry of the chat history, in conversation order.
type Turn struct {
	Text      string      // Prompt or response text
	IsSent    bool        // True for turns the user sent
	Type      MessageType // Text or image
	ImagePath string      // Image reference, image turns only
}

// SentText returns a user text turn.
func SentText(text string) Turn {
	return Turn{Text: text, IsSent: true, Type: TypeText}
}

// SentImage returns a user image turn pointing at ref.
func SentImage(ref string) Turn {
	return Turn{IsSent: true, Type: TypeImage, ImagePath: ref}
}

// Received returns a turn produced by the assistant.
func Received(text string) Turn {
	return Turn{Text: text, Type: TypeText}
}
