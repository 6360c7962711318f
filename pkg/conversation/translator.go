package conversation

import (
	"go.uber.org/zap"

	"github.com/papercomputeco/stackchat/pkg/llm"
	"github.com/papercomputeco/stackchat/pkg/media"
)

// Translator converts a chat history into wire messages.
type Translator struct {
	resolver media.Resolver
	logger   *zap.Logger
}

// NewTranslator creates a Translator that resolves image references with resolver.
func NewTranslator(resolver media.Resolver, logger *zap.Logger) *Translator {
	if resolver == nil {
		resolver = media.FileResolver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{resolver: resolver, logger: logger}
}

// ForChat builds the message list for a plain chat completion: one system
// message carrying instruction, then one user or completion message per turn.
// Content is always plain text.
func (t *Translator) ForChat(history []Turn, instruction string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.SystemMessage(instruction))

	for _, turn := range history {
		if turn.IsSent {
			messages = append(messages, llm.UserMessage(turn.Text))
		} else {
			messages = append(messages, llm.CompletionMessage(turn.Text))
		}
	}

	t.logger.Debug("conversation history length", zap.Int("message_count", len(messages)))
	return messages
}

// ForAgent builds the message list for an agent turn. The agent carries its
// own instructions, so no system message is emitted. A sent image is held
// until the next sent text turn, which is emitted first and followed by the
// image. Received turns become tool responses.
func (t *Translator) ForAgent(history []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	var state imageState

	for i, turn := range history {
		if !turn.IsSent {
			messages = append(messages, llm.ToolResponseMessage("", "", turn.Text))
			continue
		}

		switch {
		case turn.Type == TypeImage && !state.pending():
			uri, err := media.ResolveDataURL(t.resolver, turn.ImagePath)
			if err != nil {
				t.logger.Warn("dropping image turn",
					zap.Int("turn", i),
					zap.String("image_path", turn.ImagePath),
					zap.Error(err),
				)
				continue
			}
			state = state.hold(uri)

		case turn.Type == TypeText && state.pending():
			var uri string
			state, uri = state.release()
			messages = append(messages,
				llm.UserMessage(turn.Text),
				llm.UserImageMessage(uri),
			)

		default:
			// Text without a pending image, or a second image while one is
			// still waiting for its prompt.
			messages = append(messages, llm.UserMessage(turn.Text))
		}
	}

	if state.pending() {
		t.logger.Warn("dropping image not followed by a text prompt")
	}

	t.logger.Debug("conversation history length", zap.Int("message_count", len(messages)))
	return messages
}
