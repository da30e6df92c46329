package provider

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelGenerator adapts an eino chat model to the Generator contract.
type ChatModelGenerator struct {
	chatModel model.ChatModel
}

// NewChatModelGenerator wraps an already-constructed chat model.
func NewChatModelGenerator(chatModel model.ChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{chatModel: chatModel}
}

// Generate runs one blocking completion. When the request carries image
// data the user turn is sent as a multimodal message.
func (g *ChatModelGenerator) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}

	if req.ImageData != "" {
		messages = append(messages, &schema.Message{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: req.User},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL: "data:image/jpeg;base64," + req.ImageData,
					},
				},
			},
		})
	} else {
		messages = append(messages, schema.UserMessage(req.User))
	}

	var opts []model.Option
	if req.Options.Model != "" {
		opts = append(opts, model.WithModel(req.Options.Model))
	}
	if req.Options.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Options.Temperature))
	}
	if req.Options.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.Options.MaxTokens))
	}

	out, err := g.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", &Error{Reason: "chat model generate failed", Err: err}
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", &Error{Reason: "chat model returned an empty completion"}
	}
	return out.Content, nil
}
