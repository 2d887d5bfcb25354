package agent

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
)

const systemPrompt = "You are the assistant of a movie catalog. " +
	"Use the provided tools to look up movies before answering; do not invent catalog contents. " +
	"Answer in the language the user writes in, and keep answers short."

// Message is one turn of conversation history supplied by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service drives a tool-calling chat loop over the catalog. The caller
// is threaded through every tool so authorization stays with the
// request, not with ambient state.
type Service struct {
	client  ChatCompleter
	search  Searcher
	catalog Catalog
	model   string
	rounds  int
	logger  *zap.Logger
}

// New creates a chat agent. rounds bounds how many tool rounds one chat
// request may take.
func New(client ChatCompleter, search Searcher, catalog Catalog, model string, rounds int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if rounds <= 0 {
		rounds = 4
	}
	return &Service{
		client:  client,
		search:  search,
		catalog: catalog,
		model:   model,
		rounds:  rounds,
		logger:  log,
	}
}

// Chat answers one user message given prior history.
func (s *Service) Chat(ctx context.Context, caller domain.User, message string, history []Message) (string, error) {
	if message == "" {
		return "", fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, h := range history {
		role := h.Role
		if role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: h.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	tools := toolDefinitions()

	for round := 0; round <= s.rounds; round++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    s.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			s.logger.Debug("Agent tool call",
				zap.String("tool", call.Function.Name),
				zap.String("user_id", caller.ID))

			result, err := s.callTool(ctx, caller, call.Function.Name, call.Function.Arguments)
			if err != nil {
				return "", err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("tool budget of %d rounds exhausted without a final answer", s.rounds)
}
