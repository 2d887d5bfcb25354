package agent

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cinedex/cinedex/internal/domain"
	movieuc "github.com/cinedex/cinedex/internal/usecase/movie"
)

// Searcher answers natural-language queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.ScoredMovie, error)
}

// Catalog exposes the catalog operations the agent's tools need.
type Catalog interface {
	Get(ctx context.Context, id string) (domain.MovieView, error)
	List(ctx context.Context, f domain.MovieFilter, limit int) ([]domain.MovieView, error)
	Create(ctx context.Context, caller domain.User, in movieuc.Input) (domain.MovieView, error)
}

// ChatCompleter is the slice of the OpenAI client the agent uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}
