package agent

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cinedex/cinedex/internal/domain"
	movieuc "github.com/cinedex/cinedex/internal/usecase/movie"
)

// Tool names exposed to the model.
const (
	toolSemanticSearch = "semantic_search_movies"
	toolFilterSearch   = "search_movies_by_filter"
	toolMovieDetails   = "get_movie_details"
	toolAddMovie       = "add_movie"
)

const defaultToolLimit = 5

func toolDefinitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolSemanticSearch,
				Description: "Search movies by meaning of a natural-language request, e.g. 'melancholic prison escape stories'.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"query": {"type": "string", "description": "The natural-language search request."},
						"limit": {"type": "integer", "description": "Maximum number of results, default 5."}
					},
					"required": ["query"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolFilterSearch,
				Description: "Search movies by exact criteria: title, director, genre, or release year.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"title": {"type": "string"},
						"director": {"type": "string"},
						"genre": {"type": "string"},
						"year": {"type": "integer"},
						"limit": {"type": "integer", "description": "Maximum number of results, default 5."}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolMovieDetails,
				Description: "Fetch full details for a movie whose id is already known.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"movie_id": {"type": "string"}
					},
					"required": ["movie_id"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolAddMovie,
				Description: "Add a new movie to the catalog. Only administrators may do this.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"title": {"type": "string"},
						"year": {"type": "integer"},
						"director": {"type": "string"},
						"genre": {"type": "array", "items": {"type": "string"}},
						"description": {"type": "string"},
						"cast": {"type": "array", "items": {"type": "string"}},
						"poster_url": {"type": "string"}
					},
					"required": ["title", "year", "director", "genre"]
				}`),
			},
		},
	}
}

// callTool dispatches one tool call. Failures come back as text for the
// model to relay, not as errors; only the arguments failing to decode
// aborts the round.
func (s *Service) callTool(ctx context.Context, caller domain.User, name, args string) (string, error) {
	switch name {
	case toolSemanticSearch:
		return s.toolSemanticSearch(ctx, args)
	case toolFilterSearch:
		return s.toolFilterSearch(ctx, args)
	case toolMovieDetails:
		return s.toolMovieDetails(ctx, args)
	case toolAddMovie:
		return s.toolAddMovie(ctx, caller, args)
	default:
		return fmt.Sprintf("Unknown tool %q.", name), nil
	}
}

func (s *Service) toolSemanticSearch(ctx context.Context, args string) (string, error) {
	var in struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("decode %s arguments: %w", toolSemanticSearch, err)
	}
	if in.Limit <= 0 {
		in.Limit = defaultToolLimit
	}

	results, err := s.search.Search(ctx, in.Query, in.Limit)
	if err != nil {
		return fmt.Sprintf("Search failed: %v.", err), nil
	}
	if len(results) == 0 {
		return "No movies in the catalog are close to that request.", nil
	}
	return marshalToolResult(results)
}

func (s *Service) toolFilterSearch(ctx context.Context, args string) (string, error) {
	var in struct {
		Title    string `json:"title"`
		Director string `json:"director"`
		Genre    string `json:"genre"`
		Year     int    `json:"year"`
		Limit    int    `json:"limit"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("decode %s arguments: %w", toolFilterSearch, err)
	}
	if in.Limit <= 0 {
		in.Limit = defaultToolLimit
	}

	movies, err := s.catalog.List(ctx, domain.MovieFilter{
		Title:    in.Title,
		Director: in.Director,
		Genre:    in.Genre,
		Year:     in.Year,
	}, in.Limit)
	if err != nil {
		return fmt.Sprintf("Filtered search failed: %v.", err), nil
	}
	if len(movies) == 0 {
		return "No movies match those criteria.", nil
	}
	return marshalToolResult(movies)
}

func (s *Service) toolMovieDetails(ctx context.Context, args string) (string, error) {
	var in struct {
		MovieID string `json:"movie_id"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("decode %s arguments: %w", toolMovieDetails, err)
	}

	m, err := s.catalog.Get(ctx, in.MovieID)
	if err != nil {
		return fmt.Sprintf("Movie lookup failed: %v.", err), nil
	}
	return marshalToolResult(m)
}

func (s *Service) toolAddMovie(ctx context.Context, caller domain.User, args string) (string, error) {
	if !caller.IsAdmin() {
		return fmt.Sprintf("You are not allowed to add movies. Your role is %q; only administrators may.", caller.Role), nil
	}

	var in movieuc.Input
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("decode %s arguments: %w", toolAddMovie, err)
	}

	m, err := s.catalog.Create(ctx, caller, in)
	if err != nil {
		return fmt.Sprintf("Adding the movie failed: %v.", err), nil
	}
	return fmt.Sprintf("%q was added to the catalog with id %s.", m.Title, m.ID), nil
}

func marshalToolResult(v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(payload), nil
}
