// Package sqlgen turns natural-language questions into standardized MSSQL
// statements using a fine-tuned model served over an OpenAI-compatible API
// (Ollama in the default deployment).
package sqlgen

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/apooravmalik/tagbot/models"
)

// Options configures the model client.
type Options struct {
	// BaseURL points at the OpenAI-compatible endpoint, e.g.
	// http://localhost:11500/v1 for a local Ollama instance.
	BaseURL string
	// APIKey is sent as the bearer token. Ollama ignores it but the client
	// requires one.
	APIKey string
	// GenModel is the fine-tuned SQL generation model.
	GenModel string
	// EmbedModel produces the schema/question embeddings.
	EmbedModel string
}

type Client struct {
	oai        openai.Client
	genModel   string
	embedModel string
}

func New(opts Options) *Client {
	var reqOpts []option.RequestOption
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}

	return &Client{
		oai:        openai.NewClient(reqOpts...),
		genModel:   opts.GenModel,
		embedModel: opts.EmbedModel,
	}
}

// Generated is one model completion: the statement as the model produced
// it (after fence extraction) and its standardized form. Both are kept so
// the audit log can show what standardization changed.
type Generated struct {
	Raw string `json:"raw"`
	SQL string `json:"sql"`
}

func finalize(content string) Generated {
	raw := ExtractSQL(content)
	return Generated{Raw: raw, SQL: Standardize(raw)}
}

func (c *Client) genParams(question string, schema models.TableSchema, focus []string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.genModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(question, schema, focus)),
		},
		Temperature: openai.Float(0),
		TopP:        openai.Float(1),
	}
}

// Generate produces an MSSQL statement answering the question against the
// given table schema. focus optionally names the columns the statement
// should concentrate on.
func (c *Client) Generate(ctx context.Context, question string, schema models.TableSchema, focus []string) (Generated, error) {
	resp, err := c.oai.Chat.Completions.New(ctx, c.genParams(question, schema, focus))
	if err != nil {
		return Generated{}, fmt.Errorf("sqlgen: completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Generated{}, fmt.Errorf("sqlgen: model returned no choices")
	}

	return finalize(resp.Choices[0].Message.Content), nil
}

// GenerateStream is Generate with progress: onDelta is called for every
// content chunk as the model produces it.
func (c *Client) GenerateStream(ctx context.Context, question string, schema models.TableSchema, focus []string, onDelta func(delta string) error) (Generated, error) {
	stream := c.oai.Chat.Completions.NewStreaming(ctx, c.genParams(question, schema, focus))
	defer stream.Close()

	var content string
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content += delta
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return Generated{}, fmt.Errorf("sqlgen: delta callback: %w", err)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return Generated{}, fmt.Errorf("sqlgen: completion stream: %w", err)
	}

	return finalize(content), nil
}

// Naturalize turns an executed result set into a plain-English answer for
// non-technical readers.
func (c *Client) Naturalize(ctx context.Context, result string) (string, error) {
	resp, err := c.oai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.genModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Convert the following SQL output into a natural language response that a non-technical person would understand: " + result),
		},
	})
	if err != nil {
		return "", fmt.Errorf("sqlgen: naturalize request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("sqlgen: model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one embedding per input text, in order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.oai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlgen: embedding request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("sqlgen: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
