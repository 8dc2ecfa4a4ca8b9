package rewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
)

// Completer sends a prompt to a language model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

var ErrNoAPIKey = errors.New("OPENAI_API_KEY is not set")

// OpenAI is a [Completer] using the OpenAI Responses API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI returns a client using apiKey. An empty baseURL uses the default endpoint.
func NewOpenAI(apiKey, baseURL string, opts ...option.RequestOption) *OpenAI {
	all := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(2),
	}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &OpenAI{client: openai.NewClient(all...)}
}

// OpenAIFromEnv returns a client configured by OPENAI_API_KEY and OPENAI_BASE_URL.
func OpenAIFromEnv() (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewOpenAI(apiKey, os.Getenv("OPENAI_BASE_URL")), nil
}

func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	params := responses.ResponseNewParams{
		Model: p.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				message(responses.EasyInputMessageRoleSystem, p.System),
				message(responses.EasyInputMessageRoleUser, p.User),
			},
		},
		Temperature: param.NewOpt(p.Temperature),
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("creating response: %w", err)
	}

	var sb strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.AsMessage().Content {
			if content.Type == "output_text" {
				sb.WriteString(content.AsOutputText().Text)
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response %s has no output text", resp.ID)
	}
	return sb.String(), nil
}

func message(role responses.EasyInputMessageRole, text string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfMessage: &responses.EasyInputMessageParam{
			Role:    role,
			Type:    "message",
			Content: responses.EasyInputMessageContentUnionParam{OfString: param.NewOpt(text)},
		},
	}
}
