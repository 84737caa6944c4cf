package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hyperengineering/cadence/internal/types"
)

// Compile-time interface check
var _ Generator = (*OpenAI)(nil)

// maxInsights caps how many lines we accept from the model.
const maxInsights = 3

// ChatService defines the interface for making chat completion calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI generates review insights using OpenAI chat completions.
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates an OpenAI-backed insight generator. A zero timeout
// leaves the client's default request timeout in place.
func NewOpenAI(apiKey, model string, timeout time.Duration) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := openai.NewClient(opts...)
	return &OpenAI{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
	}
}

// Insights asks the model for up to three short observations about the
// day described by the review.
func (o *OpenAI) Insights(ctx context.Context, review types.EveningReview) ([]string, error) {
	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(
				"You are a habit coach. Given an end-of-day review, reply with at most " +
					"three short, concrete observations, one per line, no numbering."),
			openai.UserMessage(buildPrompt(review)),
		}),
		Model: openai.F(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("insight generation failed: no choices returned")
	}

	return parseLines(resp.Choices[0].Message.Content), nil
}

// Name returns the chat model name.
func (o *OpenAI) Name() string {
	return string(o.model)
}

// buildPrompt serializes the review into a compact prompt.
func buildPrompt(review types.EveningReview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", review.Day)
	fmt.Fprintf(&b, "Mood: %d/10, Energy: %d/10\n", review.Mood, review.EnergyLevel)
	fmt.Fprintf(&b, "Accomplished: %s\n", joinOrNone(review.Accomplished))
	fmt.Fprintf(&b, "Missed: %s\n", joinOrNone(review.Missed))
	fmt.Fprintf(&b, "Reasons for misses: %s\n", joinOrNone(review.MissedReasons))
	if review.Insights != "" {
		fmt.Fprintf(&b, "Own reflection: %s\n", review.Insights)
	}
	return b.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "; ")
}

// parseLines splits the model output into trimmed, non-empty lines,
// capped at maxInsights.
func parseLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxInsights {
			break
		}
	}
	return out
}
