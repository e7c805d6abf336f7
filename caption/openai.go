package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"seeforme/caption-api/service"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// OpenAIProvider runs inference against an OpenAI-compatible vision
// endpoint. A handful of frames is sampled from the video, attached to
// a single chat completion and the answer is used as the caption.
type OpenAIProvider struct {
	cli       *openai.Client
	model     string
	maxTokens int
	frames    int
}

const captionPrompt = "These images are frames sampled from a single video, in order. " +
	"Describe what happens in the video in one or two sentences, written for a blind or " +
	"low-vision viewer. Mention visible text on screen when it matters. Reply with the " +
	"description only."

func newOpenAIProvider() *OpenAIProvider {
	cfg := openai.DefaultConfig(viper.GetString("caption.api_key"))
	if u := viper.GetString("caption.base_url"); u != "" {
		cfg.BaseURL = u
	}

	return &OpenAIProvider{
		cli:       openai.NewClientWithConfig(cfg),
		model:     viper.GetString("caption.model"),
		maxTokens: viper.GetInt("caption.max_tokens"),
		frames:    viper.GetInt("caption.frames"),
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Generate(ctx context.Context, path string) (string, error) {
	tmp, err := os.MkdirTemp("", "caption-frames-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer os.RemoveAll(tmp)

	framePaths, err := service.ExtractFrames(ctx, path, p.frames, tmp)
	if err != nil {
		return "", fmt.Errorf("%w: frame extraction failed, %v", ErrGeneration, err)
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: captionPrompt,
		},
	}

	for _, fp := range framePaths {
		b, err := os.ReadFile(fp)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGeneration, err)
		}

		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	resp, err := p.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", ErrGeneration)
	}

	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", fmt.Errorf("%w: model returned an empty caption", ErrGeneration)
	}

	zap.L().Debug("Caption generated", zap.Int("frames", len(framePaths)), zap.Int("len", len(caption)))
	return caption, nil
}
