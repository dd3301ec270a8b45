package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"smartscribe/internal/apperr"
)

const (
	defaultSummaryModelName = "gemini-1.5-flash-latest"

	textSystemInstruction = "You are an expert content processor. Analyze the user's input. " +
		"If the input appears to be a document, article, or notes, your task is to provide a concise summary. " +
		"If the input appears to be a prompt, a command, or a question (e.g., \"write a poem about...\", " +
		"\"draft a speech on...\", \"what is...?\"), your task is to generate the requested content. " +
		"Provide only the resulting summary or generated content, without any extra commentary or conversational filler."

	fileSystemInstruction = "You are an expert summarizer of documents. " +
		"You will extract the text from the image or PDF provided, and then summarize it. " +
		"Provide only the summary, without any extra commentary."
)

// Summarizer turns raw text or an uploaded file into summary text. Calls are
// single-shot and synchronous; callers decide whether and when to retry.
type Summarizer interface {
	SummarizeText(ctx context.Context, text string) (string, error)
	SummarizeFile(ctx context.Context, fileDataURI string) (string, error)
}

// GeminiSummarizer implements Summarizer against the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

func NewGeminiSummarizer(ctx context.Context, apiKey string, log zerolog.Logger) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiSummarizer{
		client: client,
		model:  defaultSummaryModelName,
		log:    log,
	}, nil
}

func (s *GeminiSummarizer) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Error().Err(err).Msg("error closing GenAI client")
		}
	}
}

// SummarizeText condenses content or fulfills an instruction; either way the
// result is treated as an opaque summary string.
func (s *GeminiSummarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("text", "is required")
	}

	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(textSystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("%w: gemini request: %v", apperr.ErrSummarization, err)
	}
	return s.extractText(resp)
}

// SummarizeFile summarizes the text content of an embedded image or PDF.
func (s *GeminiSummarizer) SummarizeFile(ctx context.Context, fileDataURI string) (string, error) {
	mimeType, data, err := parseDataURI(fileDataURI)
	if err != nil {
		return "", err
	}

	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fileSystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: data},
		genai.Text("Extract the text from this file and summarize it."),
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini request: %v", apperr.ErrSummarization, err)
	}
	return s.extractText(resp)
}

func (s *GeminiSummarizer) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", apperr.ErrSummarization)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		} else {
			s.log.Debug().Str("part", fmt.Sprintf("%T", part)).Msg("gemini response part was not text")
		}
	}

	summary := strings.TrimSpace(out.String())
	if summary == "" {
		return "", fmt.Errorf("%w: model returned no text", apperr.ErrSummarization)
	}
	return summary, nil
}
