package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	config "github.com/jhshakil/kocialpilot/configs"
	"github.com/jhshakil/kocialpilot/internal/models"
)

const contentSystemPrompt = `You are a social media content creator. Generate engaging social media posts with relevant hashtags. Return your response in JSON format with "caption" and "hashtags" fields. The hashtags should be an array of strings without the # symbol.`

const imagePromptPrefix = "Create a professional, modern social media image: "

var hashtagPattern = regexp.MustCompile(`#\w+`)

var defaultHashtags = []string{"socialmedia", "content", "ai"}

type AIService interface {
	GenerateContent(ctx context.Context, prompt string) (*models.GeneratedContent, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type aiService struct {
	cfg     config.Config
	client  *http.Client
	groqURL string
	falURL  string
}

func NewAIService(cfg config.Config) AIService {
	return &aiService{
		cfg:     cfg,
		client:  http.DefaultClient,
		groqURL: "https://api.groq.com/openai/v1/chat/completions",
		falURL:  "https://fal.run/fal-ai/flux/schnell",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *aiService) GenerateContent(ctx context.Context, prompt string) (*models.GeneratedContent, error) {
	if s.cfg.GroqAPIKey == "" {
		err := errors.New("GROQ_API_KEY not configured")
		slog.Info(err.Error())
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt is empty")
	}

	reqBody := chatRequest{
		Model: s.cfg.GroqModel,
		Messages: []chatMessage{
			{Role: "system", Content: contentSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}

	var resp chatResponse
	if err := s.postJSON(ctx, s.groqURL, "Bearer "+s.cfg.GroqAPIKey, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion returned")
	}

	return parseGeneratedContent(resp.Choices[0].Message.Content), nil
}

// parseGeneratedContent tolerates the model answering in free text instead of
// the requested JSON: the first line becomes the caption and hashtag-pattern
// tokens are pulled from the body, with placeholder tags when none appear.
func parseGeneratedContent(content string) *models.GeneratedContent {
	var generated models.GeneratedContent
	if err := json.Unmarshal([]byte(content), &generated); err == nil && generated.Caption != "" {
		return &generated
	}

	caption := content
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			caption = trimmed
			break
		}
	}

	var hashtags []string
	for _, tag := range hashtagPattern.FindAllString(content, -1) {
		hashtags = append(hashtags, strings.TrimPrefix(tag, "#"))
	}
	if len(hashtags) == 0 {
		hashtags = append(hashtags, defaultHashtags...)
	}

	return &models.GeneratedContent{Caption: caption, Hashtags: hashtags}
}

type imageRequest struct {
	Prompt            string `json:"prompt"`
	ImageSize         string `json:"image_size"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	NumImages         int    `json:"num_images"`
}

type imageResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (s *aiService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if s.cfg.FalKey == "" {
		err := errors.New("FAL_KEY not configured")
		slog.Info(err.Error())
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	reqBody := imageRequest{
		Prompt:            imagePromptPrefix + prompt,
		ImageSize:         "square_hd",
		NumInferenceSteps: 4,
		NumImages:         1,
	}

	var resp imageResponse
	if err := s.postJSON(ctx, s.falURL, "Key "+s.cfg.FalKey, reqBody, &resp); err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Images) == 0 || resp.Images[0].URL == "" {
		return "", errors.New("no image URL in response")
	}

	return resp.Images[0].URL, nil
}

func (s *aiService) postJSON(ctx context.Context, reqURL, authorization string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
