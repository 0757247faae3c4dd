package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

const requestTimeout = 30 * time.Second

// Translator translates a phrase of the course language to English
type Translator interface {
	Translate(ctx context.Context, phrase string) (string, error)
	Name() string
}

// Config selects and configures a translation provider
type Config struct {
	Provider       string // "openai" or "gemini"
	APIKey         string
	Model          string // Provider model, empty for the default
	SourceLanguage string // Language of the phrases, e.g. "polish"
	BaseURL        string // API endpoint override, mainly for tests
}

// NewTranslator creates the provider named in the config
func NewTranslator(ctx context.Context, config *Config) (Translator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key not found", config.Provider)
	}

	switch config.Provider {
	case "openai":
		return NewOpenAITranslator(config), nil
	case "gemini":
		return NewGeminiTranslator(ctx, config)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

func prompt(language, phrase string) string {
	if language == "" {
		language = "foreign"
	}
	return fmt.Sprintf("Translate the %s phrase '%s' to English. Respond with only the English translation, nothing else.",
		language, phrase)
}

// OpenAITranslator translates with the OpenAI chat completion API
type OpenAITranslator struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAITranslator creates an OpenAI backed translator
func NewOpenAITranslator(config *Config) *OpenAITranslator {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		language: config.SourceLanguage,
	}
}

// Translate asks the model for a translation of phrase
func (t *OpenAITranslator) Translate(ctx context.Context, phrase string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(t.language, phrase),
			},
		},
		MaxTokens:   50,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (t *OpenAITranslator) Name() string {
	return "openai"
}

// GeminiTranslator translates with the Gemini API
type GeminiTranslator struct {
	client   *genai.Client
	model    string
	language string
}

// NewGeminiTranslator creates a Gemini backed translator
func NewGeminiTranslator(ctx context.Context, config *Config) (*GeminiTranslator, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiTranslator{
		client:   client,
		model:    model,
		language: config.SourceLanguage,
	}, nil
}

// Translate asks the model for a translation of phrase
func (t *GeminiTranslator) Translate(ctx context.Context, phrase string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt(t.language, phrase)), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: 50,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return text, nil
}

// Name returns the provider name
func (t *GeminiTranslator) Name() string {
	return "gemini"
}

// TranslationCache stores translations keyed by phrase. It can be saved as
// JSON so later runs reuse earlier answers instead of asking the provider again.
type TranslationCache struct {
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// LoadTranslationCache reads a cache saved with Save. A missing file yields
// an empty cache.
func LoadTranslationCache(path string) (*TranslationCache, error) {
	tc := NewTranslationCache()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return tc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read translation cache: %w", err)
	}

	if err := json.Unmarshal(data, &tc.translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation cache %s: %w", path, err)
	}
	if tc.translations == nil {
		tc.translations = make(map[string]string)
	}
	return tc, nil
}

// Save writes the cache as JSON
func (tc *TranslationCache) Save(path string) error {
	data, err := json.MarshalIndent(tc.translations, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write translation cache: %w", err)
	}
	return nil
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(phrase, translation string) {
	tc.translations[phrase] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(phrase string) (string, bool) {
	translation, ok := tc.translations[phrase]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	return len(tc.translations)
}

// GetAll returns a copy of all cached translations
func (tc *TranslationCache) GetAll() map[string]string {
	result := make(map[string]string)
	for k, v := range tc.translations {
		result[k] = v
	}
	return result
}
