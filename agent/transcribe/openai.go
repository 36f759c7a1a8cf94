// Package transcribe turns caller audio into utterances.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	openrouterx "github.com/tanpawarit/restaurant-voice-agent/pkg/openrouter"
)

type Config struct {
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey   string        `envconfig:"API_KEY" split_words:"true"`
	Model    string        `envconfig:"MODEL" split_words:"true" default:"whisper-1"`
	Language string        `envconfig:"LANGUAGE" split_words:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// languageCodes maps the language names returned by verbose transcriptions.
var languageCodes = map[string]string{
	"vietnamese": "vi",
	"english":    "en",
}

type OpenAI struct {
	client   *openaisdk.Client
	model    string
	language string
}

// NewOpenAI returns nil when no API key is configured.
func NewOpenAI(cfg Config) *OpenAI {
	client := openrouterx.NewClient(openrouterx.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if client == nil {
		return nil
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAI{client: client, model: model, language: strings.TrimSpace(cfg.Language)}
}

func (o *OpenAI) Transcribe(ctx context.Context, audio io.Reader) (contractx.Utterance, error) {
	params := openaisdk.AudioTranscriptionNewParams{
		File:           openaisdk.File(audio, "audio.wav", "audio/wav"),
		Model:          openaisdk.AudioModel(o.model),
		ResponseFormat: openaisdk.AudioResponseFormatVerboseJSON,
	}
	if o.language != "" {
		params.Language = openaisdk.String(o.language)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return contractx.Utterance{}, fmt.Errorf("openai transcription: %w", err)
	}

	var verbose struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if raw := resp.RawJSON(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &verbose); err != nil {
			return contractx.Utterance{}, fmt.Errorf("decode transcription: %w", err)
		}
	}
	if verbose.Text == "" {
		verbose.Text = resp.Text
	}

	return contractx.Utterance{
		Text:     strings.TrimSpace(verbose.Text),
		Language: languageCode(verbose.Language),
	}, nil
}

func languageCode(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := languageCodes[name]; ok {
		return code
	}
	return name
}
