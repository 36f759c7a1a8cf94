package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	openrouterx "github.com/tanpawarit/restaurant-voice-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	GreeterModel           string  `envconfig:"GREETER_MODEL" split_words:"true"`
	ReservationModel       string  `envconfig:"RESERVATION_MODEL" split_words:"true"`
	TakeawayModel          string  `envconfig:"TAKEAWAY_MODEL" split_words:"true"`
	CheckoutModel          string  `envconfig:"CHECKOUT_MODEL" split_words:"true"`
	GreeterTemperature     float32 `envconfig:"GREETER_TEMPERATURE" split_words:"true" default:"-1"`
	ReservationTemperature float32 `envconfig:"RESERVATION_TEMPERATURE" split_words:"true" default:"-1"`
	TakeawayTemperature    float32 `envconfig:"TAKEAWAY_TEMPERATURE" split_words:"true" default:"-1"`
	CheckoutTemperature    float32 `envconfig:"CHECKOUT_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for one role. Empty model names
// and negative temperatures fall back to the defaults.
func (c Config) OpenRouterFor(role contractx.RoleName) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(model string, t float32) {
		if v := strings.TrimSpace(model); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}
	switch role {
	case contractx.RoleGreeter:
		override(c.GreeterModel, c.GreeterTemperature)
	case contractx.RoleReservation:
		override(c.ReservationModel, c.ReservationTemperature)
	case contractx.RoleTakeaway:
		override(c.TakeawayModel, c.TakeawayTemperature)
	case contractx.RoleCheckout:
		override(c.CheckoutModel, c.CheckoutTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

// NewModels builds one chat model per role. Roles with identical settings
// share a model.
func NewModels(ctx context.Context, cfg Config) (map[contractx.RoleName]einomodel.ToolCallingChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	type key struct {
		model string
		temp  float32
	}
	built := make(map[key]einomodel.ToolCallingChatModel, len(contractx.Roles))
	out := make(map[contractx.RoleName]einomodel.ToolCallingChatModel, len(contractx.Roles))
	for _, role := range contractx.Roles {
		roleCfg := cfg.OpenRouterFor(role)
		k := key{model: roleCfg.Model, temp: roleCfg.Temperature}
		if m, ok := built[k]; ok {
			out[role] = m
			continue
		}
		m, err := roleCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, role, err)
		}
		built[k] = m
		out[role] = m
	}
	return out, nil
}
