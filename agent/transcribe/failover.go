package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

var ErrNoSpeech = errors.New("no speech recognized")

// Failover tries each transcriber in order and returns the first non-empty
// utterance. The audio is buffered once so every attempt sees all of it.
type Failover struct {
	providers []contractx.Transcriber
}

func NewFailover(providers ...contractx.Transcriber) *Failover {
	f := &Failover{}
	for _, p := range providers {
		if p != nil {
			f.providers = append(f.providers, p)
		}
	}
	return f
}

func (f *Failover) Len() int {
	return len(f.providers)
}

func (f *Failover) Transcribe(ctx context.Context, audio io.Reader) (contractx.Utterance, error) {
	if len(f.providers) == 0 {
		return contractx.Utterance{}, fmt.Errorf("%w: no transcriber configured", contractx.ErrValidation)
	}
	data, err := io.ReadAll(audio)
	if err != nil {
		return contractx.Utterance{}, fmt.Errorf("read audio: %w", err)
	}

	var errs []error
	for i, p := range f.providers {
		if err := ctx.Err(); err != nil {
			return contractx.Utterance{}, err
		}
		utt, err := p.Transcribe(ctx, bytes.NewReader(data))
		if err == nil && utt.Text != "" {
			return utt, nil
		}
		if err == nil {
			err = ErrNoSpeech
		}
		log.Warn().Err(err).Int("provider", i).Msg("transcriber failed, trying next")
		errs = append(errs, err)
	}
	return contractx.Utterance{}, errors.Join(errs...)
}
