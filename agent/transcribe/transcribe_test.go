package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

type fakeTranscriber struct {
	utt  contractx.Utterance
	err  error
	seen []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader) (contractx.Utterance, error) {
	data, _ := io.ReadAll(audio)
	f.seen = append(f.seen, string(data))
	return f.utt, f.err
}

func TestFailoverUsesFirstSuccess(t *testing.T) {
	t.Parallel()

	broken := &fakeTranscriber{err: errors.New("timeout")}
	silent := &fakeTranscriber{}
	good := &fakeTranscriber{utt: contractx.Utterance{Text: "xin chào", Language: "vi"}}
	unused := &fakeTranscriber{utt: contractx.Utterance{Text: "nope"}}

	f := NewFailover(broken, nil, silent, good, unused)
	if f.Len() != 4 {
		t.Fatalf("expected 4 providers, got %d", f.Len())
	}
	utt, err := f.Transcribe(context.Background(), strings.NewReader("pcm"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if utt.Text != "xin chào" || utt.Language != "vi" {
		t.Fatalf("unexpected utterance: %#v", utt)
	}
	for _, p := range []*fakeTranscriber{broken, silent, good} {
		if len(p.seen) != 1 || p.seen[0] != "pcm" {
			t.Fatalf("every attempt must see the full audio, got %#v", p.seen)
		}
	}
	if len(unused.seen) != 0 {
		t.Fatal("providers after a success must not run")
	}
}

func TestFailoverJoinsErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("quota")
	f := NewFailover(&fakeTranscriber{err: cause}, &fakeTranscriber{})
	_, err := f.Transcribe(context.Background(), strings.NewReader("pcm"))
	if !errors.Is(err, cause) || !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = NewFailover().Transcribe(context.Background(), strings.NewReader("pcm"))
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOpenAITranscribe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" Cho tôi hai tô phở ","language":"vietnamese","duration":1.2}`)
	}))
	t.Cleanup(srv.Close)

	o := NewOpenAI(Config{BaseURL: srv.URL, APIKey: "key"})
	utt, err := o.Transcribe(context.Background(), strings.NewReader("pcm"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if utt.Text != "Cho tôi hai tô phở" || utt.Language != "vi" {
		t.Fatalf("unexpected utterance: %#v", utt)
	}
}

func TestNewOpenAIWithoutKey(t *testing.T) {
	t.Parallel()

	if NewOpenAI(Config{}) != nil {
		t.Fatal("expected nil transcriber without api key")
	}
}
