package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" || r.Header.Get("xi-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"voices":[{"voice_id":"v1","name":"Rachel","verified_languages":[{"language":"en"}]},{"voice_id":"v2","name":"Amelie","verified_languages":[{"language":"fr","locale":"fr-FR"}]}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/"})
	voices, err := client.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 || voices[1].VoiceID != "v2" || voices[1].VerifiedLanguages[0].Language != "fr" {
		t.Fatalf("unexpected voices: %+v", voices)
	}
}

func TestTextToSpeech(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/text-to-speech/v2" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if format := r.URL.Query().Get("output_format"); format != "mp3_22050_32" {
			t.Errorf("unexpected output_format %q", format)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL}).TextToSpeech(context.Background(), "v2", "Bonjour", &buf)
	if err != nil {
		t.Fatalf("TextToSpeech: %v", err)
	}
	if n != 8 || buf.String() != "ID3audio" {
		t.Fatalf("unexpected audio %q (%d bytes)", buf.String(), n)
	}
	if got.Text != "Bonjour" || got.ModelID != "eleven_multilingual_v2" {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"quota"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).ListVoices(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected StatusError, got %v", err)
	}

	if _, err := NewClient(Config{BaseURL: srv.URL}).ListVoices(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
