package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeServer(t *testing.T, respond func(w http.ResponseWriter), gotBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/img-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if gotBody != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		respond(w)
	}))
}

func TestGenerateImageReturnsFirstInlineImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var body map[string]any
	srv := fakeServer(t, func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[`+
			`{"text":"here you go"},`+
			`{"inlineData":{"mimeType":"image/png","data":"`+base64.StdEncoding.EncodeToString(png)+`"}}]}}]}`)
	}, &body)
	defer srv.Close()

	c, err := NewClient(context.Background(), nil, Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.GenerateImage(context.Background(), ImageRequest{
		Model:       "img-model",
		Prompt:      "a cat",
		Images:      []ImageInput{{Bytes: []byte("ref"), MimeType: "image/jpeg"}},
		AspectRatio: "1:1",
		ImageSize:   "2K",
	})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(out.Bytes) != string(png) || out.MimeType != "image/png" || out.Text != "here you go" {
		t.Fatalf("unexpected generation: %+v", out)
	}

	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("contents: %v", body["contents"])
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts: expected prompt + 1 image, got %v", parts)
	}
	if first, _ := parts[0].(map[string]any); first["text"] != "a cat" {
		t.Fatalf("first part should be the prompt, got %v", parts[0])
	}
}

func TestGenerateImageWithoutImagePart(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"sorry"}]}}]}`)
	}, nil)
	defer srv.Close()

	c, err := NewClient(context.Background(), nil, Config{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.GenerateImage(context.Background(), ImageRequest{Model: "img-model", Prompt: "x"})
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if out.Text != "sorry" || len(out.Bytes) != 0 {
		t.Fatalf("expected the model text without image bytes, got %+v", out)
	}
}
