package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/llm"
	"github.com/complydesk/arbiter/pkg/llm/gemini"
)

func textResponse(texts ...string) map[string]any {
	parts := make([]map[string]any, len(texts))
	for i, t := range texts {
		parts[i] = map[string]any{"text": t}
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	}
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		status   int
		response map[string]any
		lastPath string
		lastKey  string
		lastBody map[string]any
	)

	newClient := func(cfg gemini.Config) *gemini.Client {
		cfg.BaseURL = server.URL
		c, err := gemini.NewClient(cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		response = textResponse(`{"status": "COMPLIANT"}`)
		lastPath = ""
		lastKey = ""
		lastBody = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastPath = r.URL.Path
			lastKey = r.Header.Get("x-goog-api-key")
			Expect(json.NewDecoder(r.Body).Decode(&lastBody)).To(Succeed())

			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			Expect(json.NewEncoder(w).Encode(response)).To(Succeed())
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the model's text output", func() {
		client := newClient(gemini.Config{APIKey: "test-key"})

		text, err := client.Complete(ctx, "Analyze this query.")

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(`{"status": "COMPLIANT"}`))
		Expect(lastPath).To(Equal("/v1beta/models/gemini-2.5-flash:generateContent"))
		Expect(lastKey).To(Equal("test-key"))
	})

	It("concatenates multi-part candidates", func() {
		response = textResponse(`{"status": `, `"COMPLIANT"}`)
		client := newClient(gemini.Config{})

		text, err := client.Complete(ctx, "prompt")

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(`{"status": "COMPLIANT"}`))
	})

	It("sends the system instruction and generation config", func() {
		client := newClient(gemini.Config{
			SystemInstruction: "You are a compliance officer.",
			Temperature:       0.2,
			TopP:              0.9,
			MaxOutputTokens:   512,
		})

		_, err := client.Complete(ctx, "prompt")
		Expect(err).NotTo(HaveOccurred())

		system := lastBody["systemInstruction"].(map[string]any)
		parts := system["parts"].([]any)
		Expect(parts[0].(map[string]any)["text"]).To(Equal("You are a compliance officer."))

		genCfg := lastBody["generationConfig"].(map[string]any)
		Expect(genCfg["temperature"]).To(BeNumerically("~", 0.2, 1e-9))
		Expect(genCfg["topP"]).To(BeNumerically("~", 0.9, 1e-9))
		Expect(genCfg["maxOutputTokens"]).To(BeEquivalentTo(512))
	})

	It("applies default generation settings", func() {
		client := newClient(gemini.Config{})

		_, err := client.Complete(ctx, "prompt")
		Expect(err).NotTo(HaveOccurred())

		Expect(lastBody).NotTo(HaveKey("systemInstruction"))
		genCfg := lastBody["generationConfig"].(map[string]any)
		Expect(genCfg["temperature"]).To(BeNumerically("~", 0.1, 1e-9))
		Expect(genCfg["topP"]).To(BeNumerically("~", 0.8, 1e-9))
		Expect(genCfg["maxOutputTokens"]).To(BeEquivalentTo(2048))
	})

	It("rejects an empty prompt without calling the API", func() {
		client := newClient(gemini.Config{})

		_, err := client.Complete(ctx, "  ")

		Expect(err).To(MatchError(llm.ErrEmptyPrompt))
		Expect(lastPath).To(BeEmpty())
	})

	It("rejects an empty model response", func() {
		response = map[string]any{"candidates": []map[string]any{}}
		client := newClient(gemini.Config{})

		_, err := client.Complete(ctx, "prompt")

		Expect(err).To(MatchError(llm.ErrEmptyResponse))
	})

	It("surfaces API errors with the status code", func() {
		status = http.StatusTooManyRequests
		client := newClient(gemini.Config{})

		_, err := client.Complete(ctx, "prompt")

		Expect(err).To(MatchError(ContainSubstring("429")))
	})
})
