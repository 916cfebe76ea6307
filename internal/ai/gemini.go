package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash-image"

// Generator produces a try-on image from a photo of the shopper and the
// product's gallery. Implementations are expected to be slow; callers bound
// them with a context deadline.
type Generator interface {
	Generate(ctx context.Context, personImageURL string, productImageURLs []string, productName, productDescription string) ([]byte, error)
}

type GeminiGenerator struct {
	APIKey string
	Model  string
}

func NewGeminiGenerator(apiKey string) *GeminiGenerator {
	return &GeminiGenerator{APIKey: apiKey, Model: defaultModel}
}

func (g *GeminiGenerator) Generate(ctx context.Context, personImageURL string, productImageURLs []string, productName, productDescription string) ([]byte, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	name := g.Model
	if name == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)

	prompt := fmt.Sprintf(`Dress the person in the first photo in the garment shown in the
following product photos. Keep the person's face, pose and background
unchanged; only the clothing changes. Render a single photorealistic image.

Product: %s
%s`, productName, productDescription)

	personData, err := fetchImage(ctx, personImageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch person image: %w", err)
	}

	parts := []genai.Part{
		genai.Text(prompt),
		genai.ImageData("jpeg", personData),
	}
	for _, url := range productImageURLs {
		if url == "" {
			continue
		}
		data, err := fetchImage(ctx, url)
		if err != nil {
			continue
		}
		parts = append(parts, genai.ImageData("jpeg", data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			return blob.Data, nil
		}
	}
	return nil, fmt.Errorf("model returned no image")
}

func fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
