package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/repository"
	"github.com/folgercn/ai-bookkeeper/internal/services/llmclient"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Input types accepted by Extract.
const (
	InputText  = "text"
	InputImage = "image"
)

// RawInput is the tagged union a client submits: free text or a base64 image.
type RawInput struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Gateway turns raw input into ordered candidate payloads via the external
// extraction engine.
type Gateway struct {
	client     llmclient.Client
	categories *repository.CategoryRepository
	timeout    time.Duration
	log        zerolog.Logger
}

func NewGateway(client llmclient.Client, categories *repository.CategoryRepository, timeout time.Duration, log zerolog.Logger) *Gateway {
	return &Gateway{
		client:     client,
		categories: categories,
		timeout:    timeout,
		log:        log,
	}
}

// Extract sends the input to the model and returns the candidate payloads in
// the order the model produced them. Engine unreachability or garbled output
// surfaces as ErrExtractionFailed; the caller may simply retry.
func (g *Gateway) Extract(ctx context.Context, ownerID string, in RawInput) ([]models.EntryPayload, error) {
	if in.Content == "" {
		return nil, fmt.Errorf("%w: empty content", apperr.ErrInvalidInput)
	}

	categories, err := g.categories.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	prompt := buildExtractionPrompt(categories, time.Now())

	var parts []*genai.Part
	switch in.Type {
	case InputText:
		parts = []*genai.Part{
			{Text: prompt},
			{Text: in.Content},
		}
	case InputImage:
		raw, err := base64.StdEncoding.DecodeString(in.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 image", apperr.ErrInvalidInput)
		}
		parts = []*genai.Part{
			{Text: prompt},
			{Text: "Parse every expense entry visible in this receipt image."},
			{
				InlineData: &genai.Blob{
					MIMEType: http.DetectContentType(raw),
					Data:     raw,
				},
			},
		}
	default:
		return nil, fmt.Errorf("%w: unknown input type %q", apperr.ErrInvalidInput, in.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	rawText, err := g.client.Generate(ctx, parts)
	if err != nil {
		g.log.Error().Err(err).Str("owner", ownerID).Msg("extraction engine call failed")
		return nil, fmt.Errorf("%w: %v", apperr.ErrExtractionFailed, err)
	}

	candidates, err := decodeCandidates(rawText)
	if err != nil {
		g.log.Error().Err(err).Str("owner", ownerID).Msg("unparseable extraction response")
		return nil, fmt.Errorf("%w: %v", apperr.ErrExtractionFailed, err)
	}

	return sanitize(candidates, time.Now()), nil
}

// decodeCandidates parses the model response. Accepts either {"items":[...]}
// or a bare top-level array, with or without markdown fences.
func decodeCandidates(raw string) ([]models.EntryPayload, error) {
	clean := stripFences(raw)

	if strings.HasPrefix(strings.TrimSpace(clean), "[") {
		var items []models.EntryPayload
		if err := json.Unmarshal([]byte(clean), &items); err != nil {
			return nil, fmt.Errorf("unmarshal item array: %w", err)
		}
		return items, nil
	}

	var wrapper struct {
		Items []models.EntryPayload `json:"items"`
	}
	if err := json.Unmarshal([]byte(clean), &wrapper); err != nil {
		return nil, fmt.Errorf("unmarshal item object: %w", err)
	}
	return wrapper.Items, nil
}

// sanitize drops candidates the state machine cannot hold (negative amount,
// missing main category) and defaults a missing date to today.
func sanitize(items []models.EntryPayload, now time.Time) []models.EntryPayload {
	out := make([]models.EntryPayload, 0, len(items))
	for _, item := range items {
		if item.Amount < 0 || strings.TrimSpace(item.MainCategory) == "" {
			continue
		}
		if item.Date == "" {
			item.Date = now.Format("2006-01-02")
		}
		out = append(out, item)
	}
	return out
}

// stripFences removes ```json ... ``` wrappers the model sometimes adds
// despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
