package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/logger"
	"github.com/folgercn/ai-bookkeeper/internal/models"
	"github.com/folgercn/ai-bookkeeper/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeClient struct {
	response string
	err      error
	parts    []*genai.Part
}

func (f *fakeClient) Generate(ctx context.Context, parts []*genai.Part) (string, error) {
	f.parts = parts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestGateway(t *testing.T, client *fakeClient) *Gateway {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}))
	return NewGateway(client, repository.NewCategoryRepository(db), 5*time.Second, logger.NewWithWriter(io.Discard))
}

func TestExtractParsesItemObject(t *testing.T) {
	client := &fakeClient{response: `{
		"items": [
			{"date": "2024-01-01", "amount": 42.5, "main_category": "Food", "remark": "lunch"},
			{"date": "2024-01-01", "amount": 100.0, "main_category": "Other", "payee": "carrier"}
		]
	}`}
	g := newTestGateway(t, client)

	items, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "lunch 42.5, phone top-up 100"})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, 42.5, items[0].Amount)
	assert.Equal(t, "Food", items[0].MainCategory)
	assert.Equal(t, "carrier", items[1].Payee)
}

func TestExtractParsesBareArrayWithFences(t *testing.T) {
	client := &fakeClient{response: "```json\n[{\"date\": \"2024-02-02\", \"amount\": 9.9, \"main_category\": \"Food\"}]\n```"}
	g := newTestGateway(t, client)

	items, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "coffee 9.9"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9.9, items[0].Amount)
}

func TestExtractDropsInvalidCandidates(t *testing.T) {
	client := &fakeClient{response: `{
		"items": [
			{"date": "2024-01-01", "amount": -5.0, "main_category": "Food"},
			{"date": "2024-01-01", "amount": 10.0, "main_category": ""},
			{"date": "2024-01-01", "amount": 10.0, "main_category": "Food"}
		]
	}`}
	g := newTestGateway(t, client)

	items, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "stuff"})
	require.NoError(t, err)
	require.Len(t, items, 1, "negative amount and empty category are dropped")
	assert.Equal(t, 10.0, items[0].Amount)
}

func TestExtractDefaultsMissingDateToToday(t *testing.T) {
	client := &fakeClient{response: `{"items": [{"amount": 5.0, "main_category": "Food"}]}`}
	g := newTestGateway(t, client)

	items, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "snack 5"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), items[0].Date)
}

func TestExtractEmptyContentIsInvalidInput(t *testing.T) {
	g := newTestGateway(t, &fakeClient{})

	_, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: ""})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestExtractUnknownTypeIsInvalidInput(t *testing.T) {
	g := newTestGateway(t, &fakeClient{})

	_, err := g.Extract(context.Background(), "alice", RawInput{Type: "audio", Content: "xxxx"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestExtractBadBase64ImageIsInvalidInput(t *testing.T) {
	g := newTestGateway(t, &fakeClient{})

	_, err := g.Extract(context.Background(), "alice", RawInput{Type: InputImage, Content: "not-base64!!"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestExtractEngineFailure(t *testing.T) {
	g := newTestGateway(t, &fakeClient{err: errors.New("timeout")})

	_, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "lunch"})
	assert.ErrorIs(t, err, apperr.ErrExtractionFailed)
}

func TestExtractGarbledResponse(t *testing.T) {
	g := newTestGateway(t, &fakeClient{response: "no expenses here, have a nice day"})

	_, err := g.Extract(context.Background(), "alice", RawInput{Type: InputText, Content: "lunch"})
	assert.ErrorIs(t, err, apperr.ErrExtractionFailed)
}

func TestExtractImageSendsInlineData(t *testing.T) {
	// 1x1 PNG header bytes, enough for content-type sniffing.
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	content := base64.StdEncoding.EncodeToString(png)
	client := &fakeClient{response: `{"items": []}`}
	g := newTestGateway(t, client)

	items, err := g.Extract(context.Background(), "alice", RawInput{Type: InputImage, Content: content})
	require.NoError(t, err)
	assert.Empty(t, items)

	var blob *genai.Blob
	for _, part := range client.parts {
		if part.InlineData != nil {
			blob = part.InlineData
		}
	}
	require.NotNil(t, blob, "image bytes must travel as inline data")
	assert.Equal(t, "image/png", blob.MIMEType)
}
