package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_OpenAI(t *testing.T) {
	m, err := NewFactory().CreateChatModel(context.Background(), &ProviderConfig{
		Kind:      ProviderOpenAI,
		APIKey:    "k",
		Model:     "gpt-4o-mini",
		BaseURL:   "http://127.0.0.1:1/v1",
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestFactory_Errors(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	_, err := f.CreateChatModel(ctx, nil)
	assert.Error(t, err)

	_, err = f.CreateChatModel(ctx, &ProviderConfig{Kind: ProviderOpenAI})
	assert.Error(t, err)

	_, err = f.CreateChatModel(ctx, &ProviderConfig{Kind: "bedrock", Model: "m"})
	assert.Error(t, err)
}
