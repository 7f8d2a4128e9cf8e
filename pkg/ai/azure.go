package ai

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzOpenAI is a Client backed by an Azure OpenAI deployment.
type AzOpenAI struct {
	client       *azopenai.Client
	deploymentID string
}

// NewAzOpenAI builds a client against an Azure OpenAI endpoint with a key
// credential.
func NewAzOpenAI(endpoint, apiKey, deploymentID string) (*AzOpenAI, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure OpenAI client: %w", err)
	}
	return &AzOpenAI{client: client, deploymentID: deploymentID}, nil
}

// Chat sends a single-turn user prompt and returns the assistant text.
func (c *AzOpenAI) Chat(ctx context.Context, prompt string, opts *ChatOptions) (string, error) {
	chatOpts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(c.deploymentID),
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(prompt),
			},
		},
	}
	if opts != nil {
		if opts.MaxTokens > 0 {
			chatOpts.MaxTokens = to.Ptr(opts.MaxTokens)
		}
		chatOpts.Temperature = to.Ptr(opts.Temperature)
	}

	resp, err := c.client.GetChatCompletions(ctx, chatOpts, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no completion received from LLM")
}
