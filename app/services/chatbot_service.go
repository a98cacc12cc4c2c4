package services

import (
	"context"
	"strings"
	"time"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/httpclient"
	"github.com/diamantrouge/maison/pkg/logger"
)

const conciergePrompt = "Vous êtes le concierge de la Maison Diamant Rouge, joaillier de luxe. " +
	"Répondez avec élégance et concision, dans la langue du client. " +
	"Conseillez sur les collections (bagues, bracelets, colliers, boucles d'oreilles, montres), " +
	"les pierres, les métaux, les tailles et la prise de rendez-vous au showroom de Casablanca ou en consultation virtuelle. " +
	"N'inventez jamais de prix ni de disponibilité."

type ChatbotService struct {
	baseURL string
	apiKey  string
	model   string
}

func NewChatbotService() *ChatbotService {
	return &ChatbotService{baseURL: config.LLMBaseURL(), apiKey: config.LLMAPIKey(), model: config.LLMModel()}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

var errConcierge = &Error{Kind: ErrUpstream, Msg: "Le concierge est momentanément indisponible"}

// Ask forwards prompt to the chat completion endpoint and returns the
// trimmed reply.
func (s *ChatbotService) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", invalid("Le champ prompt est requis")
	}

	resp, err := httpclient.Post(s.baseURL+"/chat/completions").
		Bearer(s.apiKey).
		JSON(chatRequest{
			Model: s.model,
			Messages: []chatMessage{
				{Role: "system", Content: conciergePrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: 0.7,
			MaxTokens:   500,
		}).
		Timeout(30*time.Second).
		Retry(2, 500*time.Millisecond).
		Send(ctx)
	if err == nil {
		err = resp.Throw()
	}
	if err != nil {
		logger.WithCtx(ctx).Error("chatbot: completion failed", "error", err)
		return "", errConcierge
	}

	var out chatResponse
	if err := resp.Decode(&out); err != nil || len(out.Choices) == 0 {
		logger.WithCtx(ctx).Error("chatbot: unexpected completion payload", "error", err)
		return "", errConcierge
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
