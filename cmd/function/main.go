package main

import (
	"context"

	"github.com/AbhishekS200607/easyfin/internal/api"
	"github.com/AbhishekS200607/easyfin/internal/bot"
	"github.com/AbhishekS200607/easyfin/internal/config"
	"github.com/AbhishekS200607/easyfin/internal/service"
	"github.com/AbhishekS200607/easyfin/internal/store"
)

// Request is the incoming API Gateway payload.
type Request struct {
	Body string `json:"body"`
}

// Response is the API Gateway reply.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler processes a single webhook update in a serverless deployment.
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return errorResponse(err)
	}

	settings, err := store.Open(cfg.StateDBPath)
	if err != nil {
		return errorResponse(err)
	}
	defer settings.Close()

	tracker := service.NewTracker(api.NewClient(cfg.APIBaseURL), settings)

	b, err := bot.NewBot(cfg.TelegramToken, tracker)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Entry point for local testing.
}
