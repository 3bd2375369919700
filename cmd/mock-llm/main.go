// Package main implements a mock completion server for offline testing.
// It serves OpenAI-compatible /v1/chat/completions responses with a
// fixed assistant message, so both grompt surfaces can be exercised
// without a real provider or API key.
//
// Usage:
//
//	mock-llm -port 11434 -response "Write a short, vivid poem about nature."
//	GROMPT_MODEL_PROVIDER=ollama GROMPT_MODEL_ENDPOINT=http://localhost:11434/v1 grompt "write a poem"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

// --- OpenAI-compatible types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Server ---

type mockServer struct {
	response  string
	callCount atomic.Int64
}

func (s *mockServer) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages required", http.StatusBadRequest)
		return
	}

	n := s.callCount.Add(1)
	log.Printf("call %d: model=%s messages=%d", n, req.Model, len(req.Messages))

	resp := chatResponse{
		ID:      fmt.Sprintf("chatcmpl-mock-%d", n),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: s.response},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(req.Messages[0].Content) / 4,
			CompletionTokens: len(s.response) / 4,
			TotalTokens:      (len(req.Messages[0].Content) + len(s.response)) / 4,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (s *mockServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	return mux
}

func main() {
	port := flag.Int("port", 11434, "listen port")
	response := flag.String("response", "Write a short, vivid poem about nature.", "assistant message to return")
	flag.Parse()

	s := &mockServer{response: *response}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock-llm listening on %s", addr)
	if err := http.ListenAndServe(addr, s.routes()); err != nil {
		log.Fatal(err)
	}
}
