package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

// Descriptor is a fully built HTTP request. It is not modified once built.
type Descriptor struct {
	Method   string
	Endpoint string
	Header   http.Header
	Body     []byte
	Timeout  time.Duration
	// Model is the model named in the body, if any.
	Model string
}

// BuilderConfig holds everything the builder needs to shape requests.
type BuilderConfig struct {
	BaseURL      string
	APIKey       string
	TextModel    string
	VisionModel  string
	Temperature  float32
	MaxTokens    int
	TextTimeout  time.Duration
	ImageTimeout time.Duration

	AssistantID string
	APIVersion  string

	Image ImageOptions
}

// Builder turns validated input into request descriptors. It does no I/O.
type Builder struct {
	cfg  BuilderConfig
	base string
}

// NewBuilder creates a builder. An empty BaseURL falls back to the public API.
func NewBuilder(cfg BuilderConfig) *Builder {
	base := cfg.BaseURL
	if base == "" {
		base = openai.DefaultConfig("").BaseURL
	}
	return &Builder{cfg: cfg, base: strings.TrimRight(base, "/")}
}

// Text builds a stateless chat completion request for text.
func (b *Builder) Text(text string) (*Descriptor, error) {
	req := openai.ChatCompletionRequest{
		Model: b.cfg.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: string(model.RoleSystem), Content: SystemPrompt},
			{Role: string(model.RoleUser), Content: UserPrompt(text)},
		},
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	}
	return b.jsonRequest(http.MethodPost, "/chat/completions", req, b.cfg.TextTimeout, b.cfg.TextModel, false)
}

// Image builds a vision completion request with the compressed image
// embedded as a data URI. Any image failure aborts the whole build.
func (b *Builder) Image(data []byte) (*Descriptor, error) {
	img, err := CompressImage(data, b.cfg.Image)
	if err != nil {
		return nil, err
	}
	return b.ImageFrom(img)
}

// ImageFrom builds a vision request from an already compressed image.
func (b *Builder) ImageFrom(img *EncodedImage) (*Descriptor, error) {
	req := openai.ChatCompletionRequest{
		Model: b.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: string(model.RoleUser),
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: ImagePrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: img.DataURI()}},
				},
			},
		},
		MaxTokens: b.cfg.MaxTokens,
	}
	return b.jsonRequest(http.MethodPost, "/chat/completions", req, b.cfg.ImageTimeout, b.cfg.VisionModel, false)
}

type threadMessageBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runBody struct {
	AssistantID string `json:"assistant_id"`
}

// CreateThread builds the request that opens a remote thread.
func (b *Builder) CreateThread() (*Descriptor, error) {
	return b.jsonRequest(http.MethodPost, "/threads", struct{}{}, b.cfg.TextTimeout, "", true)
}

// PostMessage builds the request that appends a user message to a thread.
func (b *Builder) PostMessage(threadID, text string) (*Descriptor, error) {
	body := threadMessageBody{Role: string(model.RoleUser), Content: text}
	return b.jsonRequest(http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/messages", body, b.cfg.TextTimeout, "", true)
}

// CreateRun builds the request that starts the assistant on a thread.
func (b *Builder) CreateRun(threadID string) (*Descriptor, error) {
	body := runBody{AssistantID: b.cfg.AssistantID}
	return b.jsonRequest(http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/runs", body, b.cfg.TextTimeout, "", true)
}

// GetRun builds the request that reads a run's status.
func (b *Builder) GetRun(threadID, runID string) (*Descriptor, error) {
	path := fmt.Sprintf("/threads/%s/runs/%s", url.PathEscape(threadID), url.PathEscape(runID))
	return b.request(http.MethodGet, path, nil, b.cfg.TextTimeout, "", true), nil
}

// ListMessages builds the request that lists a thread's messages, newest first.
func (b *Builder) ListMessages(threadID string) (*Descriptor, error) {
	path := "/threads/" + url.PathEscape(threadID) + "/messages?order=desc"
	return b.request(http.MethodGet, path, nil, b.cfg.TextTimeout, "", true), nil
}

func (b *Builder) jsonRequest(method, path string, payload any, timeout time.Duration, modelName string, beta bool) (*Descriptor, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, model.GeneralError("failed to encode request", 0, err)
	}
	return b.request(method, path, body, timeout, modelName, beta), nil
}

func (b *Builder) request(method, path string, body []byte, timeout time.Duration, modelName string, beta bool) *Descriptor {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+b.cfg.APIKey)
	h.Set("Content-Type", "application/json")
	if beta && b.cfg.APIVersion != "" {
		h.Set("OpenAI-Beta", b.cfg.APIVersion)
	}
	return &Descriptor{
		Method:   method,
		Endpoint: b.base + path,
		Header:   h,
		Body:     body,
		Timeout:  timeout,
		Model:    modelName,
	}
}
