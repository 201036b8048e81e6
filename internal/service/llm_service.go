package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"finpulse/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const gigaChatModel = "GigaChat"

// LLMService talks to GigaChat: plain generation for schema-constrained JSON
// extraction and the Vision HTTP API for image transcription. It implements
// VisionCapability.
type LLMService struct {
	client      *gigago.Client
	config      *config.GigaChatConfig
	logger      *zap.Logger
	httpClient *http.Client
	baseURL    string

	// Vision calls run concurrently from the page worker pool; the cached
	// token is read per request and rewritten on 401, so it needs the lock.
	mu          sync.Mutex
	accessToken string
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		// GigaChat REST API, https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL: "https://gigachat.devices.sberbank.ru/api/v1",
	}, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// Needed for file uploads and vision calls that bypass the gigago client.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	// API key is already Base64-encoded per the GigaChat API docs
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	return oauthResp.AccessToken, nil
}

func (s *LLMService) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *LLMService) setToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *LLMService) refreshToken(ctx context.Context) error {
	token, err := getAccessToken(ctx, s.config, s.httpClient, s.logger)
	if err != nil {
		return err
	}
	s.setToken(token)
	return nil
}

// GenerateJSON runs one constrained generation call and returns the raw model
// response. The system prompt is expected to pin the output to a JSON object;
// markdown fences are stripped here so callers can decode directly.
func (s *LLMService) GenerateJSON(ctx context.Context, systemPrompt, userText string) (string, error) {
	model := s.client.GenerativeModel(gigaChatModel)
	model.SystemInstruction = systemPrompt
	model.Temperature = 0

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: userText},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = stripMarkdownFences(content)

	s.logger.Debug("Constrained generation completed", zap.Int("response_length", len(content)))
	return content, nil
}

// Describe sends an image through the Vision API with the given prompt and
// returns the model's textual response.
func (s *LLMService) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	fileID, err := s.uploadFile(ctx, image, "page.png")
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	// Vision requests go through /chat/completions with file attachments,
	// attachments format per the API docs: [["file_id"]]
	requestBody := map[string]interface{}{
		"model": gigaChatModel,
		"messages": []map[string]interface{}{
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature": 0.0,
		"stream":      false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.currentToken())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var visionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(visionResp.Choices) == 0 {
		return "", fmt.Errorf("no response from Vision API")
	}

	text := strings.TrimSpace(visionResp.Choices[0].Message.Content)

	s.logger.Info("Text extracted via GigaChat Vision", zap.Int("text_length", len(text)))
	return text, nil
}

// uploadFile uploads file bytes to GigaChat and returns the file ID.
func (s *LLMService) uploadFile(ctx context.Context, data []byte, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// "general" purpose allows using uploaded files in generation requests
	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {"image/png"},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	payload := body.Bytes()
	contentType := writer.FormDataContentType()

	// On 401 the token expired: refresh it and resend the same payload once.
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/files", bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+s.currentToken())

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to upload file: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			s.logger.Warn("Upload rejected with 401, refreshing token", zap.String("response", string(bodyBytes)))
			if err := s.refreshToken(ctx); err != nil {
				return "", fmt.Errorf("upload failed with 401, token refresh also failed: %w", err)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
		}

		var uploadResp struct {
			ID string `json:"id"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&uploadResp)
		resp.Body.Close()
		if decodeErr != nil {
			return "", fmt.Errorf("failed to decode response: %w", decodeErr)
		}

		s.logger.Debug("File uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
		return uploadResp.ID, nil
	}
}

func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
