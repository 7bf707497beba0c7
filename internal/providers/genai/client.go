package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"productshots/internal/infra"
)

// ErrNoContent is returned when Gemini answers without a usable part.
var ErrNoContent = errors.New("gemini returned no content")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	ImageModel  string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client is a thin REST facade over the Gemini generateContent endpoint. With
// no API key it answers with deterministic synthetic output so the pipeline
// runs locally and in CI.
type Client struct {
	apiKey      string
	baseURL     string
	visionModel string
	imageModel  string
	httpClient  *http.Client
	logger      *infra.Logger
}

// InlineImage is an image sent as an inline part.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// TextRequest asks a vision-capable model for a text answer about images.
type TextRequest struct {
	Instruction string
	Images      []InlineImage
	JSON        bool
	RequestID   string
}

// ImageRequest asks the image model for exactly one image.
type ImageRequest struct {
	Prompt      string
	References  []InlineImage
	AspectRatio string
	Width       int
	Height      int
	RequestID   string
}

// ImageAsset is the normalized representation returned by the client.
type ImageAsset struct {
	URL    string
	Format string
	Width  int
	Height int
	Data   []byte
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount     int                `json:"candidateCount,omitempty"`
	ResponseMimeType   string             `json:"responseMimeType,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	Temperature        *float64           `json:"temperature,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse gemini base url: %w", err)
	}

	visionModel := opts.VisionModel
	if visionModel == "" {
		visionModel = "gemini-2.5-flash"
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		visionModel: visionModel,
		imageModel:  imageModel,
		httpClient:  client,
		logger:      logger,
	}, nil
}

// VisionModel returns the model used for text answers.
func (c *Client) VisionModel() string { return c.visionModel }

// ImageModel returns the model used for image generation.
func (c *Client) ImageModel() string { return c.imageModel }

// Synthetic reports whether the client runs without an API key.
func (c *Client) Synthetic() bool { return c.apiKey == "" }

// GenerateText returns the concatenated text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Synthetic() {
		return c.syntheticText(req), nil
	}

	parts := make([]geminiPart, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, inlinePart(img))
	}
	parts = append(parts, geminiPart{Text: req.Instruction})

	cfg := &geminiGenerationConfig{CandidateCount: 1}
	if req.JSON {
		cfg.ResponseMimeType = "application/json"
	}
	payload := geminiGenerateContentRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.modelPath(c.visionModel), payload, &response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.visionModel).
				Int("chars", len(text)).
				Msg("genai: text generated")
			return text, nil
		}
	}
	return "", ErrNoContent
}

// GenerateImage returns the first inline image of the response. Remote errors
// are returned as-is so callers can retry.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return ImageAsset{}, err
	}
	if c.Synthetic() {
		return c.syntheticImage(req), nil
	}

	parts := make([]geminiPart, 0, len(req.References)+1)
	for _, ref := range req.References {
		parts = append(parts, inlinePart(ref))
	}
	parts = append(parts, geminiPart{Text: req.Prompt})

	temperature := 0.4
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			Temperature:        &temperature,
			ImageConfig:        &geminiImageConfig{AspectRatio: req.AspectRatio},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.modelPath(c.imageModel), payload, &response); err != nil {
		return ImageAsset{}, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			asset, err := c.decodeInlineAsset(ctx, part)
			if err != nil || len(asset.Data) == 0 {
				continue
			}
			w, h := decodeImageDimensions(asset.Data)
			if w == 0 || h == 0 {
				w, h = req.Width, req.Height
			}
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.imageModel).
				Int("bytes", len(asset.Data)).
				Msg("genai: image generated")
			return ImageAsset{
				URL:    asset.URL,
				Format: firstNonEmpty(asset.Format, "image/png"),
				Width:  w,
				Height: h,
				Data:   asset.Data,
			}, nil
		}
	}
	return ImageAsset{}, ErrNoContent
}

func (c *Client) modelPath(model string) string {
	return fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
}

func inlinePart(img InlineImage) geminiPart {
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: firstNonEmpty(img.MIMEType, "image/png"),
		Data:     base64.StdEncoding.EncodeToString(img.Data),
	}}
}

type inlineAsset struct {
	Data   []byte
	Format string
	URL    string
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeInlineAsset(ctx context.Context, part geminiPart) (inlineAsset, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return inlineAsset{}, fmt.Errorf("decode inline data: %w", err)
		}
		return inlineAsset{Data: data, Format: part.InlineData.MimeType}, nil
	}

	if part.FileData != nil && part.FileData.FileURI != "" {
		data, mime, err := c.downloadFile(ctx, part.FileData.FileURI)
		if err != nil {
			return inlineAsset{}, err
		}
		return inlineAsset{Data: data, Format: firstNonEmpty(part.FileData.MimeType, mime), URL: part.FileData.FileURI}, nil
	}

	return inlineAsset{}, nil
}

func (c *Client) downloadFile(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("download file status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) syntheticText(req TextRequest) string {
	seed := deterministicSeed(req.RequestID, req.Instruction, len(req.Images))
	if !req.JSON {
		return fmt.Sprintf("Synthetic product description %s.", seed)
	}
	payload := map[string]any{
		"productType": "product",
		"category":    "general merchandise",
		"material":    "unknown",
		"colors":      []string{"#" + seed[:6]},
		"features":    []string{"overall silhouette", "visible label"},
		"summary":     "synthetic analysis " + seed,
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

func (c *Client) syntheticImage(req ImageRequest) ImageAsset {
	width, height := req.Width, req.Height
	if width <= 0 || height <= 0 {
		width, height = normalizeAspect(req.AspectRatio)
	}
	seed := deterministicSeed(req.RequestID, req.Prompt, len(req.References))
	data := renderSyntheticImage(width, height, seed)

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.imageModel).
		Msg("genai: generated synthetic image")

	return ImageAsset{Format: "image/png", Width: width, Height: height, Data: data}
}

func decodeImageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(32, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	r := parseHexByte(segment[0:2])
	g := parseHexByte(segment[2:4])
	b := parseHexByte(segment[4:6])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func normalizeAspect(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 1920, 1080
	case "9:16":
		return 1080, 1920
	case "4:5":
		return 1024, 1280
	case "3:4":
		return 960, 1280
	default:
		return 1024, 1024
	}
}
