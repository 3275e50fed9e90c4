// Package openai implements the grader client against an OpenAI-compatible
// chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"journal-grading-service/internal/config"
	"journal-grading-service/internal/core/domain"
	ports "journal-grading-service/internal/core/ports/output"
	"journal-grading-service/internal/metrics"
)

// maxResponseSize bounds the model response body.
const maxResponseSize = 10 * 1024 * 1024

const systemPrompt = "You are an expert music professor. Provide detailed, constructive feedback " +
	"on student listening journals and detect AI-generated writing."

// fallbackSeed is the deterministic per-criterion score used when a model
// response cannot be parsed: 4, 3, 2, 1 down the rubric order.
var fallbackSeed = []float64{4, 3, 2, 1}

type graderClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	backoffBase time.Duration
	httpClient  *http.Client
}

// ClientOption configures the grader client.
type ClientOption func(*graderClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *graderClient) { g.httpClient = c }
}

// WithBackoffBase sets the initial retry backoff.
func WithBackoffBase(d time.Duration) ClientOption {
	return func(g *graderClient) { g.backoffBase = d }
}

// NewGraderClient creates a grader client for cfg's endpoint.
func NewGraderClient(cfg *config.GraderConfig, opts ...ClientOption) ports.GraderClient {
	g := &graderClient{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: 2 * time.Second,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Chat completions wire types.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireCriterion tolerates both field spellings models produce for the
// criterion name and max ("criterion_name"/"criterion", "max_points"/"maxScore").
type wireCriterion struct {
	CriterionName string  `json:"criterion_name"`
	Criterion     string  `json:"criterion"`
	Score         float64 `json:"score"`
	MaxPoints     float64 `json:"max_points"`
	MaxScore      float64 `json:"maxScore"`
	Feedback      string  `json:"feedback"`
}

type wireDetection struct {
	LikelyAIGenerated bool            `json:"likely_ai_generated"`
	Confidence        json.RawMessage `json:"confidence"`
	Reasoning         string          `json:"reasoning"`
}

type wireGrade struct {
	RubricScores    []wireCriterion `json:"rubric_scores"`
	Rubric          []wireCriterion `json:"rubric"`
	OverallFeedback string          `json:"overall_feedback"`
	AIFeedback      string          `json:"ai_feedback"`
	LetterGrade     string          `json:"letter_grade"`
	AIDetection     *wireDetection  `json:"ai_detection"`
}

func (c *graderClient) Grade(ctx context.Context, req ports.GradeRequest) (*domain.GraderResult, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature:    0.7,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal grading request: %w", err)
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		metrics.GraderCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.GraderCalls.WithLabelValues("ok").Inc()

	result, ok := parseGrade(content, c.model)
	if !ok {
		// A garbled model response must never block persistence of some
		// grade; substitute deterministic partial scores instead.
		return fallbackResult(req.Rubric, c.model), nil
	}
	return result, nil
}

// complete sends the chat request, retrying transport errors and 429/5xx
// responses with exponential backoff. A non-success final status becomes a
// *domain.GraderError.
func (c *graderClient) complete(ctx context.Context, body []byte) (string, error) {
	backoff := c.backoffBase

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create grading request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("grading request: %w", err)
			log.WithError(err).WithField("attempt", attempt).Warn("grader call failed")
			continue
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read grading response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &domain.GraderError{StatusCode: resp.StatusCode, Detail: truncate(string(data), 512)}
			log.WithFields(log.Fields{
				"status":  resp.StatusCode,
				"attempt": attempt,
			}).Warn("grader returned retryable status")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return "", &domain.GraderError{StatusCode: resp.StatusCode, Detail: truncate(string(data), 512)}
		}

		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil || len(parsed.Choices) == 0 {
			// Treat an undecodable envelope as malformed content, not failure.
			return string(data), nil
		}
		return parsed.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

func buildPrompt(req ports.GradeRequest) string {
	var b strings.Builder

	b.WriteString("Grade the following student listening journal entry against the rubric below.\n\n")
	if req.AssignmentPrompt != "" {
		b.WriteString("Assignment Prompt:\n")
		b.WriteString(req.AssignmentPrompt)
		b.WriteString("\n\n")
	}
	b.WriteString("Student Submission:\n")
	b.WriteString(req.Text)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Rubric Criteria (total %.0f points):\n", req.Rubric.RawMax())
	for _, c := range req.Rubric.Criteria {
		fmt.Fprintf(&b, "- %s: %.0f points", c.Name, c.MaxPoints)
		if c.Description != "" {
			fmt.Fprintf(&b, " (%s)", c.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Also analyze whether this submission was likely written by AI based on generic
or templated language, absence of personal voice, and suspiciously polished
structure. Give students the benefit of the doubt.

Respond in JSON format:
{
  "rubric_scores": [
    {"criterion_name": "<name>", "score": <number>, "max_points": <number>, "feedback": "<specific feedback>"}
  ],
  "overall_feedback": "<constructive overall feedback>",
  "letter_grade": "<A+, A, A-, B+, B, B-, C+, C, C-, D+, D, D-, F>",
  "ai_detection": {"likely_ai_generated": <boolean>, "confidence": "<low|medium|high>", "reasoning": "<brief explanation>"}
}`)

	return b.String()
}

// parseGrade decodes the model's JSON content into a grader result. It
// tolerates markdown code fences and either criterion field spelling.
func parseGrade(content, model string) (*domain.GraderResult, bool) {
	raw := extractJSON(content)
	if raw == "" {
		return nil, false
	}

	var wire wireGrade
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, false
	}

	criteria := wire.RubricScores
	if len(criteria) == 0 {
		criteria = wire.Rubric
	}
	if len(criteria) == 0 {
		return nil, false
	}

	scores := make([]domain.CriterionScore, 0, len(criteria))
	for _, wc := range criteria {
		name := wc.CriterionName
		if name == "" {
			name = wc.Criterion
		}
		max := wc.MaxPoints
		if max == 0 {
			max = wc.MaxScore
		}
		scores = append(scores, domain.CriterionScore{
			CriterionName: name,
			Score:         wc.Score,
			MaxPoints:     max,
			Feedback:      wc.Feedback,
		})
	}

	feedback := wire.OverallFeedback
	if feedback == "" {
		feedback = wire.AIFeedback
	}

	result := &domain.GraderResult{
		CriterionScores: scores,
		OverallFeedback: feedback,
		LetterGrade:     wire.LetterGrade,
		Model:           model,
	}
	if wire.AIDetection != nil {
		result.AIDetection = &domain.AIDetection{
			Flagged:    wire.AIDetection.LikelyAIGenerated,
			Confidence: decodeConfidence(wire.AIDetection.Confidence),
			Reasoning:  wire.AIDetection.Reasoning,
		}
	}
	return result, true
}

// decodeConfidence accepts either the string enum ("low") or a bare number
// (0-100) that some models return.
func decodeConfidence(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%.0f", n)
	}
	return ""
}

// fallbackResult builds the deterministic degraded grade used when the model
// response is unparseable: criteria scored 4, 3, 2, 1 down the rubric order
// (continuing at 1), with generic feedback noting the degraded grading.
func fallbackResult(rubric domain.Rubric, model string) *domain.GraderResult {
	scores := make([]domain.CriterionScore, 0, len(rubric.Criteria))
	for i, c := range rubric.Criteria {
		seed := 1.0
		if i < len(fallbackSeed) {
			seed = fallbackSeed[i]
		}
		if seed > c.MaxPoints {
			seed = c.MaxPoints
		}
		scores = append(scores, domain.CriterionScore{
			CriterionName: c.Name,
			Score:         seed,
			MaxPoints:     c.MaxPoints,
			Feedback:      "Automated grading was degraded for this criterion; score assigned provisionally.",
		})
	}
	return &domain.GraderResult{
		CriterionScores: scores,
		OverallFeedback: "The grading service returned an unreadable evaluation, so provisional partial credit was assigned. An instructor may regrade this entry.",
		Model:           model,
		Degraded:        true,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
