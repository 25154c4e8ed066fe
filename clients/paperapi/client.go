// Package paperapi is the HTTP client for the paper explanation backend:
// the three parse endpoints, the summarizer, and the illustrator.
package paperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/paperbuddy/paperbuddy/pipeline"
)

// DefaultTimeout bounds each collaborator call. The summarizer is the slow
// stage and runs up to a minute server-side.
const DefaultTimeout = 60 * time.Second

// Client talks to the collaborator endpoints. It implements
// pipeline.Parser, pipeline.Summarizer, and pipeline.Illustrator.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     pipeline.Logger
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Logger:     pipeline.NopLogger{},
	}
}

type urlParseRequest struct {
	URL   string               `json:"url"`
	Topic pipeline.CourseTopic `json:"courseTopic"`
}

type manualParseRequest struct {
	Title    string               `json:"title"`
	Authors  []string             `json:"authors"`
	Abstract string               `json:"abstract"`
	Sections []pipeline.Section   `json:"sections"`
	Topic    pipeline.CourseTopic `json:"courseTopic"`
}

type illustrateRequest struct {
	KeyPoints []string `json:"key_points"`
	Style     string   `json:"style"`
}

// ParseFile uploads a paper document for parsing.
func (c *Client) ParseFile(ctx context.Context, file pipeline.FileUpload, topic pipeline.CourseTopic) (pipeline.ParsedPaper, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Filename)
	if err != nil {
		return pipeline.ParsedPaper{}, pipeline.NewError(pipeline.StageParse, pipeline.KindInternal, "build multipart body", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return pipeline.ParsedPaper{}, pipeline.NewError(pipeline.StageParse, pipeline.KindInternal, "read upload", err)
	}
	if err := writer.WriteField("courseTopic", string(topic)); err != nil {
		return pipeline.ParsedPaper{}, pipeline.NewError(pipeline.StageParse, pipeline.KindInternal, "build multipart body", err)
	}
	if err := writer.Close(); err != nil {
		return pipeline.ParsedPaper{}, pipeline.NewError(pipeline.StageParse, pipeline.KindInternal, "build multipart body", err)
	}

	var paper pipeline.ParsedPaper
	err = c.post(ctx, pipeline.StageParse, "/api/parse/pdf", writer.FormDataContentType(), &body, &paper)
	return paper, err
}

// ParseURL asks the backend to fetch and parse a paper by URL.
func (c *Client) ParseURL(ctx context.Context, url string, topic pipeline.CourseTopic) (pipeline.ParsedPaper, error) {
	var paper pipeline.ParsedPaper
	err := c.postJSON(ctx, pipeline.StageParse, "/api/parse/url", urlParseRequest{URL: url, Topic: topic}, &paper)
	return paper, err
}

// ParseManual submits manually entered paper fields.
func (c *Client) ParseManual(ctx context.Context, paper pipeline.ManualPaper, topic pipeline.CourseTopic) (pipeline.ParsedPaper, error) {
	req := manualParseRequest{
		Title:    paper.Title,
		Authors:  paper.Authors,
		Abstract: paper.Abstract,
		Sections: paper.Sections,
		Topic:    topic,
	}
	var parsed pipeline.ParsedPaper
	err := c.postJSON(ctx, pipeline.StageParse, "/api/parse/manual", req, &parsed)
	return parsed, err
}

// Summarize requests a kid-friendly summary for a parsed paper.
func (c *Client) Summarize(ctx context.Context, paper pipeline.ParsedPaper) (pipeline.Summary, error) {
	var summary pipeline.Summary
	err := c.postJSON(ctx, pipeline.StageSummarize, "/api/summarize", paper, &summary)
	return summary, err
}

// Illustrate requests one illustration per key point.
func (c *Client) Illustrate(ctx context.Context, keyPoints []string, style string) (pipeline.IllustrationSet, error) {
	var set pipeline.IllustrationSet
	err := c.postJSON(ctx, pipeline.StageIllustrate, "/api/images/generate", illustrateRequest{KeyPoints: keyPoints, Style: style}, &set)
	return set, err
}

func (c *Client) postJSON(ctx context.Context, stage pipeline.Stage, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pipeline.NewError(stage, pipeline.KindInternal, "encode request", err)
	}
	return c.post(ctx, stage, path, "application/json", bytes.NewReader(body), out)
}

func (c *Client) post(ctx context.Context, stage pipeline.Stage, path, contentType string, body io.Reader, out any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := c.Logger
	if logger == nil {
		logger = pipeline.NopLogger{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return pipeline.NewError(stage, pipeline.KindInternal, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return pipeline.NewError(stage, pipeline.KindRemote, fmt.Sprintf("POST %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warnf("paperapi: POST %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
		return pipeline.NewError(stage, pipeline.KindRemote,
			fmt.Sprintf("POST %s returned status %d", path, resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pipeline.NewError(stage, pipeline.KindRemote, fmt.Sprintf("POST %s returned malformed body", path), err)
	}
	return nil
}
