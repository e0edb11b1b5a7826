// Package lookup is the only component that talks to the remote
// medication lookup service.
//
// Both operations return the uniform Result envelope and never surface a
// Go error to the caller: network and decode failures are folded into
// Result{Success: false}. Callers therefore handle a transport outage and
// a "drug not found" answer identically.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client communicates with the lookup service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given service base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// TextOptions tune the text lookup operation.
type TextOptions struct {
	// UseNER asks the service to run entity extraction on free text.
	UseNER bool
	// LookupAllDrugs asks for every detected drug, not just the first.
	LookupAllDrugs bool
}

// DefaultTextOptions are the options used by the conversation flow.
func DefaultTextOptions() TextOptions {
	return TextOptions{UseNER: true, LookupAllDrugs: false}
}

// textRequest is the JSON body for POST /lookup/text.
type textRequest struct {
	Text           string `json:"text"`
	UseNER         bool   `json:"use_ner"`
	LookupAllDrugs bool   `json:"lookup_all_drugs"`
}

// ResolveByText resolves a typed query to a match result.
func (c *Client) ResolveByText(ctx context.Context, text string, opts TextOptions) Result {
	body, err := json.Marshal(textRequest{
		Text:           text,
		UseNER:         opts.UseNER,
		LookupAllDrugs: opts.LookupAllDrugs,
	})
	if err != nil {
		return failure(fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup/text", bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

// ResolveByImages transmits the resized image set plus optional free text
// (used by the service to extract patient attributes such as weight and
// age). Each element of images is a complete encoded image.
func (c *Client) ResolveByImages(ctx context.Context, images [][]byte, additionalText string) Result {
	if len(images) == 0 {
		return failure(fmt.Errorf("no images to send"))
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, img := range images {
		part, err := w.CreateFormFile("files", fmt.Sprintf("image_%d.jpg", i))
		if err != nil {
			return failure(fmt.Errorf("building multipart body: %w", err))
		}
		if _, err := part.Write(img); err != nil {
			return failure(fmt.Errorf("writing image part: %w", err))
		}
	}
	if additionalText != "" {
		if err := w.WriteField("additional_text", additionalText); err != nil {
			return failure(fmt.Errorf("writing text field: %w", err))
		}
	}
	if err := w.Close(); err != nil {
		return failure(fmt.Errorf("closing multipart body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup/image", &buf)
	if err != nil {
		return failure(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.send(req)
}

// send executes the request and decodes the envelope, folding every
// failure mode into a Result.
func (c *Client) send(req *http.Request) Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("lookup request failed", "url", req.URL.Path, "error", err)
		return failure(fmt.Errorf("lookup service unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the message; the service reports
		// errors inside the envelope on 200, so any other status is
		// transport-level trouble.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		slog.Warn("lookup returned non-OK status", "url", req.URL.Path, "status", resp.StatusCode)
		return failure(fmt.Errorf("lookup service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(fmt.Errorf("decoding lookup response: %w", err))
	}
	if !result.Success && result.Error == "" {
		result.Error = "lookup did not find a match"
	}
	return result
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
