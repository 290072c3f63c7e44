package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/pixelswarm/swarm/skill"
)

// maxFetchBody bounds how much of a response body Fetch will read.
const maxFetchBody = 5 * 1024 * 1024

// Fetch retrieves a URL over HTTP GET and, for HTML responses, converts
// the page body to Markdown via goquery + html-to-markdown rather than
// returning the raw markup — a generalization of the original Rust
// http_fetch builtin, which only ever returned the raw body text.
type Fetch struct {
	Client *http.Client
}

// NewFetch returns a Fetch skill with a bounded-timeout client.
func NewFetch() Fetch {
	return Fetch{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (Fetch) Name() string        { return "fetch" }
func (Fetch) Description() string { return "Fetch a URL over HTTP GET and return its content as Markdown." }

func (Fetch) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "The URL to fetch."},
		},
		"required": []any{"url"},
	}
}

func (f Fetch) Execute(ctx context.Context, input skill.Input) (skill.Output, error) {
	args, _ := input.Args.(map[string]any)
	url, ok := args["url"].(string)
	if !ok {
		return errInput("url"), nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return skill.Err("url must start with http:// or https://"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return skill.Err("build request: %v", err), nil
	}
	req.Header.Set("User-Agent", "pixelswarm-fetch/1.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return skill.Err("fetch %s: %v", url, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return skill.Err("fetch %s: status %d", url, resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return skill.Err("read body: %v", err), nil
	}

	content := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		markdown, err := toMarkdown(content)
		if err != nil {
			return skill.Err("convert html to markdown: %v", err), nil
		}
		content = markdown
	}

	return skill.Ok(map[string]any{"body": content}), nil
}

var _ skill.Skill = Fetch{}

func toMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}
	return markdown, nil
}
