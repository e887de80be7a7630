package client

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TranscriptFetcher pulls caption tracks straight from YouTube's timedtext
// endpoint. It only works for videos with published captions; the caller
// falls back to the analyzer service when it returns nothing.
type TranscriptFetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTranscriptFetcher creates a local transcript fetcher
func NewTranscriptFetcher(logger *zap.Logger) *TranscriptFetcher {
	return &TranscriptFetcher{
		baseURL: "https://video.google.com/timedtext",
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		logger: logger,
	}
}

type timedText struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the English caption track for a video URL, joined into one
// string. An empty transcript with a nil error means the video has no
// published captions.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoURL string) (string, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("lang", "en")
	params.Add("v", videoID)

	reqURL := fmt.Sprintf("%s?%s", f.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption endpoint returned status code %d", resp.StatusCode)
	}

	var tt timedText
	if err := xml.NewDecoder(resp.Body).Decode(&tt); err != nil {
		// No caption track produces an empty body, which fails to parse.
		f.logger.Debug("No local captions available", zap.String("video_id", videoID))
		return "", nil
	}

	parts := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Body))
		if line != "" {
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, " "), nil
}

// ExtractVideoID pulls the video id out of watch, share and shorts URLs.
func ExtractVideoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("invalid video URL: %w", err)
	}

	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}

	host := strings.TrimPrefix(u.Host, "www.")
	path := strings.Trim(u.Path, "/")
	switch {
	case host == "youtu.be" && path != "":
		return path, nil
	case strings.HasPrefix(path, "shorts/"):
		return strings.TrimPrefix(path, "shorts/"), nil
	case strings.HasPrefix(path, "embed/"):
		return strings.TrimPrefix(path, "embed/"), nil
	}

	return "", fmt.Errorf("could not extract video id from %q", videoURL)
}
