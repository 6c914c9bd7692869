package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	htmlescape "html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/podsift/podsift/internal/cache"
	"github.com/podsift/podsift/internal/model"
	"github.com/podsift/podsift/internal/util"
	"github.com/podsift/podsift/internal/worker"
)

// CaptionClient fetches platform auto-generated captions for a video.
// Any implementation satisfying this contract is substitutable.
type CaptionClient interface {
	FetchCaptions(ctx context.Context, videoID string) ([]model.TranscriptSegment, error)
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
}

// DetectVideoID reports whether the URL points at the caption-capable
// platform and extracts the stable video identifier
func DetectVideoID(rawURL string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// YouTubeCaptionClient scrapes caption tracks from watch pages. It is
// polite by construction: robots.txt checked per host, requests rate
// limited, and results cached so repeat opens of the same episode never
// refetch.
type YouTubeCaptionClient struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
}

// NewYouTubeCaptionClient creates a caption client from HTTP config.
// The cache may be nil to disable caching.
func NewYouTubeCaptionClient(cfg model.HTTPConfig, captionCache cache.Cache) *YouTubeCaptionClient {
	return &YouTubeCaptionClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		robots:     util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cache:      captionCache,
	}
}

// timedtext XML shapes
type timedTextDoc struct {
	Texts []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Body     string  `xml:",chardata"`
}

// captionTracks appears inside the player response JSON embedded in the
// watch page; only baseUrl is needed
var captionTrackPattern = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"([^"]+)"`)

// FetchCaptions retrieves the caption track for a video as segments
func (c *YouTubeCaptionClient) FetchCaptions(ctx context.Context, videoID string) ([]model.TranscriptSegment, error) {
	if c.cache != nil {
		if cached, found := c.cache.Get(cache.Key("captions:" + videoID)); found {
			var segments []model.TranscriptSegment
			if err := json.Unmarshal(cached, &segments); err == nil {
				return segments, nil
			}
		}
	}

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	if !c.robots.IsAllowed(ctx, watchURL) {
		return nil, fmt.Errorf("robots.txt disallows %s", watchURL)
	}

	trackURL, err := c.findCaptionTrack(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("find caption track: %w", err)
	}

	segments, err := c.fetchTimedText(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("caption track for %s is empty", videoID)
	}

	if c.cache != nil {
		if data, err := json.Marshal(segments); err == nil {
			_ = c.cache.Set(cache.Key("captions:"+videoID), data, 0)
		}
	}

	return segments, nil
}

// findCaptionTrack fetches the watch page and locates the timedtext URL
// inside the embedded player response
func (c *YouTubeCaptionClient) findCaptionTrack(ctx context.Context, watchURL string) (string, error) {
	body, err := c.get(ctx, watchURL)
	if err != nil {
		return "", err
	}

	// The player response lives in a <script> element; walk the parsed
	// document rather than regexing the whole page
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse watch page: %w", err)
	}

	var trackURL string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if trackURL != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			script := n.FirstChild.Data
			if m := captionTrackPattern.FindStringSubmatch(script); m != nil {
				trackURL = decodeTrackURL(m[1])
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if trackURL == "" {
		return "", fmt.Errorf("no caption tracks on %s", watchURL)
	}
	return trackURL, nil
}

// fetchTimedText downloads and decodes the timedtext XML track
func (c *YouTubeCaptionClient) fetchTimedText(ctx context.Context, trackURL string) ([]model.TranscriptSegment, error) {
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, err
	}

	var doc timedTextDoc
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext: %w", err)
	}

	segments := make([]model.TranscriptSegment, 0, len(doc.Texts))
	for _, cue := range doc.Texts {
		text := strings.TrimSpace(htmlescape.UnescapeString(cue.Body))
		if text == "" {
			continue
		}
		segments = append(segments, model.TranscriptSegment{
			Text:     text,
			Start:    cue.Start,
			Duration: cue.Duration,
		})
	}

	return segments, nil
}

// get performs a rate-limited GET and returns the body up to maxBytes
func (c *YouTubeCaptionClient) get(ctx context.Context, rawURL string) (string, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// decodeTrackURL undoes the JSON string escaping the player response
// applies to the track URL
func decodeTrackURL(raw string) string {
	raw = strings.ReplaceAll(raw, `\u0026`, "&")
	raw = strings.ReplaceAll(raw, `\/`, "/")
	return raw
}

var _ CaptionClient = (*YouTubeCaptionClient)(nil)
