// ABOUTME: Protected series lookup endpoints (search, detail, streamed deep detail)
// ABOUTME: Every call here passes through the credential and expiry interceptors

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Serie is one search hit
type Serie struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	EpisodesCount int    `json:"episodesCount"`
	Label         string `json:"label"`
	FavoriteID    int    `json:"favoriteID"`
	Thumbnail     string `json:"thumbnail"`
}

// Episode is an episode entry in a series detail
type Episode struct {
	ID     int     `json:"id"`
	Number float64 `json:"number"`
	Sub    int     `json:"sub"`
}

// SerieDetail is the full detail of one series
type SerieDetail struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ReleaseDate   string    `json:"releaseDate"`
	Trailer       string    `json:"trailer"`
	Country       string    `json:"country"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	NextEpDateID  int       `json:"nextEpDateID"`
	Episodes      []Episode `json:"episodes"`
	EpisodesCount int       `json:"episodesCount"`
	Label         *string   `json:"label"`
	FavoriteID    int       `json:"favoriteID"`
	Thumbnail     string    `json:"thumbnail"`
}

// Subtitle is one subtitle track of an episode source
type Subtitle struct {
	Src     string `json:"src"`
	Label   string `json:"label"`
	Lang    string `json:"land"`
	Default bool   `json:"default"`
}

// EpisodeDeep is an episode with its resolved media source
type EpisodeDeep struct {
	ID        int        `json:"id"`
	Number    float64    `json:"number"`
	Sub       int        `json:"sub"`
	Source    string     `json:"src"`
	Subtitles []Subtitle `json:"subtitles"`
}

// SerieDeepDetail is a series detail with episode sources resolved
type SerieDeepDetail struct {
	ID            int           `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	ReleaseDate   string        `json:"releaseDate"`
	Country       string        `json:"country"`
	Status        string        `json:"status"`
	Type          string        `json:"type"`
	Episodes      []EpisodeDeep `json:"episodes"`
	EpisodesCount int           `json:"episodesCount"`
	Thumbnail     string        `json:"thumbnail"`
}

type SeriesResponse struct {
	Series []Serie `json:"series"`
}

type SeriesDetailsResponse struct {
	SeriesDetails []SerieDetail `json:"series_details"`
}

type SeriesDeepDetailsResponse struct {
	SeriesDeepDetails []SerieDeepDetail `json:"series_deep_details"`
}

// Search calls GET /admin/scraping/search?keyword=
func (c *Client) Search(ctx context.Context, keyword string) (*SeriesResponse, error) {
	var resp envelope[*SeriesResponse]
	path := "/admin/scraping/search?keyword=" + url.QueryEscape(keyword)
	if err := c.doJSON(ctx, c.httpClient, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return &SeriesResponse{}, nil
	}
	return resp.Data, nil
}

// Detail calls GET /admin/scraping/detail/{key}
func (c *Client) Detail(ctx context.Context, key string) (*SeriesDetailsResponse, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("series key is required")
	}
	if c.detailCache != nil {
		if cached, ok := c.detailCache.Get(key); ok {
			return cached, nil
		}
	}

	var resp envelope[*SeriesDetailsResponse]
	if err := c.doJSON(ctx, c.httpClient, http.MethodGet, "/admin/scraping/detail/"+url.PathEscape(key), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = &SeriesDetailsResponse{}
	}
	if c.detailCache != nil {
		c.detailCache.Set(key, resp.Data)
	}
	return resp.Data, nil
}

// DeepDetail calls GET /admin/scraping/deep/detail/{key}, which streams server-sent events:
// progress lines, then the JSON envelope, then "event: done" with data complete|error.
// onProgress (may be nil) receives each progress line.
func (c *Client) DeepDetail(ctx context.Context, key string, onProgress func(string)) (*SeriesDeepDetailsResponse, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("series key is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/scraping/deep/detail/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streaming responses outlive the client timeout, so only ctx bounds this call
	streaming := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	return readDeepDetailStream(bufio.NewScanner(resp.Body), onProgress)
}

func readDeepDetailStream(sc *bufio.Scanner, onProgress func(string)) (*SeriesDeepDetailsResponse, error) {
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var (
		event   string
		data    []string
		result  *SeriesDeepDetailsResponse
		lastMsg string
	)

	dispatch := func() (bool, error) {
		payload := strings.Join(data, "\n")
		name := event
		event, data = "", nil

		if name == "done" {
			if payload == "error" || result == nil {
				if lastMsg == "" {
					lastMsg = "deep detail failed"
				}
				return true, errors.New(lastMsg)
			}
			return true, nil
		}

		switch {
		case payload == "":
		case strings.HasPrefix(payload, "{"):
			var env envelope[*SeriesDeepDetailsResponse]
			if err := json.Unmarshal([]byte(payload), &env); err != nil {
				return false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			result = env.Data
			if result == nil {
				result = &SeriesDeepDetailsResponse{}
			}
		case strings.HasPrefix(payload, "["):
			if onProgress != nil {
				onProgress(payload)
			}
		default:
			lastMsg = payload
		}
		return false, nil
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			done, err := dispatch()
			if err != nil {
				return nil, err
			}
			if done {
				return result, nil
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read event stream: %w", err)
	}
	if len(data) > 0 || event != "" {
		done, err := dispatch()
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
	}
	if result == nil {
		return nil, errors.New("event stream ended without a result")
	}
	return result, nil
}
