package yts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public YTS.mx API v2 endpoint.
	DefaultBaseURL = "https://yts.mx/api/v2"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// searchLimit is how many movies one list_movies call asks for.
	searchLimit = 20

	// maxSearchResults caps the flattened torrent list shown to a user.
	maxSearchResults = 10
)

// Torrent is a single release of a movie as returned by the API.
type Torrent struct {
	URL       string `json:"url"`
	Hash      string `json:"hash"`
	Quality   string `json:"quality"`
	Type      string `json:"type"`
	Seeds     int    `json:"seeds"`
	Peers     int    `json:"peers"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"size_bytes"`
}

// CastMember is an actor entry from movie_details with_cast=true.
type CastMember struct {
	Name          string `json:"name"`
	CharacterName string `json:"character_name"`
}

// Movie mirrors the relevant subset of the YTS movie object.
type Movie struct {
	ID               int          `json:"id"`
	URL              string       `json:"url"`
	Title            string       `json:"title"`
	TitleLong        string       `json:"title_long"`
	Year             int          `json:"year"`
	Rating           float64      `json:"rating"`
	Genres           []string     `json:"genres"`
	DescriptionFull  string       `json:"description_full"`
	MediumCoverImage string       `json:"medium_cover_image"`
	Cast             []CastMember `json:"cast"`
	Torrents         []Torrent    `json:"torrents"`
}

type listResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          struct {
		MovieCount int     `json:"movie_count"`
		Movies     []Movie `json:"movies"`
	} `json:"data"`
}

type detailsResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Data          struct {
		Movie Movie `json:"movie"`
	} `json:"data"`
}

// Result is one selectable entry of a search: a movie flattened per torrent.
type Result struct {
	Title      string
	TorrentURL string
	Size       string
	SizeBytes  int64
	Seeds      int
	Quality    string
	Hash       string
	MovieID    int
	MovieURL   string
	CoverURL   string
}

// Client talks to the YTS.mx API.
type Client struct {
	// BaseURL may be overridden, e.g. for tests or a mirror.
	BaseURL string

	client *http.Client
	logger *zerolog.Logger
}

func NewClient(logger *zerolog.Logger) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Search queries list_movies sorted by download count and flattens every
// torrent into a Result. Torrents not matching the requested quality are
// dropped. Results come back ordered by seeds, at most maxSearchResults of
// them. An empty slice with a nil error means the query matched nothing.
func (c *Client) Search(ctx context.Context, query string, quality Quality) ([]Result, error) {
	c.logger.Info().Str("query", query).Str("quality", string(quality)).Msg("searching yts")

	params := url.Values{}
	params.Set("query_term", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("sort_by", "download_count")
	params.Set("order_by", "desc")

	var lr listResponse
	if err := c.getJSON(ctx, "/list_movies.json", params, &lr); err != nil {
		return nil, err
	}
	if lr.Status != "ok" {
		c.logger.Error().Str("status_message", lr.StatusMessage).Msg("yts api rejected search")
		return nil, errors.Errorf("yts api error: %s", lr.StatusMessage)
	}
	if lr.Data.MovieCount == 0 {
		c.logger.Info().Str("query", query).Msg("no movies found")
		return nil, nil
	}

	var results []Result
	for _, m := range lr.Data.Movies {
		for _, t := range m.Torrents {
			if quality != QualityAny && !strings.EqualFold(string(quality), t.Quality) {
				continue
			}
			results = append(results, Result{
				Title:      fmt.Sprintf("%s - %s [Rating: %.1f]", m.TitleLong, t.Quality, m.Rating),
				TorrentURL: t.URL,
				Size:       t.Size,
				SizeBytes:  t.SizeBytes,
				Seeds:      t.Seeds,
				Quality:    t.Quality,
				Hash:       t.Hash,
				MovieID:    m.ID,
				MovieURL:   m.URL,
				CoverURL:   m.MediumCoverImage,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Seeds > results[j].Seeds
	})
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, nil
}

// Details fetches the full record of a single movie, including images and cast.
func (c *Client) Details(ctx context.Context, movieID int) (*Movie, error) {
	params := url.Values{}
	params.Set("movie_id", strconv.Itoa(movieID))
	params.Set("with_images", "true")
	params.Set("with_cast", "true")

	var dr detailsResponse
	if err := c.getJSON(ctx, "/movie_details.json", params, &dr); err != nil {
		return nil, err
	}
	if dr.Status != "ok" {
		c.logger.Error().Str("status_message", dr.StatusMessage).Msg("yts api rejected details")
		return nil, errors.Errorf("yts api error: %s", dr.StatusMessage)
	}
	if dr.Data.Movie.ID == 0 {
		return nil, errors.Errorf("movie %d not found", movieID)
	}
	return &dr.Data.Movie, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", c.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "building yts request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("error calling yts api")
		return errors.Wrap(err, "calling yts api")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("error reading yts response")
		return errors.Wrap(err, "reading yts response")
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status_code", resp.StatusCode).Str("path", path).Msg("yts api request failed")
		return errors.Errorf("yts api request failed with status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("error unmarshalling yts response")
		return errors.Wrap(err, "unmarshalling yts response")
	}
	return nil
}

// FormatDetails renders a movie as the plain-text summary shown to users.
func FormatDetails(m *Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Movie: %s\n", m.TitleLong)
	fmt.Fprintf(&b, "Rating: %.1f/10\n", m.Rating)
	genres := "Unknown"
	if len(m.Genres) > 0 {
		genres = strings.Join(m.Genres, ", ")
	}
	fmt.Fprintf(&b, "Genres: %s\n", genres)
	if m.DescriptionFull != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", m.DescriptionFull)
	}
	if len(m.Cast) > 0 {
		b.WriteString("\nCast:\n")
		for _, actor := range m.Cast {
			fmt.Fprintf(&b, "- %s\n", actor.Name)
		}
	}
	return b.String()
}
