package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// DefaultErgastURL is the Jolpica mirror of the Ergast API.
const DefaultErgastURL = "https://api.jolpi.ca/ergast/f1"

const pageLimit = "100"

// ErgastProvider reads sessions from an Ergast-compatible JSON API.
type ErgastProvider struct {
	baseURL string
	client  *http.Client
}

// NewErgastProvider creates a provider rooted at baseURL.
func NewErgastProvider(baseURL string, opts ...ErgastOption) *ErgastProvider {
	if baseURL == "" {
		baseURL = DefaultErgastURL
	}
	p := &ErgastProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ergastResponse struct {
	MRData struct {
		RaceTable struct {
			Races []ergastRace `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type ergastRace struct {
	Season            string             `json:"season"`
	Round             string             `json:"round"`
	RaceName          string             `json:"raceName"`
	Results           []ergastResult     `json:"Results"`
	QualifyingResults []ergastQualifying `json:"QualifyingResults"`
}

type ergastDriver struct {
	Code string `json:"code"`
}

type ergastConstructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
}

type ergastResult struct {
	Number       string            `json:"number"`
	Position     string            `json:"position"`
	PositionText string            `json:"positionText"`
	Grid         string            `json:"grid"`
	Status       string            `json:"status"`
	Driver       ergastDriver      `json:"Driver"`
	Constructor  ergastConstructor `json:"Constructor"`
	FastestLap   *struct {
		Time struct {
			Time string `json:"time"`
		} `json:"Time"`
	} `json:"FastestLap"`
}

type ergastQualifying struct {
	Number      string            `json:"number"`
	Position    string            `json:"position"`
	Driver      ergastDriver      `json:"Driver"`
	Constructor ergastConstructor `json:"Constructor"`
	Q1          string            `json:"Q1"`
	Q2          string            `json:"Q2"`
	Q3          string            `json:"Q3"`
}

// Schedule lists the season's races.
func (p *ErgastProvider) Schedule(ctx context.Context, season int) ([]Event, error) {
	races, err := p.races(ctx, fmt.Sprintf("%d.json", season))
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(races))
	for _, r := range races {
		round, err := strconv.Atoi(r.Round)
		if err != nil || round < 1 {
			return nil, fmt.Errorf("%w: season %d: bad round %q", ErrUpstream, season, r.Round)
		}
		out = append(out, Event{Key: model.RaceKey{Season: season, Round: round}, Name: r.RaceName})
	}
	return out, nil
}

// RaceResults returns the race classification.
func (p *ErgastProvider) RaceResults(ctx context.Context, ev Event) ([]RaceEntry, error) {
	races, err := p.races(ctx, fmt.Sprintf("%d/%d/results.json", ev.Key.Season, ev.Key.Round))
	if err != nil || len(races) == 0 {
		return nil, err
	}
	out := make([]RaceEntry, 0, len(races[0].Results))
	for _, r := range races[0].Results {
		e := RaceEntry{
			DriverNumber:    atoi(r.Number),
			DriverCode:      r.Driver.Code,
			ConstructorID:   r.Constructor.ConstructorID,
			ConstructorName: r.Constructor.Name,
			Grid:            atoi(r.Grid),
			Status:          r.Status,
		}
		// positionText is R, D, W... for unclassified drivers
		if _, err := strconv.Atoi(r.PositionText); err == nil {
			e.Position = atoi(r.Position)
		}
		if r.FastestLap != nil {
			e.FastestLap = r.FastestLap.Time.Time
		}
		out = append(out, e)
	}
	return out, nil
}

// QualifyingResults returns the qualifying classification.
func (p *ErgastProvider) QualifyingResults(ctx context.Context, ev Event) ([]QualifyingEntry, error) {
	races, err := p.races(ctx, fmt.Sprintf("%d/%d/qualifying.json", ev.Key.Season, ev.Key.Round))
	if err != nil || len(races) == 0 {
		return nil, err
	}
	out := make([]QualifyingEntry, 0, len(races[0].QualifyingResults))
	for _, q := range races[0].QualifyingResults {
		out = append(out, QualifyingEntry{
			DriverNumber:  atoi(q.Number),
			DriverCode:    q.Driver.Code,
			ConstructorID: q.Constructor.ConstructorID,
			Position:      atoi(q.Position),
			Q1:            q.Q1,
			Q2:            q.Q2,
			Q3:            q.Q3,
		})
	}
	return out, nil
}

func (p *ErgastProvider) races(ctx context.Context, path string) ([]ergastRace, error) {
	url := p.baseURL + "/" + path + "?limit=" + pageLimit
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: GET %s: %s: %s", ErrUpstream, url, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload ergastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrUpstream, url, err)
	}
	return payload.MRData.RaceTable.Races, nil
}

// atoi maps unparseable numbers to zero, the "unknown" position.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
