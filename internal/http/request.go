package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moneta/internal/core"
	"moneta/internal/period"
	"moneta/internal/session"
)

// userIDHeader carries the opaque user id. Whoever fronts this API owns
// authentication; the server only scopes data by the id it is handed.
const userIDHeader = "X-User-ID"

var errMissingUser = errors.New("missing " + userIDHeader + " header")

func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(userIDHeader))
	if id == "" {
		return "", errMissingUser
	}
	return id, nil
}

// viewState builds the session state from the user header and the optional
// granularity, anchor and search query parameters. Missing parameters fall
// back to the current monthly period.
func viewState(r *http.Request) (session.State, error) {
	id, err := userID(r)
	if err != nil {
		return session.State{}, err
	}

	state := session.New(id, core.DateOf(time.Now()))

	if v := strings.TrimSpace(r.URL.Query().Get("granularity")); v != "" {
		g, err := period.Parse(v)
		if err != nil {
			return session.State{}, err
		}
		state = state.WithGranularity(g)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("anchor")); v != "" {
		anchor, err := core.ParseDate(v)
		if err != nil {
			return session.State{}, fmt.Errorf("%w: bad anchor date %q", core.ErrValidation, v)
		}
		state.Anchor = period.StartOf(state.Granularity, anchor)
	}
	state = state.WithSearch(r.URL.Query().Get("search"))

	return state, nil
}

// cacheKey identifies one user's view for the read caches.
func cacheKey(state session.State) string {
	return state.UserID + "|" + string(state.Granularity) + "|" + state.Anchor.ISO() + "|" + strings.ToLower(state.Search)
}

// decodeJSON reads a JSON request body into dst, limiting the body size and
// rejecting payloads that fail to parse.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", core.ErrValidation, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed json: %v", core.ErrValidation, err)
	}
	return nil
}

// readBody returns the raw request body for import and restore payloads.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", core.ErrImport, err)
	}
	return body, nil
}
