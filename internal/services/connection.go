package services

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/soundscene/accounts/internal/apperr"
	"github.com/soundscene/accounts/internal/models"
)

// Relay-style offset cursors over an already-ordered result set.
const cursorPrefix = "arrayconnection:"

type Edge struct {
	Node   models.User `json:"node"`
	Cursor string      `json:"cursor"`
}

type PageInfo struct {
	HasNextPage     bool   `json:"has_next_page"`
	HasPreviousPage bool   `json:"has_previous_page"`
	StartCursor     string `json:"start_cursor,omitempty"`
	EndCursor       string `json:"end_cursor,omitempty"`
}

type Connection struct {
	Edges      []Edge   `json:"edges"`
	PageInfo   PageInfo `json:"page_info"`
	TotalCount int      `json:"total_count"`
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s%d", cursorPrefix, offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}
	s := string(raw)
	if !strings.HasPrefix(s, cursorPrefix) {
		return 0, fmt.Errorf("unexpected cursor payload %q", s)
	}
	return strconv.Atoi(strings.TrimPrefix(s, cursorPrefix))
}

// Connect slices an ordered user list into a cursor page. first <= 0
// means no limit; an empty after starts from the beginning. Because
// the ordering always carries the id tiebreaker, the same cursor maps
// to the same record across requests.
func Connect(users []models.User, first int, after string) (*Connection, error) {
	start := 0
	if after != "" {
		offset, err := decodeCursor(after)
		if err != nil || offset < 0 {
			return nil, apperr.New(apperr.CodeBadUserInput, "Invalid pagination cursor.")
		}
		start = offset + 1
	}
	if start > len(users) {
		start = len(users)
	}

	end := len(users)
	if first > 0 && start+first < end {
		end = start + first
	}

	conn := &Connection{
		Edges:      make([]Edge, 0, end-start),
		TotalCount: len(users),
	}
	for i := start; i < end; i++ {
		conn.Edges = append(conn.Edges, Edge{Node: users[i], Cursor: encodeCursor(i)})
	}
	conn.PageInfo = PageInfo{
		HasNextPage:     end < len(users),
		HasPreviousPage: start > 0,
	}
	if len(conn.Edges) > 0 {
		conn.PageInfo.StartCursor = conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = conn.Edges[len(conn.Edges)-1].Cursor
	}
	return conn, nil
}
