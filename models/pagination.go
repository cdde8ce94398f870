package models

import (
	"encoding/base64"
	"strconv"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type PageInfo struct {
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
	HasNextPage *bool  `json:"hasNextPage,omitempty"`
}

func EncodeCursor(id int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(id)))
}

// DecodeCursor returns 0 for an absent cursor.
func DecodeCursor(cursor *string) (int, error) {
	if cursor == nil || *cursor == "" {
		return 0, nil
	}
	b, err := base64.StdEncoding.DecodeString(*cursor)
	if err != nil {
		return 0, newValidationError("after", "malformed cursor")
	}
	id, err := strconv.Atoi(string(b))
	if err != nil || id < 0 {
		return 0, newValidationError("after", "malformed cursor")
	}
	return id, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// pageOf trims the look-ahead row and builds PageInfo for id-ordered results.
func pageOf[T any](rows []*T, limit int, idOf func(*T) int) ([]*T, PageInfo) {
	hasNext := len(rows) > limit
	if hasNext {
		rows = rows[:limit]
	}
	info := PageInfo{HasNextPage: &hasNext}
	if len(rows) > 0 {
		info.StartCursor = EncodeCursor(idOf(rows[0]))
		info.EndCursor = EncodeCursor(idOf(rows[len(rows)-1]))
	}
	return rows, info
}
