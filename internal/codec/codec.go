// Package codec converts the JSON columns and search patterns shared by the
// storage backends.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meikuraledutech/quizgraph"
)

// Images encodes an image list, never producing null.
func Images(images []quizgraph.FileEntity) json.RawMessage {
	if images == nil {
		images = []quizgraph.FileEntity{}
	}
	b, _ := json.Marshal(images)
	return b
}

// DecodeImages is the inverse of Images. Empty input decodes to an empty list.
func DecodeImages(raw []byte) ([]quizgraph.FileEntity, error) {
	images := []quizgraph.FileEntity{}
	if len(raw) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("quizgraph: decode images: %w", err)
	}
	if images == nil {
		images = []quizgraph.FileEntity{}
	}
	return images, nil
}

// Icon encodes an optional icon; nil stays nil so the column can be NULL.
func Icon(icon *quizgraph.FileEntity) json.RawMessage {
	if icon == nil {
		return nil
	}
	b, _ := json.Marshal(icon)
	return b
}

func DecodeIcon(raw []byte) (*quizgraph.FileEntity, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var icon quizgraph.FileEntity
	if err := json.Unmarshal(raw, &icon); err != nil {
		return nil, fmt.Errorf("quizgraph: decode icon: %w", err)
	}
	return &icon, nil
}

// IDs encodes a list of ids, never producing null.
func IDs(ids []string) json.RawMessage {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return b
}

func DecodeIDs(raw []byte) ([]string, error) {
	ids := []string{}
	if len(raw) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("quizgraph: decode ids: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Groups encodes treatment groups, never producing null.
func Groups(groups [][]string) json.RawMessage {
	out := make([][]string, len(groups))
	for i, g := range groups {
		if g == nil {
			g = []string{}
		}
		out[i] = g
	}
	b, _ := json.Marshal(out)
	return b
}

func DecodeGroups(raw []byte) ([][]string, error) {
	groups := [][]string{}
	if len(raw) == 0 {
		return groups, nil
	}
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("quizgraph: decode treatment groups: %w", err)
	}
	if groups == nil {
		groups = [][]string{}
	}
	return groups, nil
}

// Unique returns the distinct ids of groups in first-seen order.
func Unique(groups ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		for _, id := range g {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Result assembles a result from its stored columns. A nil id means the answer
// has no result row.
func Result(id *string, problemIDs, groups []byte) (*quizgraph.Result, error) {
	if id == nil {
		return nil, nil
	}
	pids, err := DecodeIDs(problemIDs)
	if err != nil {
		return nil, err
	}
	g, err := DecodeGroups(groups)
	if err != nil {
		return nil, err
	}
	return &quizgraph.Result{ID: *id, ProblemIDs: pids, TreatmentGroups: g}, nil
}

// NewResult returns an empty result with the given id.
func NewResult(id string) *quizgraph.Result {
	return &quizgraph.Result{ID: id, ProblemIDs: []string{}, TreatmentGroups: [][]string{}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Like returns a LIKE pattern matching search anywhere, with \ as the escape
// character, so "%" and "_" in search match literally.
func Like(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
