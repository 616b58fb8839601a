// Package ranking orders bookmarks and files.
package ranking

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/shared/util"
	"sort"
	"strings"
)

func bookmarkName(b ports.Bookmark) string {
	if b.Name != "" {
		return b.Name
	}
	return util.BaseName(b.Path)
}

func byName(list []ports.Bookmark) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(bookmarkName(list[i])) < strings.ToLower(bookmarkName(list[j]))
	})
}

// byDate puts the newest bookmark first.
func byDate(list []ports.Bookmark) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })
}
