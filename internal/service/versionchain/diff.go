package versionchain

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"lexdesk/internal/domain/models"
)

// DiffLines compares two version bodies line by line.
func DiffLines(from, to string) (lines []models.DiffLine, insertions, deletions int) {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	for _, d := range diffs {
		op := models.DiffOpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = models.DiffOpInsert
		case diffmatchpatch.DiffDelete:
			op = models.DiffOpDelete
		}

		// one hunk may span several lines; split so clients can render per line
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			lines = append(lines, models.DiffLine{Op: op, Text: strings.TrimSuffix(text, "\n")})
			switch op {
			case models.DiffOpInsert:
				insertions++
			case models.DiffOpDelete:
				deletions++
			}
		}
	}
	return lines, insertions, deletions
}
