package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/disiqueira/gotree/v3"
	"github.com/olekukonko/tablewriter"

	"github.com/zach2017/oldtownaltour/internal/models"
)

const descriptionWidth = 48

func renderLocations(w io.Writer, locations []models.Location) error {
	table := tablewriter.NewTable(w)
	table.Header("ID", "Beacon", "Name", "Description", "Audio", "Video", "Text")

	for _, l := range locations {
		err := table.Append(
			l.LocationID,
			l.BeaconID,
			l.Name,
			truncate(l.Description, descriptionWidth),
			strconv.Itoa(len(l.AudioFiles)),
			strconv.Itoa(len(l.VideoFiles)),
			strconv.Itoa(len(l.TextFiles)),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func renderStats(w io.Writer, s models.Stats) error {
	table := tablewriter.NewTable(w)
	table.Header("Locations", "Audio Files", "Video Files", "Text Files")
	if err := table.Append(strconv.Itoa(s.Locations), strconv.Itoa(s.AudioFiles), strconv.Itoa(s.VideoFiles), strconv.Itoa(s.TextFiles)); err != nil {
		return err
	}
	return table.Render()
}

// locationTree draws a location with one branch per media category.
func locationTree(l models.Location) string {
	root := gotree.New(fmt.Sprintf("%s  %s (%s)", l.LocationID, l.Name, l.BeaconID))
	if l.Description != "" {
		root.Add(l.Description)
	}
	root.Add("created " + l.CreatedAt.UTC().Format("2006-01-02 15:04:05"))

	for _, c := range models.Categories {
		files := *l.Files(c)
		branch := root.Add(fmt.Sprintf("%s (%d)", c, len(files)))
		for _, f := range files {
			label := fmt.Sprintf("%s  %s  %s", f.FileID, f.Filename, humanSize(f.Size))
			if f.Retained() {
				label += "  [inline]"
			}
			branch.Add(label)
		}
	}
	return root.Print()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
