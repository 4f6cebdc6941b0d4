// Package render formats the queue and the current task for display.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dsjohal14/taskpop/internal/scope/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// FormatTask formats one queue entry: "<description>  •  (<priority>)"
func FormatTask(t tasks.Task) string {
	return fmt.Sprintf("%s  •  (%d)", t.Description, t.Priority)
}

// FormatCurrent formats the task being worked on: "▶ Now doing: <description>"
func FormatCurrent(t tasks.Task) string {
	return "▶ Now doing: " + t.Description
}

// WriteQueue writes one formatted line per task
func WriteQueue(w io.Writer, queue []tasks.Task) error {
	for _, t := range queue {
		if _, err := fmt.Fprintln(w, FormatTask(t)); err != nil {
			return err
		}
	}
	return nil
}

// Table renders the queue as a rounded table, with colours when color is set
func Table(queue []tasks.Task, color bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if color {
		tw.SetStyle(table.StyleColoredBright)
	}
	tw.AppendHeader(table.Row{"#", "Priority", "Description", "ID"})

	for i, t := range queue {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), strconv.Itoa(t.Priority), t.Description, t.ID})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// Colorize reports whether w is a terminal that can show styled output
func Colorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
