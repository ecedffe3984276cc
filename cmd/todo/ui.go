package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayush/todolist/backend/internal/client"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	pendingCheck = "[ ]"
	doneCheck    = okStyle.Render("[x]")
)

func ok(msg string) {
	fmt.Println(okStyle.Render("✔ " + msg))
}

func warn(msg string) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("! "+msg))
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, failStyle.Render("✖ "+msg))
}

// renderList draws the list with 1-based indexes, as used by done/edit/rm.
func renderList(todos []client.Todo, signedIn bool) string {
	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	source := "local"
	if signedIn {
		source = "synced"
	}

	lines := []string{
		titleStyle.Render("My Todo List") + mutedStyle.Render(fmt.Sprintf("  %d/%d done · %s", done, len(todos), source)),
		"",
	}
	if len(todos) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing to do. Add one with `todo add \"Buy milk\"`"))
	}
	for i, t := range todos {
		check, text := pendingCheck, t.Text
		if t.Completed {
			check, text = doneCheck, doneStyle.Render(t.Text)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", mutedStyle.Render(fmt.Sprintf("%2d.", i+1)), check, text))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
