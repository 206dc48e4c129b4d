package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	Title      string
	Done       bool
	Selected   bool
	Editing    bool
	EditorView string
}

type ListSectionData struct {
	Name       string
	Collapsed  bool
	Selected   bool
	Renaming   bool
	Creating   bool
	EditorView string
	DoneCount  int
	TotalCount int
	// VisibleRows limits rendered task rows while a collapse or expand
	// transition is in flight. -1 renders all rows.
	VisibleRows int
	Tasks       []TaskRowData
}

type ListPanelData struct {
	Sections       []ListSectionData
	CreatingList   bool
	ListEditorView string
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	for i, section := range data.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderSection(section))
	}
	if data.CreatingList {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("+ " + data.ListEditorView)
	}
	if b.Len() == 0 {
		b.WriteString("no lists yet — press N to create one")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSection(section ListSectionData) string {
	var b strings.Builder

	marker := "▾"
	if section.Collapsed {
		marker = "▸"
	}
	cursor := "  "
	if section.Selected {
		cursor = "> "
	}
	if section.Renaming {
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, marker, section.EditorView))
	} else {
		b.WriteString(fmt.Sprintf("%s%s %s (%d/%d)\n", cursor, marker, section.Name, section.DoneCount, section.TotalCount))
	}

	rows := section.Tasks
	if section.VisibleRows >= 0 && section.VisibleRows < len(rows) {
		rows = rows[:section.VisibleRows]
	}
	if !section.Collapsed || section.VisibleRows > 0 {
		for _, task := range rows {
			b.WriteString(renderTaskRow(task))
		}
		if section.Creating {
			b.WriteString("    + " + section.EditorView + "\n")
		}
	}
	return b.String()
}

func renderTaskRow(task TaskRowData) string {
	cursor := "    "
	if task.Selected {
		cursor = "  > "
	}
	box := "[ ]"
	if task.Done {
		box = "[x]"
	}
	if task.Editing {
		return fmt.Sprintf("%s%s %s\n", cursor, box, task.EditorView)
	}
	return fmt.Sprintf("%s%s %s\n", cursor, box, task.Title)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

type HelpPanelData struct {
	Markdown string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	return strings.TrimSpace(RenderMarkdown(data.Markdown) + "\n" + data.HelpView)
}
