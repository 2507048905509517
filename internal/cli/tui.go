package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// flowFile is one entry in the interactive picker.
type flowFile struct {
	Name string
	Size int64
}

// FlowPickerModel is the bubbletea model for interactive flow document selection.
type FlowPickerModel struct {
	Files    []flowFile
	Cursor   int
	Selected string
}

// NewFlowPickerModel creates a picker over the given files.
func NewFlowPickerModel(files []flowFile) FlowPickerModel {
	return FlowPickerModel{Files: files}
}

func (m FlowPickerModel) Init() tea.Cmd {
	return nil
}

func (m FlowPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Files[m.Cursor].Name
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FlowPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Flow Document"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Files {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-30s  %s", cursor, f.Name, listDimStyle.Render(formatSize(f.Size)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))
	return b.String()
}

// pickFlowFile runs the interactive picker over the JSON files in dir.
func pickFlowFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var files []flowFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, flowFile{Name: e.Name(), Size: info.Size()})
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no flow documents (*.json) found in %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	final, err := tea.NewProgram(NewFlowPickerModel(files)).Run()
	if err != nil {
		return "", err
	}
	model, ok := final.(FlowPickerModel)
	if !ok || model.Selected == "" {
		return "", fmt.Errorf("no flow document selected")
	}
	return filepath.Join(dir, model.Selected), nil
}

// formatSize renders a file size for the picker.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
