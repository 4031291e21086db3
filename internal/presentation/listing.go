package presentation

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"ibex-go/internal/backup"
)

var (
	deviceStyle    = lipgloss.NewStyle().Bold(true)
	pathStyle      = lipgloss.NewStyle().Faint(true)
	encryptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PrintBackups renders one block per discovered backup. Styling is dropped
// when the writer is not a terminal so the output stays pipe-friendly.
func PrintBackups(w io.Writer, backups []backup.Backup) {
	styled := isTerminal(w)

	if len(backups) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return
	}

	for _, b := range backups {
		device := b.DeviceName
		if device == "" {
			device = "(unnamed device)"
		}
		encrypted := ""
		if b.Encrypted {
			encrypted = "  [encrypted]"
		}

		if styled {
			device = deviceStyle.Render(device)
			if encrypted != "" {
				encrypted = "  " + encryptedStyle.Render("[encrypted]")
			}
		}

		fmt.Fprintf(w, "%s  %s %s%s\n", device, b.ProductType, b.ProductVersion, encrypted)
		if !b.LastBackupDate.IsZero() {
			fmt.Fprintf(w, "  last backup: %s\n", b.LastBackupDate.Format("2006-01-02 15:04:05"))
		}
		path := b.Path
		if styled {
			path = pathStyle.Render(path)
		}
		fmt.Fprintf(w, "  %s\n", path)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
