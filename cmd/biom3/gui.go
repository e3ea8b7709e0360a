package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var guiScript string

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Launch the BioM3 desktop GUI",
	Long: `Launches the Python desktop GUI in the foreground.

The GUI is a separate Python application that drives the same setup,
download and run steps interactively. This command only verifies the
prerequisites and hands over to it; closing the GUI returns control.`,
	RunE: runGUI,
}

func init() {
	rootCmd.AddCommand(guiCmd)

	guiCmd.Flags().StringVar(&guiScript, "script", "biom3_gui.py", "path to the GUI script")
}

func runGUI(cmd *cobra.Command, args []string) error {
	if _, err := exec.LookPath("python3"); err != nil {
		return fmt.Errorf("python3 is not installed. The GUI requires Python 3 with tkinter")
	}

	if _, err := os.Stat(guiScript); err != nil {
		return fmt.Errorf("GUI script not found: %s", guiScript)
	}

	fmt.Printf("Launching BioM3 GUI (%s)...\n", guiScript)

	gui := exec.CommandContext(cmd.Context(), "python3", guiScript)
	gui.Stdin = os.Stdin
	gui.Stdout = os.Stdout
	gui.Stderr = os.Stderr

	if err := gui.Run(); err != nil {
		return fmt.Errorf("GUI exited with error: %w", err)
	}
	return nil
}
