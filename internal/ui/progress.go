package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar wraps the progressbar library with our styling
type ProgressBar struct {
	bar        *progressbar.ProgressBar
	startTime  time.Time
	totalBytes int64
}

// NewProgressBar creates a new progress bar for downloads
func NewProgressBar(totalBytes int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		totalBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	return &ProgressBar{
		bar:        bar,
		startTime:  time.Now(),
		totalBytes: totalBytes,
	}
}

// Update updates the progress bar with current bytes
func (p *ProgressBar) Update(currentBytes int64) {
	p.bar.Set64(currentBytes)
}

// UpdateWithRate updates with the current transfer rate and ETA
func (p *ProgressBar) UpdateWithRate(currentBytes int64, bytesPerSecond float64) {
	desc := fmt.Sprintf("Downloading [%.1f MB/s | ETA: %s]",
		bytesPerSecond/(1024*1024), FormatETA(p.totalBytes-currentBytes, bytesPerSecond))

	p.bar.Describe(desc)
	p.bar.Set64(currentBytes)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

// FormatBytes formats bytes into human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration into human readable format
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// FormatETA calculates and formats estimated time of arrival
func FormatETA(bytesRemaining int64, bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return "calculating..."
	}

	seconds := float64(bytesRemaining) / bytesPerSecond
	return FormatDuration(time.Duration(seconds) * time.Second)
}

// TruncateString truncates a string with ellipsis
func TruncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// PadRight pads a string to the right
func PadRight(str string, length int) string {
	if len(str) >= length {
		return str
	}
	return str + strings.Repeat(" ", length-len(str))
}
