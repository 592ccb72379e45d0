package report

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/minios-linux/strkit/i18n"
	"github.com/minios-linux/strkit/langmeta"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Progress tracks per-language translation progress. On a terminal it draws
// a progress bar; otherwise each update becomes a log line.
type Progress struct {
	w           io.Writer
	interactive bool
	logf        func(format string, args ...any)
	bar         *progressbar.ProgressBar
}

// NewProgress returns a Progress writing to w. logf receives the
// non-interactive updates.
func NewProgress(w io.Writer, interactive bool, logf func(format string, args ...any)) *Progress {
	if logf == nil {
		logf = func(format string, args ...any) {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}
	return &Progress{w: w, interactive: interactive, logf: logf}
}

// Update matches translate.Options.OnProgress.
func (p *Progress) Update(lang string, done, total int) {
	if total == 0 {
		return
	}
	if !p.interactive {
		if done == 0 {
			p.logf("%s: "+i18n.N("%d text to translate", "%d texts to translate", total), langmeta.Resolve(lang).Label(), total)
			return
		}
		p.logf("%s: %d/%d", lang, done, total)
		return
	}

	if done == 0 || p.bar == nil {
		p.finish()
		p.bar = newBar(p.w, lang, total)
	}
	_ = p.bar.Set(done)
	if done >= total {
		p.finish()
	}
}

// Close finishes a bar left open by a cancelled run.
func (p *Progress) Close() {
	p.finish()
}

func (p *Progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
	p.bar = nil
}

func newBar(w io.Writer, lang string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", langmeta.Resolve(lang).Label())),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
