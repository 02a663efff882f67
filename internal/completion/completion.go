// Package completion defines the Host Completion Provider collaborator
// (spec §6): classifying a completion site and asking the embedding host
// for candidates. Filename globbing and available-command enumeration are
// explicitly delegated to the host (spec §1's non-goals), so this package
// only carries the interface and the value types the line editor needs.
//
// SiteCommand and SiteFilename are grounded directly on the original
// product's host callback pair: available_commands(prefix) for command-
// name candidates and expand_filenames(pattern) for filename candidates.
// Provider.Complete folds both into one call because the line editor only
// ever needs one site's candidates per Tab press.
package completion

// Site classifies what kind of token is being completed, per spec §4.3.
type Site int

const (
	SiteCommand Site = iota
	SiteOption
	SiteFilename
)

// Info describes a completion attempt: the classified site, the text
// range in the buffer that would be replaced, and the matched pattern
// text.
type Info struct {
	Site    Site
	Start   int // character offset in the buffer-before-cursor text
	End     int
	Pattern string
}

// Result is what the host returns for a completion request.
type Result struct {
	Info       Info
	Candidates []string
	// CommonPrefix is a prefix extension shared by every candidate beyond
	// Pattern, or "" if candidates share no further prefix.
	CommonPrefix string
}

// Provider is implemented by the embedding host: given the text of the
// buffer before the cursor, classify the completion site and return
// candidates (spec §4.3/§6).
type Provider interface {
	Complete(beforeCursor string) (Result, error)
}

// NoopProvider never offers completions, used when the host supplies
// none.
type NoopProvider struct{}

// Complete always returns an empty result.
func (NoopProvider) Complete(beforeCursor string) (Result, error) {
	return Result{}, nil
}
