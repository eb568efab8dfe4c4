package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// NoteForm is the edit buffer for creating or editing a note.
type NoteForm struct {
	Title    string
	Content  string
	Category string
	Tags     string
	EditID   string

	// Informational flags recorded at creation time.
	HasVoiceInput bool
	HasSummary    bool
}

// NewNoteForm returns an empty note buffer.
func NewNoteForm() *NoteForm {
	return &NoteForm{}
}

// Validate checks the required fields without touching the store.
func (f *NoteForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &core.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(f.Content) == "" {
		return &core.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return nil
}

// Draft converts the buffer into a write payload.
func (f *NoteForm) Draft() core.NoteDraft {
	return core.NoteDraft{
		Title:         f.Title,
		Content:       f.Content,
		Category:      f.Category,
		Tags:          NormalizeTags(f.Tags),
		HasVoiceInput: f.HasVoiceInput,
		HasSummary:    f.HasSummary,
	}
}

// Load begins an edit session for an existing note.
func (f *NoteForm) Load(n core.Note) {
	f.Title = n.Title
	f.Content = n.Content
	f.Category = n.Category
	f.Tags = JoinTags(n.Tags)
	f.EditID = n.ID
}

// Reset clears the buffer after a successful save.
func (f *NoteForm) Reset() {
	*f = NoteForm{}
}

// WordCount is the live word count of the content buffer. The persisted
// count is fixed at save time; this one follows every keystroke.
func (f *NoteForm) WordCount() int {
	return core.WordCount(f.Content)
}

// AppendDictation adds a final speech fragment followed by a single space.
func (f *NoteForm) AppendDictation(fragment string) {
	f.Content += fragment + " "
	f.HasVoiceInput = true
}

// InsertAt splices text into the content buffer at the given offset and
// returns the new cursor position. Out-of-range offsets clamp to the ends.
func (f *NoteForm) InsertAt(pos int, text string) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(f.Content) {
		pos = len(f.Content)
	}
	f.Content = f.Content[:pos] + text + f.Content[pos:]
	return pos + len(text)
}

// InsertDateTime appends the current date and time as a bold marker.
func (f *NoteForm) InsertDateTime(now time.Time) {
	f.Content += fmt.Sprintf("\n**%s**\n", now.Format("2006-01-02 15:04"))
}

// InsertTable appends an empty three-column Markdown table.
func (f *NoteForm) InsertTable() {
	f.Content += "\n| Header 1 | Header 2 | Header 3 |\n|----------|----------|----------|\n| Cell 1   | Cell 2   | Cell 3   |\n| Cell 4   | Cell 5   | Cell 6   |\n\n"
}

// InsertLink appends a Markdown link; empty text falls back to the URL.
func (f *NoteForm) InsertLink(url, text string) {
	if url == "" {
		return
	}
	if text == "" {
		text = url
	}
	f.Content += fmt.Sprintf("[%s](%s)", text, url)
}

// InsertSummary appends a generated summary under its own heading and marks
// the note as summarized.
func (f *NoteForm) InsertSummary(summary string) {
	if summary == "" {
		return
	}
	f.Content += "\n\n## AI Summary\n\n" + summary + "\n\n"
	f.HasSummary = true
}

// ApplyTemplate replaces the content with a named scaffold.
// Returns false for an unknown template name.
func (f *NoteForm) ApplyTemplate(name string, now time.Time) bool {
	tpl, ok := NoteTemplates[name]
	if !ok {
		return false
	}
	f.Content = tpl(now)
	return true
}
