package workflow

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"semcheck/internal/domain"
)

// AcceptedExtensions lists the file types the service can extract.
var AcceptedExtensions = []string{".txt", ".docx"}

// Accepts reports whether name has an extractable extension. Only the name
// is checked, never the content.
func Accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AcceptedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// SetText replaces a slot's content. Unknown slots are ignored.
func (o *Orchestrator) SetText(slot domain.Slot, content string) {
	if !slot.Valid() {
		return
	}
	o.state.Slots[slot].Content = content
}

// Text returns a slot's content.
func (o *Orchestrator) Text(slot domain.Slot) string {
	if !slot.Valid() {
		return ""
	}
	return o.state.Slots[slot].Content
}

// ExtractFromFile sends file to the service and, once settled, replaces the
// slot's content with the extracted text. It returns nil when the lock is
// held or file is nil.
func (o *Orchestrator) ExtractFromFile(slot domain.Slot, file *domain.Upload) Call {
	if o.Busy() || !slot.Valid() {
		return nil
	}
	if file == nil {
		o.fail(&ValidationError{Message: MsgNoFile})
		return nil
	}

	gw := o.gateway
	upload := *file
	base := Settlement{Generation: o.begin(domain.OpExtracting), Op: domain.OpExtracting, Mode: o.state.Mode, Slot: slot}
	o.state.Slots[slot].File = upload.Name
	return guard(base, func(ctx context.Context) Settlement {
		s := base
		if c, ok := upload.Body.(io.Closer); ok {
			defer c.Close()
		}
		text, err := gw.Extract(ctx, upload)
		if err != nil {
			s.Err = err
			return s
		}
		s.Text = text
		return s
	})
}

// OpenFile returns an upload for the file at path. The file is opened on
// first read, so errors surface from the Call rather than the caller.
func OpenFile(path string) *domain.Upload {
	return &domain.Upload{Name: filepath.Base(path), Body: &lazyFile{path: path}}
}

type lazyFile struct {
	path   string
	f      *os.File
	done   bool
	closed bool
}

func (l *lazyFile) Read(p []byte) (int, error) {
	if l.done {
		return 0, io.EOF
	}
	if l.f == nil {
		f, err := os.Open(l.path)
		if err != nil {
			l.done = true
			return 0, err
		}
		l.f = f
	}
	n, err := l.f.Read(p)
	if err != nil {
		_ = l.Close()
	}
	return n, err
}

// Close releases the file. A body that was never read opens nothing.
func (l *lazyFile) Close() error {
	l.done = true
	if l.f == nil || l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}
