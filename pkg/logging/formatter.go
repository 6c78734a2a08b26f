package logging

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SourceFormatter adds the caller as a short "file.go:line" field and
// delegates the rest to Underlying.
type SourceFormatter struct {
	Underlying logrus.Formatter
	// AddSpace appends an empty line after every entry, handy for the text format.
	AddSpace bool
}

func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Data["x_file_source"] = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	formatted, err := f.Underlying.Format(entry)
	if err != nil {
		return nil, err
	}
	if f.AddSpace {
		formatted = append(formatted, '\n')
	}
	return formatted, nil
}
