package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(ctx context.Context, path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(ctx, filepath.Base(path), f, delimiterFor(path, opt), opt)
}

// ReadCSV reads delimited text from r. The first record is the header.
func ReadCSV(ctx context.Context, name string, r io.Reader, delim rune, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim
	next := func() ([]string, bool, error) {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	return readTable(ctx, name, next, opt)
}

func delimiterFor(path string, opt Options) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	return sniffDelimiter(path)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
