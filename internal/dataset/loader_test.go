package dataset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabstat/internal/stats"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const songsCSV = `title,popularity,explicit,genre,duration
One,10,true,rock,3.5
Two,20,FALSE,pop,
Three,,True,rock,4.0
Four,40,false,,2.0
`

func TestLoadCSVInfersKinds(t *testing.T) {
	p := writeFile(t, "songs.csv", songsCSV)
	tab, err := Load(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tab.Name != "songs.csv" || tab.Rows != 4 {
		t.Fatalf("unexpected table header: name=%q rows=%d", tab.Name, tab.Rows)
	}
	want := map[string]stats.Kind{
		"title":      stats.KindText,
		"popularity": stats.KindNumeric,
		"explicit":   stats.KindBool,
		"genre":      stats.KindText,
		"duration":   stats.KindNumeric,
	}
	for col, k := range want {
		if got := tab.Data[col].Kind(); got != k {
			t.Fatalf("column %s kind=%s want %s", col, got, k)
		}
	}
	if strings.Join(tab.Columns, ",") != "title,popularity,explicit,genre,duration" {
		t.Fatalf("header order lost: %v", tab.Columns)
	}
	if tab.Missing["popularity"] != 1 || tab.Missing["duration"] != 1 || tab.Missing["genre"] != 1 {
		t.Fatalf("missing counts wrong: %v", tab.Missing)
	}
	if _, err := stats.New(tab.Data, nil); err != nil {
		t.Fatalf("loaded table must form a valid engine: %v", err)
	}
	pop, _ := tab.Data["popularity"].Floats()
	if pop[2] != 0 {
		t.Fatalf("missing numeric cell should take default 0, got %v", pop[2])
	}
}

func TestLoadCSVLocaleAndDelimiter(t *testing.T) {
	p := writeFile(t, "eu.csv", "group;amount;score\nA;1.000,5;10,0\nB;2.500,0;9,5\n")
	tab, err := Load(context.Background(), p, Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	amount, ok := tab.Data["amount"].Floats()
	if !ok || amount[0] != 1000.5 || amount[1] != 2500 {
		t.Fatalf("amount parsed wrong: %v", amount)
	}
	score, _ := tab.Data["score"].Floats()
	if score[1] != 9.5 {
		t.Fatalf("score parsed wrong: %v", score)
	}
}

func TestLoadTSVSniffsTab(t *testing.T) {
	p := writeFile(t, "data.tsv", "a\tb\n1\tx\n2\ty\n")
	tab, err := Load(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tab.Columns) != 2 || tab.Data["a"].Kind() != stats.KindNumeric {
		t.Fatalf("tsv not split on tabs: %v", tab.Columns)
	}
}

func TestStrictPolicyFails(t *testing.T) {
	p := writeFile(t, "bad.csv", "n,label\n1,a\nx,b\n")
	opt := Options{Schema: map[string]stats.Kind{"n": stats.KindNumeric}, Policy: PolicyStrict}
	_, err := Load(context.Background(), p, opt)
	var ce *CoerceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CoerceError, got %v", err)
	}
	if ce.Row != 2 || ce.Column != "n" || ce.Value != "x" {
		t.Fatalf("unexpected coerce error: %+v", ce)
	}
}

func TestDefaultPolicySubstitutes(t *testing.T) {
	p := writeFile(t, "bad.csv", "n,flag\n1,true\nx,maybe\n3,false\n")
	opt := Options{
		Schema:         map[string]stats.Kind{"n": stats.KindNumeric, "flag": stats.KindBool},
		NumericDefault: -1,
	}
	tab, err := Load(context.Background(), p, opt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	n, _ := tab.Data["n"].Floats()
	if n[1] != -1 {
		t.Fatalf("expected numeric default, got %v", n)
	}
	if got := tab.Data["flag"].Value(1); got != stats.Bool(false) {
		t.Fatalf("expected bool default false, got %v", got)
	}
	if len(tab.Warnings) != 2 {
		t.Fatalf("expected a warning per column, got %v", tab.Warnings)
	}
}

func TestSchemaForcesText(t *testing.T) {
	p := writeFile(t, "zip.csv", "zip\n01000\n02000\n")
	tab, err := Load(context.Background(), p, Options{Schema: map[string]stats.Kind{"zip": stats.KindText}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := tab.Data["zip"].Value(0); got != stats.Str("01000") {
		t.Fatalf("text kind should keep raw cell, got %v", got)
	}
}

func TestHeadersMadeUnique(t *testing.T) {
	got := uniqueHeaders([]string{"name", "", "name", "name__2", " x "})
	want := []string{"name", "col_2", "name__2", "name__2__2", "x"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("uniqueHeaders=%v want %v", got, want)
	}
}

func TestMaxRowsAndShortRows(t *testing.T) {
	p := writeFile(t, "short.csv", "a,b,c\n1,2\n3,4,5\n6,7,8\n")
	tab, err := Load(context.Background(), p, Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tab.Rows != 2 || tab.Data["c"].Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tab.Rows)
	}
	if tab.Missing["c"] != 1 {
		t.Fatalf("padded cell should count as missing: %v", tab.Missing)
	}
}

func TestEmptyFile(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	tab, err := Load(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tab.Rows != 0 || len(tab.Columns) != 0 {
		t.Fatalf("expected empty table, got %+v", tab)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	p := writeFile(t, "data.parquet", "PAR1")
	_, err = Load(context.Background(), p, Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	p := writeFile(t, "songs.csv", songsCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, p, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"1,000.5", Options{}, 1000.5, true},
		{"1.000,5", Options{}, 1000.5, true},
		{"12%", Options{}, 12, true},
		{"1e3", Options{}, 1000, true},
		{"1 234,5", Options{DecimalSeparator: ',', ThousandsSeparator: ' '}, 1234.5, true},
		{"NaN", Options{}, 0, false},
		{"inf", Options{}, 0, false},
		{"abc", Options{}, 0, false},
		{"", Options{}, 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in, c.opt)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("parseNumeric(%q)=%v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"note"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		{"group", "value", "ok"},
		{"A", 1.5, "TRUE"},
		{"B", 2.5, "false"},
		{"A", 4, "true"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Data", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	return p
}

func TestLoadXLSXBySheetNameAndIndex(t *testing.T) {
	p := writeWorkbook(t)

	tab, err := Load(context.Background(), p, Options{Sheet: "data"})
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	if tab.Rows != 3 || tab.Data["value"].Kind() != stats.KindNumeric || tab.Data["ok"].Kind() != stats.KindBool {
		t.Fatalf("unexpected table: rows=%d kinds=%v", tab.Rows, tab.Kinds())
	}
	vals, _ := tab.Data["value"].Floats()
	if vals[2] != 4 {
		t.Fatalf("value column wrong: %v", vals)
	}

	byIdx, err := Load(context.Background(), p, Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("load by index: %v", err)
	}
	if byIdx.Rows != tab.Rows {
		t.Fatalf("index 2 should select Data sheet, got %d rows", byIdx.Rows)
	}

	first, err := Load(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if len(first.Columns) != 1 || first.Columns[0] != "note" {
		t.Fatalf("default should read first sheet, got %v", first.Columns)
	}
}

func TestLoadXLSXUnknownSheetListsAvailable(t *testing.T) {
	p := writeWorkbook(t)
	_, err := Load(context.Background(), p, Options{Sheet: "Missing"})
	if err == nil || !strings.Contains(err.Error(), "Available sheets: Sheet1, Data") {
		t.Fatalf("expected available sheets in error, got %v", err)
	}
	_, err = Load(context.Background(), p, Options{SheetIndex: 5})
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range, got %v", err)
	}
}
