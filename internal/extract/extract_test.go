package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"curator/internal/services"
)

func TestTextPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("  hello\n\n  world  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Text(path, 100)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("text = %q", got)
	}
}

func TestTextTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("word ", 1000)), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Text(path, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 20 {
		t.Fatalf("truncated length = %d", len(got))
	}
}

func TestTextRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.txt")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Text(path, 100); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestTextUnsupportedExtension(t *testing.T) {
	_, err := Text("/tmp/file.exe", 100)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("err = %v, want services.ErrUnsupported tag", err)
	}
}

func TestForFileDispatch(t *testing.T) {
	cases := map[string]bool{
		"a.txt":  true,
		"a.pdf":  true,
		"a.xlsx": true,
		"a.md":   true,
		"a.zip":  false,
		"a.jpg":  false,
	}
	for name, supported := range cases {
		_, err := ForFile(name)
		if supported && err != nil {
			t.Errorf("ForFile(%q) = %v, want supported", name, err)
		}
		if !supported && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ForFile(%q) = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestXLSXExtraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	if err := workbook.SetCellValue(sheet, "A1", "invoice"); err != nil {
		t.Fatal(err)
	}
	if err := workbook.SetCellValue(sheet, "B1", "total 42"); err != nil {
		t.Fatal(err)
	}
	if err := workbook.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = workbook.Close()

	got, err := Text(path, 200)
	if err != nil {
		t.Fatalf("extract xlsx: %v", err)
	}
	if !strings.Contains(got, "invoice") || !strings.Contains(got, "total 42") {
		t.Fatalf("text = %q", got)
	}
}
