package xlsx

import (
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	report "profitdesk/internal/report/domain"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBasic(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"订单创建时间", "结算金额", "SKU", "数量"},
		{"2024/1/5", "100.50", "A-1", "2"},
		{"2024/1/20", "$50", "B-2", "1"},
	})
	dataset, err := NewDecoder().Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dataset.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(dataset.Rows))
	}
	if got := dataset.Rows[0]["结算金额"]; got != "100.50" {
		t.Fatalf("amount cell = %q", got)
	}
	want := []string{"订单创建时间", "结算金额", "SKU", "数量"}
	if !reflect.DeepEqual(dataset.Headers, want) {
		t.Fatalf("headers = %v, want %v", dataset.Headers, want)
	}
}

func TestDecodeIdempotent(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"date", "amount"},
		{"2024-01-05", "10"},
		{"2024-01-06", "20"},
	})
	decoder := NewDecoder()
	first, err := decoder.Decode(buf)
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	second, err := decoder.Decode(buf)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decode not idempotent: %+v vs %+v", first, second)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := NewDecoder().Decode([]byte("definitely not a workbook"))
	if !errors.Is(err, report.ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestDecodeHeaderOnlySheet(t *testing.T) {
	buf := buildWorkbook(t, [][]any{{"date", "amount"}})
	dataset, err := NewDecoder().Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dataset.Rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(dataset.Rows))
	}
	if len(dataset.Headers) != 2 {
		t.Fatalf("headers = %v", dataset.Headers)
	}
}

func TestDecodeDuplicateHeaders(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"date", "amount", "amount"},
		{"2024-01-05", "1", "2"},
	})

	if _, err := NewDecoder().Decode(buf); !errors.Is(err, report.ErrDuplicateHeader) {
		t.Fatalf("err = %v, want ErrDuplicateHeader", err)
	}

	dataset, err := NewDecoder(WithDuplicateHeaderOverwrite()).Decode(buf)
	if err != nil {
		t.Fatalf("decode with overwrite: %v", err)
	}
	if got := dataset.Rows[0]["amount"]; got != "2" {
		t.Fatalf("amount = %q, want later column to win", got)
	}
	if !reflect.DeepEqual(dataset.Headers, []string{"date", "amount"}) {
		t.Fatalf("headers = %v", dataset.Headers)
	}
}

func TestDecodeSkipsBlankRows(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"date", "amount"},
		{"2024-01-05", "10"},
		{"", ""},
		{"2024-01-07", "30"},
	})
	dataset, err := NewDecoder().Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dataset.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(dataset.Rows))
	}
}
