package sanmoves

import "testing"

func TestFormatLineFromStart(t *testing.T) {
	got, err := New().FormatLine(nil, []string{"e2e4", "e7e5", "g1f3"})
	if err != nil {
		t.Fatalf("FormatLine: %v", err)
	}
	if got != "e4 e5 Nf3" {
		t.Errorf("line = %q, want %q", got, "e4 e5 Nf3")
	}
}

func TestFormatLineAfterHistory(t *testing.T) {
	history := []string{"e2e4", "e7e5"}
	got, err := New().FormatLine(history, []string{"g1f3", "b8c6"})
	if err != nil {
		t.Fatalf("FormatLine: %v", err)
	}
	if got != "Nf3 Nc6" {
		t.Errorf("line = %q, want %q", got, "Nf3 Nc6")
	}
}

func TestFormatLineCaptureAndCheck(t *testing.T) {
	history := []string{"e2e4", "d7d5"}
	got, err := New().FormatLine(history, []string{"e4d5", "d8d5"})
	if err != nil {
		t.Fatalf("FormatLine: %v", err)
	}
	if got != "exd5 Qxd5" {
		t.Errorf("line = %q, want %q", got, "exd5 Qxd5")
	}
}

func TestFormatLinePromotion(t *testing.T) {
	history := []string{
		"h2h4", "g7g5", "h4g5", "g8f6", "g5g6", "f6e4", "g6g7", "e4c3",
	}
	got, err := New().FormatLine(history, []string{"g7h8q"})
	if err != nil {
		t.Fatalf("FormatLine: %v", err)
	}
	if got != "gxh8=Q" {
		t.Errorf("line = %q, want %q", got, "gxh8=Q")
	}
}

func TestFormatLineIllegalMoveFails(t *testing.T) {
	if _, err := New().FormatLine(nil, []string{"e2e5"}); err == nil {
		t.Error("expected error for illegal move")
	}
}

func TestFormatLineBadHistoryFails(t *testing.T) {
	if _, err := New().FormatLine([]string{"zz99"}, []string{"e2e4"}); err == nil {
		t.Error("expected error for garbled history")
	}
}
