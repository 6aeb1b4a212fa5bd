package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init("chatty", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestInitFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("warn", &buf); err != nil {
		t.Fatal(err)
	}
	defer Init("info", &bytes.Buffer{})

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "| WARN  | shown 2") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestCustomFormatterSortsFields(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Level:   logrus.DebugLevel,
		Message: "parsed",
		Data:    logrus.Fields{"rows": 20, "file": "Emon.dat"},
	}
	b, err := (&CustomFormatter{}).Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	want := "2024-03-01T12:00:00.000+00:00 | DEBUG | parsed file=Emon.dat rows=20\n"
	if string(b) != want {
		t.Errorf("got %q, want %q", b, want)
	}
}

func TestRedirectRestoresOutput(t *testing.T) {
	var before, pane bytes.Buffer
	if err := Init("info", &before); err != nil {
		t.Fatal(err)
	}
	defer Init("info", &bytes.Buffer{})

	restore := Redirect(&pane)
	Errorf("plot %s failed", "Emon.dat")
	restore()
	Infof("after")

	if !strings.Contains(pane.String(), "| ERROR | plot Emon.dat failed") {
		t.Errorf("redirected output = %q", pane.String())
	}
	if strings.Contains(pane.String(), "after") {
		t.Errorf("output kept after restore: %q", pane.String())
	}
	if strings.Contains(before.String(), "Emon.dat") || !strings.Contains(before.String(), "after") {
		t.Errorf("original output = %q", before.String())
	}
}
