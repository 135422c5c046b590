package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my beat.wav", "my_beat.wav"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\song.mp3`, "song.mp3"},
		{".hidden.webm", "hidden.webm"},
		{"__init__.ogg", "init__.ogg"},
		{"bé@t!.wav", "bt.wav"},
		{"   ", ""},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("a", 400) + ".wav"
	if got := SanitizeFilename(long); len(got) != maxFilenameLength {
		t.Errorf("long name sanitized to %d chars, want %d", len(got), maxFilenameLength)
	}
}

func TestStoredFilename(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	tests := []struct {
		in, want string
	}{
		{"my beat.wav", "1700000000.123456_my_beat.wav"},
		{"录音.webm", "1700000000.123456_audio.webm"},
		{"éé.wav", "1700000000.123456_audio.wav"},
		{"ビート.mp3", "1700000000.123456_audio.mp3"},
		{"Take.WAV", "1700000000.123456_Take.wav"},
		{`C:\rec\demo.ogg`, "1700000000.123456_demo.ogg"},
		{"noext", "1700000000.123456_noext"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := StoredFilename(tt.in, now); got != tt.want {
				t.Errorf("StoredFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	// the extension decides the served content type
	if ct := ContentTypeFor(StoredFilename("录音.webm", now)); ct != "audio/webm" {
		t.Errorf("content type of non-ASCII upload = %q, want audio/webm", ct)
	}

	long := StoredFilename(strings.Repeat("a", 400)+".wav", now)
	if !strings.HasSuffix(long, ".wav") || len(long) != len("1700000000.123456_")+maxFilenameLength {
		t.Errorf("long name = %d chars, suffix kept: %v", len(long), strings.HasSuffix(long, ".wav"))
	}
}

func TestMaterializeURL(t *testing.T) {
	tests := []struct {
		name, ref, base, want string
	}{
		{"relative", "/uploads/a.wav", "http://h:5000/", "http://h:5000/uploads/a.wav"},
		{"relative no slash", "/uploads/a.wav", "http://h:5000", "http://h:5000/uploads/a.wav"},
		{"absolute", "https://bucket.s3.amazonaws.com/a.wav", "http://h:5000/", "https://bucket.s3.amazonaws.com/a.wav"},
		{"empty", "", "http://h:5000/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaterializeURL(tt.ref, tt.base); got != tt.want {
				t.Errorf("MaterializeURL(%q, %q) = %q, want %q", tt.ref, tt.base, got, tt.want)
			}
		})
	}
}

func TestLocalBackendStoreAndOpen(t *testing.T) {
	root := t.TempDir()
	b, err := NewLocalBackend(root)
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	ctx := context.Background()

	ref, err := b.Store(ctx, strings.NewReader("RIFFdata"), "1.000001_take.wav")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if ref != "/uploads/1.000001_take.wav" {
		t.Errorf("ref = %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(root, "1.000001_take.wav"))
	if err != nil || string(data) != "RIFFdata" {
		t.Fatalf("file content = %q, %v", data, err)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("upload dir has %d entries, want 1", len(entries))
	}

	obj, err := b.Open(ctx, "1.000001_take.wav")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Close()
	if obj.Size != int64(len("RIFFdata")) {
		t.Errorf("Size = %d", obj.Size)
	}

	if _, err := b.Open(ctx, "missing.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := b.Open(ctx, "../secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(traversal) err = %v, want ErrNotFound", err)
	}

	list, err := b.List(ctx, "")
	if err != nil || len(list) != 1 || list[0].Key != "1.000001_take.wav" {
		t.Errorf("List = %+v, %v", list, err)
	}
}

func TestMemoryBackendFailure(t *testing.T) {
	b := NewMemoryBackend("")
	b.FailWith = errors.New("bucket unreachable")
	if _, err := b.Store(context.Background(), strings.NewReader("x"), "a.wav"); err == nil {
		t.Fatal("expected Store to fail")
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d after failed store", b.Len())
	}
}

func TestSummarize(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	stats := Summarize([]ObjectInfo{
		{Key: "a.wav", Size: 10, LastModified: t1},
		{Key: "b.WAV", Size: 20, LastModified: t2},
		{Key: "c.mp3", Size: 5, LastModified: t1},
		{Key: "README", Size: 1, LastModified: t1},
	})

	if stats.Objects != 4 || stats.TotalSize != 36 {
		t.Errorf("stats = %+v", stats)
	}
	if !stats.LastModified.Equal(t2) {
		t.Errorf("LastModified = %v, want %v", stats.LastModified, t2)
	}
	if stats.ByExtension["wav"] != 2 || stats.ByExtension["unknown"] != 1 {
		t.Errorf("ByExtension = %v", stats.ByExtension)
	}
	if exts := stats.Extensions(); exts[0] != "wav" || len(exts) != 3 {
		t.Errorf("Extensions = %v", exts)
	}
}
