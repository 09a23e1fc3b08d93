package journal

import (
	"regexp"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/storage"
)

const progressPath = "docs/progress.md"

func setup(t *testing.T) (*storage.FS, *Journal) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store, New(store, progressPath)
}

func read(t *testing.T, store *storage.FS) string {
	t.Helper()
	data, err := store.Read(progressPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return string(data)
}

func TestAppendActivity_MissingLogIsNoOp(t *testing.T) {
	store, j := setup(t)
	ok, err := j.AppendActivity("Did X")
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if ok {
		t.Error("expected ok = false for missing log")
	}
	if exists, _ := store.Exists(progressPath); exists {
		t.Error("no-op must not create the log")
	}
}

func TestAppendActivity_InsertsAfterMarkerBeforeOldEntries(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("# Log\n\n## Activity Log\n- old line\n"))

	ok, err := j.AppendActivity("Did X")
	if err != nil || !ok {
		t.Fatalf("AppendActivity = %v, %v", ok, err)
	}
	content := read(t, store)
	lines := strings.Split(content, "\n")
	idx := -1
	for i, l := range lines {
		if l == "## Activity Log" {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("marker missing in %q", content)
	}
	if !regexp.MustCompile(`^- .+: Did X$`).MatchString(lines[idx+1]) {
		t.Errorf("lines[%d] = %q, want new entry", idx+1, lines[idx+1])
	}
	if lines[idx+2] != "- old line" {
		t.Errorf("lines[%d] = %q, want old entry preserved below", idx+2, lines[idx+2])
	}
}

func TestAppendActivity_MissingMarkerAppendsSection(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("# Log\njust text"))

	if _, err := j.AppendActivity("Did X"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	content := read(t, store)
	if !strings.Contains(content, "just text\n\n## Activity Log\n- ") {
		t.Errorf("content = %q", content)
	}
}

func TestAppendActivity_FirstMarkerOnly(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("## Activity Log\n\ntext\n\n## Activity Log\n"))

	if _, err := j.AppendActivity("Did X"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	content := read(t, store)
	if got := strings.Count(content, "Did X"); got != 1 {
		t.Errorf("entry count = %d, want 1", got)
	}
	first := strings.Index(content, "## Activity Log")
	entry := strings.Index(content, "- ")
	if entry < first {
		t.Fatalf("entry before first marker: %q", content)
	}
	second := strings.Index(content[first+1:], "## Activity Log")
	if second >= 0 && entry > first+1+second {
		t.Errorf("entry spliced at second marker: %q", content)
	}
}

func TestAppendActivity_SyncPrefixAlsoLogsSync(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("## Activity Log\n\n## Memory Sync Log\n"))

	if _, err := j.AppendActivity("Synced 4 documents to memory"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	content := read(t, store)
	if !strings.Contains(content, ": Synced 4 documents to memory") {
		t.Errorf("activity entry missing: %q", content)
	}
	if !strings.Contains(content, "## Memory Sync Log\n- ") ||
		!strings.Contains(content, ": Documentation synchronized") {
		t.Errorf("sync entry missing: %q", content)
	}
}

func TestAppendActivity_NonSyncSkipsSyncLog(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("## Activity Log\n\n## Memory Sync Log\n"))

	if _, err := j.AppendActivity("Created stage document"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if strings.Contains(read(t, store), "Documentation synchronized") {
		t.Error("sync entry must not be written for non-Sync messages")
	}
}

func TestAppendActivity_RefreshesEveryUpdatedField(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte(
		"---\nupdated: \"2020-01-01T00:00:00Z\"\n---\n## Activity Log\nupdated: \"stale\"\n"))

	if _, err := j.AppendActivity("Did X"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	content := read(t, store)
	if strings.Contains(content, "2020-01-01") || strings.Contains(content, `"stale"`) {
		t.Errorf("stale timestamps survived: %q", content)
	}
	if got := len(regexp.MustCompile(`updated: "[^"]+"`).FindAllString(content, -1)); got != 2 {
		t.Errorf("updated fields = %d, want 2", got)
	}
}

func TestRecordCompletion_ExistingSection(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("## Stage Completion Log\n- earlier\n"))

	ok, err := j.RecordCompletion(1, 2, "Auth Layer")
	if err != nil || !ok {
		t.Fatalf("RecordCompletion = %v, %v", ok, err)
	}
	content := read(t, store)
	if !strings.Contains(content, ": Stage 1.2: Auth Layer completed\n- earlier") {
		t.Errorf("content = %q", content)
	}
}

func TestRecordCompletion_FallsBackAfterCurrentStatus(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("# Log\n\n## Current Status\n- Phase: 1\n"))

	if _, err := j.RecordCompletion(1, 2, "Auth Layer"); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	content := read(t, store)
	want := "## Current Status\n\n## Stage Completion Log\n- "
	if !strings.Contains(content, want) {
		t.Errorf("content = %q, want fragment %q", content, want)
	}
	// The original status body follows the inserted section.
	if !strings.Contains(content, "completed\n- Phase: 1") {
		t.Errorf("status body displaced: %q", content)
	}
}

func TestRecordCompletion_AppendsAtEOF(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("# Log"))

	if _, err := j.RecordCompletion(3, 1, "Fuzzing"); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	content := read(t, store)
	if !strings.HasPrefix(content, "# Log\n\n## Stage Completion Log\n- ") {
		t.Errorf("content = %q", content)
	}
}

func TestRecordCompletion_DoesNotTouchUpdatedField(t *testing.T) {
	store, j := setup(t)
	_ = store.Write(progressPath, []byte("updated: \"keep\"\n## Stage Completion Log\n"))

	if _, err := j.RecordCompletion(1, 1, "Setup"); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if !strings.Contains(read(t, store), `updated: "keep"`) {
		t.Error("updated field must be left alone by completion records")
	}
}

func TestRecordCompletion_MissingLogIsNoOp(t *testing.T) {
	_, j := setup(t)
	ok, err := j.RecordCompletion(1, 1, "Setup")
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if ok {
		t.Error("expected ok = false for missing log")
	}
}
