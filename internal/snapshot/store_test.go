package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/sakuin/internal/index"
	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/tokenizer"
)

func sampleModel(t *testing.T) *models.CorpusModel {
	t.Helper()
	docs := make(map[string]*models.DocumentRecord)
	for path, text := range map[string]string{
		"/docs/a.txt": "alpha beta alpha",
		"/docs/b.txt": "beta beta",
	} {
		counts, total := tokenizer.Counts(text)
		docs[path] = &models.DocumentRecord{
			Path:       path,
			Name:       filepath.Base(path),
			ModTimeNS:  12345,
			Size:       int64(len(text)),
			TermCounts: counts,
			TotalTerms: total,
		}
	}
	return index.BuildModel(docs)
}

func TestStore_saveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewStore(path)
	want := sampleModel(t)

	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := store.Load()
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if !reflect.DeepEqual(got.Documents, want.Documents) {
		t.Errorf("documents differ:\ngot  %+v\nwant %+v", got.Documents, want.Documents)
	}
	if !reflect.DeepEqual(got.Order, want.Order) {
		t.Errorf("order differs: got %v want %v", got.Order, want.Order)
	}
	if !reflect.DeepEqual(got.IDF, want.IDF) {
		t.Errorf("idf differs")
	}
	if !reflect.DeepEqual(got.Vectors, want.Vectors) {
		t.Errorf("vectors differ")
	}
	if !reflect.DeepEqual(got.Norms, want.Norms) {
		t.Errorf("norms differ")
	}
	// Marshaling drops the monotonic clock reading, so compare with Equal.
	if !got.BuiltAt.Equal(want.BuiltAt) {
		t.Errorf("built_at differs: got %v want %v", got.BuiltAt, want.BuiltAt)
	}
}

func TestStore_saveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "snapshot.json")
	store := NewStore(path)
	if err := store.Save(sampleModel(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.Load() == nil {
		t.Fatal("Load returned nil")
	}
}

func TestStore_saveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "snapshot.json"))
	if err := store.Save(sampleModel(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "snapshot.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only snapshot.json", names)
	}
}

func TestStore_loadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	if got := store.Load(); got != nil {
		t.Errorf("Load of missing file = %+v, want nil", got)
	}
}

func TestStore_loadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := NewStore(path).Load(); got != nil {
		t.Errorf("Load of corrupt file = %+v, want nil", got)
	}
}

func TestStore_loadSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewStore(path)
	if err := store.Save(sampleModel(t)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	raw["schema_version"] = json.RawMessage("99")
	data, err = json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	if got := store.Load(); got != nil {
		t.Errorf("Load of mismatched schema = %+v, want nil", got)
	}
}

func TestStore_loadStructurallyInvalidModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewStore(path)
	broken := sampleModel(t)
	delete(broken.Norms, broken.Order[0])
	if err := store.Save(broken); err != nil {
		t.Fatal(err)
	}
	if got := store.Load(); got != nil {
		t.Errorf("Load of invalid model = %+v, want nil", got)
	}
}

func TestStore_savedBytesAreDeterministic(t *testing.T) {
	dir := t.TempDir()
	model := sampleModel(t)

	a := NewStore(filepath.Join(dir, "a.json"))
	b := NewStore(filepath.Join(dir, "b.json"))
	if err := a.Save(model); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(model); err != nil {
		t.Fatal(err)
	}
	da, err := os.ReadFile(a.Path())
	if err != nil {
		t.Fatal(err)
	}
	db, err := os.ReadFile(b.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(da) != string(db) {
		t.Error("same model produced different snapshot bytes")
	}
}
