package metadata

import (
	"testing"
	"time"

	"howett.net/plist"

	"ibex-go/internal/extract"
)

// archiveBlob builds a binary keyed-archive fixture whose second object
// table entry is the given field dictionary.
func archiveBlob(t *testing.T, fields any) []byte {
	t.Helper()
	b, err := plist.Marshal(map[string]any{
		"$objects": []any{"$null", fields},
	}, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	return b
}

func TestDecode(t *testing.T) {
	d := NewDecoder(extract.NewNopLogger())

	t.Run("converts epoch offsets to local time", func(t *testing.T) {
		blob := archiveBlob(t, map[string]any{
			"LastModified": int64(743212800),
			"Birth":        int64(743126400),
		})

		ts, err := d.Decode(blob)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		wantMod := appleEpoch.Add(743212800 * time.Second).Local()
		wantBirth := appleEpoch.Add(743126400 * time.Second).Local()
		if ts.LastModified == nil || !ts.LastModified.Equal(wantMod) {
			t.Errorf("LastModified = %v, want %v", ts.LastModified, wantMod)
		}
		if ts.Birth == nil || !ts.Birth.Equal(wantBirth) {
			t.Errorf("Birth = %v, want %v", ts.Birth, wantBirth)
		}
	})

	t.Run("accepts fractional second offsets", func(t *testing.T) {
		blob := archiveBlob(t, map[string]any{
			"LastModified": float64(743212800.5),
		})

		ts, err := d.Decode(blob)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		want := appleEpoch.Add(743212800 * time.Second).Local()
		if ts.LastModified == nil || !ts.LastModified.Equal(want) {
			t.Errorf("LastModified = %v, want %v", ts.LastModified, want)
		}
	})

	t.Run("missing fields stay absent", func(t *testing.T) {
		blob := archiveBlob(t, map[string]any{
			"LastModified": int64(743212800),
		})

		ts, err := d.Decode(blob)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if ts.LastModified == nil {
			t.Error("LastModified = nil, want a value")
		}
		if ts.Birth != nil {
			t.Errorf("Birth = %v, want nil", ts.Birth)
		}
	})

	t.Run("empty blob decodes to absent timestamps", func(t *testing.T) {
		ts, err := d.Decode(nil)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if ts.LastModified != nil || ts.Birth != nil {
			t.Errorf("Decode(nil) = %+v, want absent timestamps", ts)
		}
	})

	t.Run("garbage blob reports an error", func(t *testing.T) {
		if _, err := d.Decode([]byte("not a plist")); err == nil {
			t.Error("Decode() error = nil, want decode failure")
		}
	})

	t.Run("short object table degrades to absent timestamps", func(t *testing.T) {
		b, err := plist.Marshal(map[string]any{
			"$objects": []any{"$null"},
		}, plist.BinaryFormat)
		if err != nil {
			t.Fatalf("building fixture: %v", err)
		}

		ts, err := d.Decode(b)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if ts.LastModified != nil {
			t.Errorf("LastModified = %v, want nil", ts.LastModified)
		}
	})

	t.Run("non-dictionary object table entry degrades to absent timestamps", func(t *testing.T) {
		blob := archiveBlob(t, "a string where a dictionary belongs")

		ts, err := d.Decode(blob)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if ts.LastModified != nil {
			t.Errorf("LastModified = %v, want nil", ts.LastModified)
		}
	})

	t.Run("non-numeric field is ignored", func(t *testing.T) {
		blob := archiveBlob(t, map[string]any{
			"LastModified": "yesterday",
			"Birth":        int64(743126400),
		})

		ts, err := d.Decode(blob)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if ts.LastModified != nil {
			t.Errorf("LastModified = %v, want nil", ts.LastModified)
		}
		if ts.Birth == nil {
			t.Error("Birth = nil, want a value")
		}
	})
}
