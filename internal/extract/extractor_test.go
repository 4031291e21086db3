package extract_test

import (
	"errors"
	"testing"
	"time"

	"ibex-go/internal/extract"
	"ibex-go/internal/testutil"
)

const imgPath = "Media/DCIM/103APPLE/IMG_0042.HEIC"

// setup wires an extractor around in-memory fakes. Callers mutate the
// returned pieces before calling run.
type fixture struct {
	fs       *testutil.MemFS
	catalog  *testutil.FakeCatalog
	decoder  *testutil.FakeDecoder
	exif     extract.ExifReader
	trash    extract.TrashSet
	reporter *testutil.RecordingReporter
	opts     extract.Options
}

func newFixture() *fixture {
	return &fixture{
		fs:       testutil.NewMemFS(),
		catalog:  &testutil.FakeCatalog{},
		decoder:  &testutil.FakeDecoder{ByBlob: map[string]extract.Timestamps{}},
		trash:    extract.TrashSet{},
		reporter: &testutil.RecordingReporter{},
		opts: extract.Options{
			OutputRoot:    "out",
			Layout:        extract.LayoutYM,
			DateSeparator: extract.SeparatorDash,
		},
	}
}

func (f *fixture) addRecord(fileID, relativePath, metaKey string, content []byte) {
	f.catalog.Records = append(f.catalog.Records, extract.Record{
		FileID:       fileID,
		RelativePath: relativePath,
		Metadata:     []byte(metaKey),
	})
	f.fs.AddFile(f.catalog.BlobPath(fileID), content)
}

func (f *fixture) run(t *testing.T) extract.Summary {
	t.Helper()
	ex := extract.NewExtractor(f.catalog, f.fs, f.decoder, f.exif, f.trash, f.reporter, extract.NewNopLogger(), f.opts)
	sum, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return sum
}

func TestExtractor_CopiesEligibleRecord(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 10, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	got, ok := f.fs.Content("out/2024-07/IMG_0042.heic")
	if !ok {
		t.Fatalf("destination file missing; have %v", f.fs.Paths())
	}
	if string(got) != "photo bytes" {
		t.Errorf("destination content = %q, want %q", got, "photo bytes")
	}

	if len(f.reporter.Lines) != 1 {
		t.Fatalf("got %d progress lines, want 1", len(f.reporter.Lines))
	}
	line := f.reporter.Lines[0]
	if line.Index != 1 || line.Key != "ab12cd" || line.Name != "IMG_0042.heic" || line.Outcome != "2024-07/IMG_0042.heic" {
		t.Errorf("progress line = %+v", line)
	}

	stamped, ok := f.fs.StampedWith("out/2024-07/IMG_0042.heic")
	if !ok {
		t.Fatal("expected timestamps to be stamped")
	}
	if stamped.LastModified == nil || !stamped.LastModified.Equal(mod) {
		t.Errorf("stamped LastModified = %v, want %v", stamped.LastModified, mod)
	}
}

func TestExtractor_SkipsTrashedRecord(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))
	f.trash[imgPath] = struct{}{}

	sum := f.run(t)

	if sum.Trashed != 1 || sum.Copied != 0 {
		t.Fatalf("Summary = %+v, want 1 trashed, 0 copied", sum)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042.heic"); ok {
		t.Error("trashed record must not be written")
	}
	if got := f.reporter.Lines[0].Outcome; got != extract.MarkerTrashed {
		t.Errorf("outcome = %q, want %q", got, extract.MarkerTrashed)
	}
}

func TestExtractor_KeepsTrashedWithSuffix(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.opts.IncludeTrashed = true
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))
	f.trash[imgPath] = struct{}{}

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042_DELETED.heic"); !ok {
		t.Errorf("expected _DELETED destination; have %v", f.fs.Paths())
	}
}

func TestExtractor_Idempotence(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))
	f.addRecord("ef34ab", "Media/DCIM/103APPLE/IMG_0043.HEIC", "m1", []byte("other bytes"))

	first := f.run(t)
	if first.Copied != 2 {
		t.Fatalf("first run Copied = %d, want 2", first.Copied)
	}
	pathsAfterFirst := f.fs.Paths()

	second := f.run(t)
	if second.Copied != 0 || second.Duplicates != 2 {
		t.Fatalf("second run Summary = %+v, want 0 copied, 2 duplicates", second)
	}

	pathsAfterSecond := f.fs.Paths()
	if len(pathsAfterSecond) != len(pathsAfterFirst) {
		t.Errorf("second run changed the output tree: %v -> %v", pathsAfterFirst, pathsAfterSecond)
	}
}

func TestExtractor_RenamesOnContentMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("new bytes"))
	f.fs.AddFile("out/2024-07/IMG_0042.heic", []byte("old bytes"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042.0.heic"); !ok {
		t.Errorf("expected disambiguated destination; have %v", f.fs.Paths())
	}
	if got, _ := f.fs.Content("out/2024-07/IMG_0042.heic"); string(got) != "old bytes" {
		t.Error("existing file was modified")
	}
}

func TestExtractor_SinceDateBoundary(t *testing.T) {
	t.Parallel()
	f := newFixture()
	since := extract.Date{Year: 2024, Month: time.July, Day: 14}
	f.opts.Since = &since

	onDay := time.Date(2024, 7, 14, 0, 30, 0, 0, time.Local)
	dayBefore := time.Date(2024, 7, 13, 23, 30, 0, 0, time.Local)
	f.decoder.ByBlob["on"] = extract.Timestamps{LastModified: &onDay}
	f.decoder.ByBlob["before"] = extract.Timestamps{LastModified: &dayBefore}
	f.addRecord("aa0001", "Media/DCIM/103APPLE/IMG_0001.JPG", "on", []byte("a"))
	f.addRecord("aa0002", "Media/DCIM/103APPLE/IMG_0002.JPG", "before", []byte("b"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Errorf("Copied = %d, want 1", sum.Copied)
	}
	if sum.TooOld != 1 {
		t.Errorf("TooOld = %d, want 1", sum.TooOld)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0001.jpg"); !ok {
		t.Error("record on the since date must be included")
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0002.jpg"); ok {
		t.Error("record before the since date must be excluded")
	}
}

func TestExtractor_NoSinceFilterForUnknownDates(t *testing.T) {
	t.Parallel()
	f := newFixture()
	since := extract.Date{Year: 2024, Month: time.July, Day: 14}
	f.opts.Since = &since
	f.addRecord("aa0001", imgPath, "", []byte("a"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/Unknown_Date/IMG_0042.heic"); !ok {
		t.Errorf("expected Unknown_Date destination; have %v", f.fs.Paths())
	}
}

func TestExtractor_IneligibleRecordsGetNoIndex(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	// Sorts before the eligible record but must not consume an index.
	f.addRecord("aa0000", "Media/DCIM/103APPLE/.MISC/thumbs/IMG_0001.jpg", "", []byte("t"))
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Ineligible != 1 {
		t.Errorf("Ineligible = %d, want 1", sum.Ineligible)
	}
	if len(f.reporter.Lines) != 1 {
		t.Fatalf("got %d progress lines, want 1", len(f.reporter.Lines))
	}
	if f.reporter.Lines[0].Index != 1 {
		t.Errorf("index = %d, want 1", f.reporter.Lines[0].Index)
	}
}

func TestExtractor_DryRun(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.opts.DryRun = true
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042.heic"); ok {
		t.Error("dry run must not write files")
	}
	if f.fs.MadeDirs() {
		t.Error("dry run must not create directories")
	}
	if len(f.reporter.Lines) != 1 || f.reporter.Lines[0].Outcome != "2024-07/IMG_0042.heic" {
		t.Errorf("dry run progress lines = %+v, want the same output as a real run", f.reporter.Lines)
	}
}

func TestExtractor_CopyFailureIsFatal(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.addRecord("aa0001", "Media/DCIM/103APPLE/IMG_0001.JPG", "", []byte("a"))
	f.addRecord("aa0002", "Media/DCIM/103APPLE/IMG_0002.JPG", "", []byte("b"))
	f.fs.CopyErr = errors.New("disk full")

	ex := extract.NewExtractor(f.catalog, f.fs, f.decoder, f.exif, f.trash, f.reporter, extract.NewNopLogger(), f.opts)
	sum, err := ex.Run()
	if err == nil {
		t.Fatal("Run() error = nil, want copy failure")
	}
	if sum.Copied != 0 {
		t.Errorf("Copied = %d, want 0", sum.Copied)
	}
}

func TestExtractor_StampFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))
	f.fs.StampErr = errors.New("not supported")

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Errorf("Copied = %d, want 1", sum.Copied)
	}
}

func TestExtractor_ExifFallbackDatesDestination(t *testing.T) {
	t.Parallel()
	f := newFixture()
	capture := time.Date(2024, 7, 14, 10, 0, 0, 0, time.Local)
	f.exif = &testutil.FakeExifReader{Time: capture}
	f.addRecord("ab12cd", imgPath, "", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042.heic"); !ok {
		t.Errorf("expected capture-time-dated destination; have %v", f.fs.Paths())
	}
	stamped, ok := f.fs.StampedWith("out/2024-07/IMG_0042.heic")
	if !ok {
		t.Fatal("expected timestamps to be stamped")
	}
	if stamped.LastModified == nil || !stamped.LastModified.Equal(capture) {
		t.Errorf("stamped LastModified = %v, want %v", stamped.LastModified, capture)
	}
}

func TestExtractor_ExifFailureFallsBackToUnknownDate(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.exif = &testutil.FakeExifReader{Err: errors.New("no capture time recorded")}
	f.addRecord("ab12cd", imgPath, "", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Copied != 1 {
		t.Fatalf("Copied = %d, want 1", sum.Copied)
	}
	if _, ok := f.fs.Content("out/Unknown_Date/IMG_0042.heic"); !ok {
		t.Errorf("expected Unknown_Date destination; have %v", f.fs.Paths())
	}
}

func TestExtractor_ExifNotConsultedWhenMetadataHasTime(t *testing.T) {
	t.Parallel()
	f := newFixture()
	mod := time.Date(2024, 7, 14, 0, 0, 0, 0, time.Local)
	f.decoder.ByBlob["m1"] = extract.Timestamps{LastModified: &mod}
	reader := &testutil.FakeExifReader{Time: time.Date(2019, 1, 1, 0, 0, 0, 0, time.Local)}
	f.exif = reader
	f.addRecord("ab12cd", imgPath, "m1", []byte("photo bytes"))

	f.run(t)

	if reader.Calls != 0 {
		t.Errorf("CaptureTime called %d times, want 0", reader.Calls)
	}
	if _, ok := f.fs.Content("out/2024-07/IMG_0042.heic"); !ok {
		t.Errorf("expected metadata-dated destination; have %v", f.fs.Paths())
	}
}

func TestExtractor_ExifTimeDoesNotDriveSinceFilter(t *testing.T) {
	t.Parallel()
	f := newFixture()
	since := extract.Date{Year: 2024, Month: time.July, Day: 14}
	f.opts.Since = &since
	f.exif = &testutil.FakeExifReader{Time: time.Date(2019, 1, 1, 0, 0, 0, 0, time.Local)}
	f.addRecord("ab12cd", imgPath, "", []byte("photo bytes"))

	sum := f.run(t)

	if sum.Copied != 1 || sum.TooOld != 0 {
		t.Fatalf("Summary = %+v, want the record copied despite an old capture time", sum)
	}
	if _, ok := f.fs.Content("out/2019-01/IMG_0042.heic"); !ok {
		t.Errorf("expected capture-time-dated destination; have %v", f.fs.Paths())
	}
}

func TestExtractor_SameNameDistinctContentInOneRun(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.opts.Layout = extract.LayoutFlat
	f.addRecord("aa0001", "Media/DCIM/100APPLE/IMG_0001.JPG", "", []byte("roll 100"))
	f.addRecord("aa0002", "Media/DCIM/101APPLE/IMG_0001.JPG", "", []byte("roll 101"))

	sum := f.run(t)

	if sum.Copied != 2 {
		t.Fatalf("Copied = %d, want 2", sum.Copied)
	}
	if _, ok := f.fs.Content("out/IMG_0001.jpg"); !ok {
		t.Error("first record missing")
	}
	if _, ok := f.fs.Content("out/IMG_0001.0.jpg"); !ok {
		t.Errorf("second record not disambiguated; have %v", f.fs.Paths())
	}
}
