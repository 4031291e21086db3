package extract

import (
	"regexp"
	"strings"
)

// mediaExtensions is the accepted set of camera-roll file extensions,
// compared case-insensitively.
var mediaExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"heic": {},
	"dng":  {},
	"png":  {},
	"mov":  {},
	"3gp":  {},
	"mp4":  {},
	"gif":  {},
	"webp": {},
}

// rollPattern matches the camera-roll shape: an ancestor directory named
// DCIM, a numbered roll directory, a base filename and an extension.
var rollPattern = regexp.MustCompile(`(?:^|/)DCIM/\d+APPLE/([^/]+)\.([A-Za-z0-9]+)$`)

// Classification is the verdict of Classify for one logical path.
type Classification struct {
	Eligible bool
	Base     string // base filename without extension
	Ext      string // lowercased extension, no leading dot
	Reason   string // set when ineligible, for diagnostics
}

// Classify maps a catalog record's logical path to an eligibility verdict
// and the components of a candidate filename. Pure; no I/O.
func Classify(logicalPath string) Classification {
	for _, segment := range strings.Split(logicalPath, "/") {
		lower := strings.ToLower(segment)
		if strings.Contains(lower, "thumb") {
			return Classification{Reason: "thumbnail path"}
		}
		if strings.Contains(lower, "metadata") {
			return Classification{Reason: "metadata path"}
		}
	}

	dot := strings.LastIndex(logicalPath, ".")
	if dot < 0 || dot == len(logicalPath)-1 {
		return Classification{Reason: "no extension"}
	}
	ext := strings.ToLower(logicalPath[dot+1:])
	if _, ok := mediaExtensions[ext]; !ok {
		return Classification{Reason: "extension not in media set"}
	}

	m := rollPattern.FindStringSubmatch(logicalPath)
	if m == nil {
		return Classification{Reason: "path does not match camera-roll layout"}
	}

	return Classification{
		Eligible: true,
		Base:     m[1],
		Ext:      strings.ToLower(m[2]),
	}
}

// CandidateFilename derives the output filename for an eligible record.
// markDeleted appends a _DELETED suffix to the base name; callers set it
// only for trashed records on runs that keep trashed items.
func CandidateFilename(c Classification, markDeleted bool) string {
	base := c.Base
	if markDeleted {
		base += "_DELETED"
	}
	return base + "." + c.Ext
}
