package schema

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// sourceInfo indexes a file's SourceCodeInfo locations by descriptor path
// so node construction can attach positions and leading comments.
type sourceInfo struct {
	file string
	locs map[string]*descriptorpb.SourceCodeInfo_Location
}

func newSourceInfo(file string, sci *descriptorpb.SourceCodeInfo) *sourceInfo {
	si := &sourceInfo{file: file, locs: make(map[string]*descriptorpb.SourceCodeInfo_Location)}
	if sci == nil {
		return si
	}
	for _, loc := range sci.GetLocation() {
		si.locs[pathKey(loc.GetPath())] = loc
	}
	return si
}

func pathKey(path []int32) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}

// location returns the declaration position for a descriptor path. Spans
// are 0-based in SourceCodeInfo; the returned Location is 1-based.
func (s *sourceInfo) location(path []int32) Location {
	loc, ok := s.locs[pathKey(path)]
	if !ok || len(loc.GetSpan()) < 3 {
		return Location{File: s.file}
	}
	span := loc.GetSpan()
	return Location{File: s.file, Line: int(span[0]) + 1, Column: int(span[1]) + 1}
}

// comments returns the trimmed lines of the leading comment block attached
// to a descriptor path, or nil when there is none.
func (s *sourceInfo) comments(path []int32) []string {
	loc, ok := s.locs[pathKey(path)]
	if !ok {
		return nil
	}
	raw := loc.GetLeadingComments()
	if raw == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		out = append(out, strings.TrimSpace(line))
	}
	return out
}
