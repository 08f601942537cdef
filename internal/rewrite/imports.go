package rewrite

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"gooze.dev/pkg/rulemig/internal/javaast"
)

// ImportRewrite collects import additions and removals for one unit.
// Both operations are idempotent. A removal only takes effect when the
// simple name is no longer referenced by the rewritten file.
type ImportRewrite struct {
	unit   *javaast.CompilationUnit
	add    []string
	remove []string
}

func newImportRewrite(unit *javaast.CompilationUnit) *ImportRewrite {
	return &ImportRewrite{unit: unit}
}

// Add requests an import of qualifiedName.
func (r *ImportRewrite) Add(qualifiedName string) {
	if !contains(r.add, qualifiedName) {
		r.add = append(r.add, qualifiedName)
	}
}

// Remove requests the removal of the single-type import of qualifiedName.
func (r *ImportRewrite) Remove(qualifiedName string) {
	if !contains(r.remove, qualifiedName) {
		r.remove = append(r.remove, qualifiedName)
	}
}

// Added returns the requested additions in request order.
func (r *ImportRewrite) Added() []string {
	return append([]string{}, r.add...)
}

// Removed returns the requested removals in request order.
func (r *ImportRewrite) Removed() []string {
	return append([]string{}, r.remove...)
}

// render queues import edits. body is the unit text with every non-import
// edit already applied and is used to decide whether a removal is safe.
func (r *ImportRewrite) render(buf *Buffer, body []byte) {
	removed := make(map[*javaast.Import]bool)

	for _, name := range r.remove {
		if contains(r.add, name) {
			continue
		}

		imp := r.find(name)
		if imp == nil || referenced(body, imp.SimpleName()) {
			continue
		}

		removed[imp] = true
		start := r.unit.LineStart(imp.Span.Start)
		buf.Delete(start, lineEnd(r.unit.Source, imp.Span.End))
	}

	added := append([]string{}, r.add...)
	sort.Strings(added)

	headerStarted := false

	for _, name := range added {
		if r.covered(name) {
			continue
		}

		headerStarted = r.insert(buf, name, removed, headerStarted)
	}

	// A file without package or imports needs a blank line before its types.
	if headerStarted && len(r.unit.Imports) == 0 && r.unit.PackageSpan.IsZero() {
		buf.Insert(0, "\n")
	}
}

func (r *ImportRewrite) find(name string) *javaast.Import {
	for _, imp := range r.unit.Imports {
		if !imp.Static && !imp.OnDemand && imp.Name == name {
			return imp
		}
	}

	return nil
}

// covered reports whether name is already visible without a new import.
func (r *ImportRewrite) covered(name string) bool {
	pkg := packageOf(name)
	if pkg == r.unit.Package || pkg == "java.lang" {
		return true
	}

	for _, imp := range r.unit.Imports {
		if imp.Static {
			continue
		}

		if imp.Name == name || imp.OnDemand && imp.Name == pkg {
			return true
		}
	}

	return false
}

func (r *ImportRewrite) insert(buf *Buffer, name string, removed map[*javaast.Import]bool, headerStarted bool) bool {
	line := "import " + name + ";"

	var kept []*javaast.Import

	for _, imp := range r.unit.Imports {
		if !imp.Static && !removed[imp] {
			kept = append(kept, imp)
		}
	}

	for _, imp := range kept {
		if imp.Name > name {
			buf.Insert(r.unit.LineStart(imp.Span.Start), line+"\n")
			return headerStarted
		}
	}

	switch {
	case len(kept) > 0:
		buf.Insert(kept[len(kept)-1].Span.End, "\n"+line)
	case len(r.unit.Imports) > 0:
		buf.Insert(r.unit.LineStart(r.unit.Imports[0].Span.Start), line+"\n")
	case !r.unit.PackageSpan.IsZero() && headerStarted:
		buf.Insert(r.unit.PackageSpan.End, "\n"+line)
	case !r.unit.PackageSpan.IsZero():
		buf.Insert(r.unit.PackageSpan.End, "\n\n"+line)
	default:
		buf.Insert(0, line+"\n")
	}

	return true
}

var importLine = regexp.MustCompile(`^\s*import\s`)

// referenced reports whether simple occurs as a whole word outside import
// declarations.
func referenced(body []byte, simple string) bool {
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(simple) + `\b`)

	for _, line := range bytes.Split(body, []byte("\n")) {
		if importLine.Match(line) {
			continue
		}

		if word.Match(line) {
			return true
		}
	}

	return false
}

// lineEnd returns the offset just past the newline ending pos's line.
func lineEnd(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}

	return len(src)
}

func packageOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}

	return ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}

var singleImportLine = regexp.MustCompile(`^\s*import\s+([\w.]+)\s*;\s*$`)

// TidyImports re-checks the single-type imports of src, which merges the
// edits of several sessions made against base. An import of a retired name
// src no longer references is dropped. When the imports of base were in
// order and form one block in src, they are put back in order.
func TidyImports(base, src []byte, retired []string) []byte {
	lines := strings.SplitAfter(string(src), "\n")

	var block []int

	for i, line := range lines {
		if singleImportLine.MatchString(line) {
			block = append(block, i)
		}
	}

	if len(block) == 0 {
		return src
	}

	drop := make(map[int]bool)

	var (
		keptAt []int
		kept   []string
	)

	for _, i := range block {
		name := importName(lines[i])
		if contains(retired, name) && !referenced(src, name[strings.LastIndex(name, ".")+1:]) {
			drop[i] = true
			continue
		}

		keptAt = append(keptAt, i)
		kept = append(kept, strings.TrimRight(lines[i], "\r\n"))
	}

	if importsSorted(base) && block[len(block)-1]-block[0] == len(block)-1 {
		sort.SliceStable(kept, func(a, b int) bool {
			return importName(kept[a]) < importName(kept[b])
		})
	}

	var out strings.Builder

	next := 0

	for i, line := range lines {
		switch {
		case drop[i]:
		case next < len(keptAt) && keptAt[next] == i:
			out.WriteString(kept[next])
			out.WriteString(line[len(strings.TrimRight(line, "\r\n")):])
			next++
		default:
			out.WriteString(line)
		}
	}

	return []byte(out.String())
}

func importName(line string) string {
	if match := singleImportLine.FindStringSubmatch(line); match != nil {
		return match[1]
	}

	return ""
}

func importsSorted(src []byte) bool {
	var names []string

	for _, line := range strings.Split(string(src), "\n") {
		if name := importName(line); name != "" {
			names = append(names, name)
		}
	}

	return sort.StringsAreSorted(names)
}
