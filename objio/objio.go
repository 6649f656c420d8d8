// Package objio reads and writes the Wavefront .obj subset used to move
// meshes across the CLI boundary: "v"/"f" records plus a "#vsplit"
// comment extension carrying progressive-mesh split history so the file
// stays a valid .obj (§6 of the spec).
package objio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/vecmath"
)

// ErrMalformed reports a syntactically invalid line (§7 MalformedInput).
type ErrMalformed struct {
	Line int
	Msg  string
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("objio: line %d: %s", e.Line, e.Msg)
}

// Stats summarizes a Read call, reported by the CLI under -v.
type Stats struct {
	Vertices int
	Faces    int
	Splits   int
}

// Read parses the .obj subset from r into a mesh, following the teacher's
// line-oriented scanner idiom (grounded on obj_loader.go's field-based
// switch) but restricted to the "v", "f" and "#vsplit" records of §6.
func Read(r io.Reader) (*mesh.Mesh, Stats, error) {
	m := mesh.New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#vsplit ") {
			sp, err := parseSplit(line[len("#vsplit "):], lineNum)
			if err != nil {
				return nil, Stats{}, err
			}
			m.Splits = append(m.Splits, sp)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVertex(fields, lineNum)
			if err != nil {
				return nil, Stats{}, err
			}
			m.AddVertex(v)
		case "f":
			f, err := parseFace(fields, lineNum)
			if err != nil {
				return nil, Stats{}, err
			}
			m.AddFace(f)
		default:
			// unrecognized directive: ignored per §6 "all other lines are ignored"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("objio: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, Stats{}, err
	}

	return m, Stats{Vertices: len(m.Vertices), Faces: len(m.Faces), Splits: len(m.Splits)}, nil
}

func parseVertex(fields []string, line int) (vecmath.Vec, error) {
	if len(fields) < 4 {
		return vecmath.Vec{}, &ErrMalformed{line, "vertex needs 3 coordinates"}
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return vecmath.Vec{}, &ErrMalformed{line, "non-numeric X coordinate"}
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return vecmath.Vec{}, &ErrMalformed{line, "non-numeric Y coordinate"}
	}
	z, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return vecmath.Vec{}, &ErrMalformed{line, "non-numeric Z coordinate"}
	}
	return vecmath.New(x, y, z), nil
}

func parseFace(fields []string, line int) (mesh.Triangle, error) {
	if len(fields) != 4 {
		return mesh.Triangle{}, &ErrMalformed{line, "face must have exactly 3 indices (triangles only)"}
	}
	var t mesh.Triangle
	for i := 0; i < 3; i++ {
		idx, err := strconv.Atoi(fields[i+1])
		if err != nil || idx < 1 {
			return mesh.Triangle{}, &ErrMalformed{line, "face index must be a positive 1-based integer"}
		}
		t[i] = idx - 1
	}
	return t, nil
}

// parseSplit parses the body after "#vsplit ": S {SX SY SZ} {TX TY TZ}
// { (a1 b1 c1) (a2 b2 c2) ... } (§6). Indices read back as 0-based and
// already resolved, matching what a prior Write call emitted.
func parseSplit(body string, line int) (mesh.VertexSplit, error) {
	fields := strings.Fields(body)
	if len(fields) < 1 {
		return mesh.VertexSplit{}, &ErrMalformed{line, "malformed #vsplit: missing S"}
	}
	s, err := strconv.Atoi(fields[0])
	if err != nil || s < 1 {
		return mesh.VertexSplit{}, &ErrMalformed{line, "malformed #vsplit: S must be a positive 1-based integer"}
	}

	rest := strings.Join(fields[1:], " ")
	groups, err := braceGroups(rest, line)
	if err != nil {
		return mesh.VertexSplit{}, err
	}
	if len(groups) != 3 {
		return mesh.VertexSplit{}, &ErrMalformed{line, "malformed #vsplit: expected 3 brace groups"}
	}

	sPos, err := parseTriple(groups[0], line)
	if err != nil {
		return mesh.VertexSplit{}, err
	}
	tPos, err := parseTriple(groups[1], line)
	if err != nil {
		return mesh.VertexSplit{}, err
	}

	faces, err := parseFaceTuples(groups[2], line)
	if err != nil {
		return mesh.VertexSplit{}, err
	}

	return mesh.VertexSplit{S: s - 1, SPos: sPos, TPos: tPos, Faces: faces}, nil
}

// braceGroups splits "{a} {b} {c}" into ["a", "b", "c"].
func braceGroups(s string, line int) ([]string, error) {
	var groups []string
	depth := 0
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '{':
			depth++
			if depth > 1 {
				cur.WriteRune(r)
			}
		case '}':
			depth--
			if depth < 0 {
				return nil, &ErrMalformed{line, "malformed #vsplit: unbalanced braces"}
			}
			if depth == 0 {
				groups = append(groups, strings.TrimSpace(cur.String()))
				cur.Reset()
			} else {
				cur.WriteRune(r)
			}
		default:
			if depth > 0 {
				cur.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return nil, &ErrMalformed{line, "malformed #vsplit: unbalanced braces"}
	}
	return groups, nil
}

func parseTriple(s string, line int) (vecmath.Vec, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return vecmath.Vec{}, &ErrMalformed{line, "malformed #vsplit: expected 3 coordinates"}
	}
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vecmath.Vec{}, &ErrMalformed{line, "malformed #vsplit: non-numeric coordinate"}
		}
		c[i] = v
	}
	return vecmath.New(c[0], c[1], c[2]), nil
}

func parseFaceTuples(s string, line int) ([]mesh.Triangle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var faces []mesh.Triangle
	depth := 0
	var cur strings.Builder
	flush := func() error {
		fields := strings.Fields(cur.String())
		if len(fields) != 3 {
			return &ErrMalformed{line, "malformed #vsplit: face tuple must have 3 indices"}
		}
		var t mesh.Triangle
		for i, f := range fields {
			idx, err := strconv.Atoi(f)
			if err != nil || idx == 0 {
				return &ErrMalformed{line, "malformed #vsplit: face index must be a nonzero integer"}
			}
			t[i] = idx - 1
		}
		faces = append(faces, t)
		cur.Reset()
		return nil
	}
	for _, r := range s {
		switch r {
		case '(':
			depth++
			cur.Reset()
		case ')':
			depth--
			if depth < 0 {
				return nil, &ErrMalformed{line, "malformed #vsplit: unbalanced parens"}
			}
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			if depth > 0 {
				cur.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return nil, &ErrMalformed{line, "malformed #vsplit: unbalanced parens"}
	}
	return faces, nil
}

// Write serializes m as the .obj subset of §6: a vertex block, a face
// block, then (if m carries splits) a vsplit block, each preceded by a
// "# <count> ..." comment line mirroring the teacher's header-comment
// style.
func Write(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %d vertices\n", len(m.Vertices))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X()), formatFloat(v.Y()), formatFloat(v.Z()))
	}

	fmt.Fprintf(bw, "# %d faces\n", len(m.Faces))
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}

	if len(m.Splits) > 0 {
		fmt.Fprintf(bw, "# %d splits\n", len(m.Splits))
		for _, sp := range m.Splits {
			writeSplit(bw, sp)
		}
	}

	return bw.Flush()
}

func writeSplit(bw *bufio.Writer, sp mesh.VertexSplit) {
	fmt.Fprintf(bw, "#vsplit %d {%s %s %s} {%s %s %s} {",
		sp.S+1,
		formatFloat(sp.SPos.X()), formatFloat(sp.SPos.Y()), formatFloat(sp.SPos.Z()),
		formatFloat(sp.TPos.X()), formatFloat(sp.TPos.Y()), formatFloat(sp.TPos.Z()),
	)
	for i, f := range sp.Faces {
		if i > 0 {
			bw.WriteByte(' ')
		}
		fmt.Fprintf(bw, "(%d %d %d)", f[0]+1, f[1]+1, f[2]+1)
	}
	bw.WriteString("}\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
