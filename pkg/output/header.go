package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"rectanim/pkg/codec"
)

// WriteHeader emits the stream as C source: one array per frame, a pointer
// table rectData ending with rd_end_condition, and the selection used as a
// comment.
func WriteHeader(w io.Writer, rep *codec.Report, sel codec.Selection) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n// Generated using rectanim\n")
	fmt.Fprintf(bw, "// frame_count: %d\n", sel.Count)
	fmt.Fprintf(bw, "// frame_skip: %d\n", sel.Skip)
	fmt.Fprintf(bw, "// every_nth: %d\n", sel.Stride)
	fmt.Fprintf(bw, "// min_rect_size (w*h): %d\n", sel.MinRectArea)
	fmt.Fprintf(bw, "// max_rect_count : %d\n\n", sel.MaxRectCount)
	fmt.Fprintf(bw, "#include \"util.h\"\n\n")

	names := make([]string, 0, len(rep.Blocks))
	seen := map[string]bool{}

	for _, blk := range rep.Blocks {
		name := "rd_" + identifier(blk.Label)
		if name == "rd_" || seen[name] {
			name = fmt.Sprintf("rd_%d", blk.Seq)
		}
		seen[name] = true
		names = append(names, name)

		fmt.Fprintf(bw, "/* %s (%d rects) */\n", blk.Label, blk.Rects)
		fmt.Fprintf(bw, "const u8 %s[] = {\n", name)
		fmt.Fprintf(bw, "%s, \n", hexList(blk.Data[:2]))
		for off := 2; off < len(blk.Data); off += codec.RecordSize {
			fmt.Fprintf(bw, "%s,\n", hexList(blk.Data[off:off+codec.RecordSize]))
		}
		fmt.Fprintf(bw, "};\n\n")
	}

	fmt.Fprintf(bw, "const u8 rd_end_condition[] = {%s};\n\n", hexList(codec.Sentinel[:]))
	fmt.Fprintf(bw, "const u8 *rectData[] = {\n")
	for _, n := range names {
		fmt.Fprintf(bw, "%s,\n", n)
	}
	fmt.Fprintf(bw, "rd_end_condition };\n")

	return bw.Flush()
}

func SaveHeader(fs afero.Fs, path string, rep *codec.Report, sel codec.Selection) error {
	fh, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create header failed: %w", err)
	}

	if err := WriteHeader(fh, rep, sel); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write header failed: %w", err)
	}
	return fh.Close()
}

func hexList(bs []byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return strings.Join(parts, ", ")
}

// identifier maps s to C identifier characters. It may start with a digit,
// callers prefix it.
func identifier(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
