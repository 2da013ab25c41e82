package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/just-cli/just/internal/errors"
)

// TableFormatter 由需要以行列形式展示的数据实现（如 ext list）。
// ok=false 时回退到通用 key/value 渲染。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

// TextRenderer 由自行绘制表格模式输出的数据实现（如扩展树）。
type TextRenderer interface {
	RenderText(w io.Writer) error
}

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, Envelope{OK: true, SchemaVersion: SchemaVersion, Data: data})
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	errObj := &ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details}
	return w.write(format, Envelope{OK: false, SchemaVersion: SchemaVersion, Error: errObj})
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := w.Out.Write(b); err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

// tableData 尝试把 data 解释为行列数据。
func tableData(data any) ([]string, []map[string]any, bool) {
	if tf, ok := data.(TableFormatter); ok {
		return tf.ToTableData()
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, nil, false
	}
	cols, ok := m["columns"].([]string)
	if !ok {
		return nil, nil, false
	}
	rows, ok := m["rows"].([]map[string]any)
	if !ok {
		return nil, nil, false
	}
	return cols, rows, true
}

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
			for _, k := range sortedKeys(env.Error.Details) {
				_, _ = fmt.Fprintf(tw, "error.details.%s\t%s\n", k, cell(env.Error.Details[k], "<null>"))
			}
		}
		return tw.Flush()
	}

	if tr, ok := env.Data.(TextRenderer); ok {
		return tr.RenderText(out)
	}
	if cols, rows, ok := tableData(env.Data); ok {
		header := make([]string, len(cols))
		sep := make([]string, len(cols))
		for i, c := range cols {
			header[i] = strings.ToUpper(c)
			sep[i] = strings.Repeat("-", len(c))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
		_, _ = fmt.Fprintln(tw, strings.Join(sep, "\t"))
		for _, row := range rows {
			vals := make([]string, len(cols))
			for i, c := range cols {
				vals[i] = cell(row[c], "<null>")
			}
			_, _ = fmt.Fprintln(tw, strings.Join(vals, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "(%d rows)\n", len(rows))
		return err
	}

	if m, ok := env.Data.(map[string]any); ok {
		for _, k := range sortedKeys(m) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, cell(m[k], "<null>"))
		}
		return tw.Flush()
	}
	if env.Data != nil {
		_, _ = fmt.Fprintln(tw, cell(env.Data, ""))
	}
	return tw.Flush()
}

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		if env.Error != nil {
			_ = cw.Write([]string{"error.code", string(env.Error.Code)})
			_ = cw.Write([]string{"error.message", env.Error.Message})
		}
		cw.Flush()
		return cw.Error()
	}

	if cols, rows, ok := tableData(env.Data); ok {
		_ = cw.Write(cols)
		for _, row := range rows {
			vals := make([]string, len(cols))
			for i, c := range cols {
				vals[i] = cell(row[c], "")
			}
			_ = cw.Write(vals)
		}
		cw.Flush()
		return cw.Error()
	}

	if m, ok := env.Data.(map[string]any); ok {
		for _, k := range sortedKeys(m) {
			_ = cw.Write([]string{k, cell(m[k], "")})
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell 把任意值渲染为单元格文本；复合值以紧凑 JSON 展示。
func cell(v any, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, int, int64, float64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
