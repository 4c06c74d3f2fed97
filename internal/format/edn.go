package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN. Values go through encoding/json first so struct
// tags decide the key names; map keys become keywords. String values listed in
// keywordValues for their key (e.g. item kinds) are written as keywords too.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.writeAny(&buf, "", x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// keywordValues names the keys whose string values are enumerations.
var keywordValues = map[string]bool{
	"kind": true,
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) writeAny(buf *bytes.Buffer, key string, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		if keywordValues[key] && t != "" && !strings.ContainsAny(t, " \t\n") {
			buf.WriteString(":" + t)
			return
		}
		buf.WriteString(strconv.Quote(t))
	case float64:
		// JSON numbers decode as float64.
		if float64(int64(t)) == t {
			buf.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		e.writeVec(buf, t, level)
	case map[string]any:
		e.writeMap(buf, t, level)
	default:
		buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

func (e ednEncoder) writeVec(buf *bytes.Buffer, xs []any, level int) {
	buf.WriteByte('[')
	if len(xs) == 0 {
		buf.WriteByte(']')
		return
	}
	if e.pretty {
		buf.WriteByte('\n')
	}
	for i, it := range xs {
		if e.pretty {
			buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		}
		e.writeAny(buf, "", it, level+1)
		e.writeSep(buf, i == len(xs)-1)
	}
	e.closeIndent(buf, level)
	buf.WriteByte(']')
}

func (e ednEncoder) writeMap(buf *bytes.Buffer, m map[string]any, level int) {
	buf.WriteByte('{')
	if len(m) == 0 {
		buf.WriteByte('}')
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if e.pretty {
		buf.WriteByte('\n')
	}
	for i, k := range keys {
		if e.pretty {
			buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		}
		buf.WriteByte(':')
		buf.WriteString(ednKeyword(k))
		buf.WriteByte(' ')
		e.writeAny(buf, k, m[k], level+1)
		e.writeSep(buf, i == len(keys)-1)
	}
	e.closeIndent(buf, level)
	buf.WriteByte('}')
}

func (e ednEncoder) writeSep(buf *bytes.Buffer, last bool) {
	switch {
	case last:
	case e.pretty:
		buf.WriteByte('\n')
	default:
		buf.WriteByte(' ')
	}
}

func (e ednEncoder) closeIndent(buf *bytes.Buffer, level int) {
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
}

func ednKeyword(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, " ", "-")
}
