package report

import (
	"strings"

	"github.com/edustar/attendance-register/internal/register"
)

// CSV renders the selection as delimited text: a header line and one line per
// record, every field wrapped in double quotes. Embedded quote characters are
// deliberately not doubled; downstream consumers of this register's exports
// depend on the bytes staying as they always were.
func CSV(records []register.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, quoteJoin(Headers))
	for _, row := range Rows(records) {
		lines = append(lines, quoteJoin(row))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func quoteJoin(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + cell + `"`
	}
	return strings.Join(quoted, ",")
}
