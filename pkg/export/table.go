package export

import "fmt"

// Column describes one exported field. Width is a relative weight used by the
// PDF renderer; zero means equal share.
type Column struct {
	Key   string
	Label string
	Width float64
}

// Table is renderer-independent tabular content.
type Table struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export table %q has no columns", t.Title)
	}
	return nil
}

// Renderer turns a table into a file body.
type Renderer interface {
	Render(Table) ([]byte, error)
	ContentType() string
	Extension() string
}
