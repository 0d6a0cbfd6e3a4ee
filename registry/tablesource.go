package registry

// ColSpec describes one table column.
type ColSpec struct {
	Name string
	Type string
}

// Selection is a named row-id set, as tracked by tbl_update_selection.
type Selection struct {
	Name string
	Rows []int64
}

// TableSource is the application-implemented collaborator behind every
// Table component (spec.md §6). The core never stores row data itself;
// it only routes built-in method calls to this interface and forwards
// the signals it fires back out to subscribers.
type TableSource interface {
	Columns() []ColSpec
	NumRows() int
	CurrentRows() [][]any
	CurrentSelections() map[string]Selection

	HandleInsert(rows [][]any) error
	HandleUpdate(keys []int64, rows [][]any) error
	HandleDeletion(keys []int64) error
	HandleReset() error
	HandleSetSelection(sel Selection) error
}

// MemoryTableSource is a reference TableSource backed by an in-process
// map of rows keyed by row key, used by tests and the reference server.
type MemoryTableSource struct {
	cols       []ColSpec
	rows       map[int64][]any
	nextKey    int64
	selections map[string]Selection
}

// NewMemoryTableSource returns an empty reference table over cols.
func NewMemoryTableSource(cols []ColSpec) *MemoryTableSource {
	return &MemoryTableSource{
		cols:       cols,
		rows:       map[int64][]any{},
		selections: map[string]Selection{},
	}
}

func (m *MemoryTableSource) Columns() []ColSpec { return m.cols }
func (m *MemoryTableSource) NumRows() int       { return len(m.rows) }

func (m *MemoryTableSource) CurrentRows() [][]any {
	out := make([][]any, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out
}

func (m *MemoryTableSource) CurrentSelections() map[string]Selection {
	return m.selections
}

func (m *MemoryTableSource) HandleInsert(rows [][]any) error {
	for _, r := range rows {
		m.rows[m.nextKey] = r
		m.nextKey++
	}
	return nil
}

func (m *MemoryTableSource) HandleUpdate(keys []int64, rows [][]any) error {
	for i, k := range keys {
		if i < len(rows) {
			m.rows[k] = rows[i]
		}
	}
	return nil
}

func (m *MemoryTableSource) HandleDeletion(keys []int64) error {
	for _, k := range keys {
		delete(m.rows, k)
	}
	return nil
}

func (m *MemoryTableSource) HandleReset() error {
	m.rows = map[int64][]any{}
	m.nextKey = 0
	m.selections = map[string]Selection{}
	return nil
}

func (m *MemoryTableSource) HandleSetSelection(sel Selection) error {
	m.selections[sel.Name] = sel
	return nil
}
