// Package datatable implements the state handling behind the admin tables:
// sorting, column and global filtering, status filtering, column visibility,
// row selection and pagination. It knows nothing about domain entities.
package datatable

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PageSizes are the page sizes offered by the page-size selector
var PageSizes = []int{10, 20, 30, 40, 50}

const DefaultPageSize = 10

// Column describes one table column over rows of type T
type Column[T any] struct {
	ID         string
	Header     string
	Value      func(T) any
	Sortable   bool
	Filterable bool
	Hideable   bool
}

type SortSpec struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// State is the table state the UI sends with every request
type State struct {
	Sort          []SortSpec
	ColumnFilters map[string]string
	GlobalFilter  string
	StatusColumn  string
	StatusValues  []string
	Hidden        map[string]bool
	Selected      map[string]bool
	PageIndex     int
	PageSize      int
}

type ColumnInfo struct {
	ID       string `json:"id"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
	Hideable bool   `json:"hideable"`
	Sorted   string `json:"sorted,omitempty"`
}

// Page is the rendered result of applying a State
type Page[T any] struct {
	Rows          []T          `json:"rows"`
	Columns       []ColumnInfo `json:"columns"`
	Total         int          `json:"total"`
	Filtered      int          `json:"filtered"`
	PageIndex     int          `json:"page_index"`
	PageSize      int          `json:"page_size"`
	PageCount     int          `json:"page_count"`
	CanPrevious   bool         `json:"can_previous"`
	CanNext       bool         `json:"can_next"`
	SelectedCount int          `json:"selected_count"`
	PageSizes     []int        `json:"page_sizes"`
}

type Table[T any] struct {
	columns []Column[T]
	byID    map[string]int
	rowID   func(T) string
}

func New[T any](rowID func(T) string, columns ...Column[T]) *Table[T] {
	byID := make(map[string]int, len(columns))
	for i, c := range columns {
		byID[c.ID] = i
	}
	return &Table[T]{columns: columns, byID: byID, rowID: rowID}
}

// NormalizePageSize maps any size outside PageSizes to DefaultPageSize
func NormalizePageSize(n int) int {
	for _, s := range PageSizes {
		if s == n {
			return n
		}
	}
	return DefaultPageSize
}

// Apply filters, sorts and paginates rows. rows is not modified.
func (t *Table[T]) Apply(rows []T, s State) Page[T] {
	filtered := make([]T, 0, len(rows))
	for _, r := range rows {
		if t.matches(r, s) {
			filtered = append(filtered, r)
		}
	}

	t.sort(filtered, s.Sort)

	size := NormalizePageSize(s.PageSize)
	pageCount := (len(filtered) + size - 1) / size
	index := s.PageIndex
	if index >= pageCount {
		index = pageCount - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	selected := 0
	if len(s.Selected) > 0 && t.rowID != nil {
		for _, r := range filtered {
			if s.Selected[t.rowID(r)] {
				selected++
			}
		}
	}

	return Page[T]{
		Rows:          filtered[start:end],
		Columns:       t.visibleColumns(s),
		Total:         len(rows),
		Filtered:      len(filtered),
		PageIndex:     index,
		PageSize:      size,
		PageCount:     pageCount,
		CanPrevious:   index > 0,
		CanNext:       index+1 < pageCount,
		SelectedCount: selected,
		PageSizes:     PageSizes,
	}
}

func (t *Table[T]) matches(row T, s State) bool {
	for id, needle := range s.ColumnFilters {
		if needle == "" {
			continue
		}
		i, ok := t.byID[id]
		if !ok || !t.columns[i].Filterable {
			continue
		}
		if !contains(t.columns[i].Value(row), needle) {
			return false
		}
	}

	if s.GlobalFilter != "" {
		found := false
		for _, c := range t.columns {
			if c.Filterable && contains(c.Value(row), s.GlobalFilter) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.StatusColumn != "" && len(s.StatusValues) > 0 {
		i, ok := t.byID[s.StatusColumn]
		if ok {
			v := text(t.columns[i].Value(row))
			found := false
			for _, want := range s.StatusValues {
				if strings.EqualFold(v, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	return true
}

func (t *Table[T]) sort(rows []T, specs []SortSpec) {
	var active []SortSpec
	for _, sp := range specs {
		if i, ok := t.byID[sp.ID]; ok && t.columns[i].Sortable {
			active = append(active, sp)
		}
	}
	if len(active) == 0 {
		return
	}

	sort.SliceStable(rows, func(a, b int) bool {
		for _, sp := range active {
			col := t.columns[t.byID[sp.ID]]
			c := compare(col.Value(rows[a]), col.Value(rows[b]))
			if c == 0 {
				continue
			}
			if sp.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func (t *Table[T]) visibleColumns(s State) []ColumnInfo {
	sorted := make(map[string]string, len(s.Sort))
	for _, sp := range s.Sort {
		if sp.Desc {
			sorted[sp.ID] = "desc"
		} else {
			sorted[sp.ID] = "asc"
		}
	}

	out := make([]ColumnInfo, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Hideable && s.Hidden[c.ID] {
			continue
		}
		out = append(out, ColumnInfo{
			ID:       c.ID,
			Header:   c.Header,
			Sortable: c.Sortable,
			Hideable: c.Hideable,
			Sorted:   sorted[c.ID],
		})
	}
	return out
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func contains(v any, needle string) bool {
	return strings.Contains(strings.ToLower(text(v)), strings.ToLower(strings.TrimSpace(needle)))
}

func compare(a, b any) int {
	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmpOrdered(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(strings.ToLower(text(a)), strings.ToLower(text(b)))
}

func cmpOrdered[V int | int64 | float64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// StateFromQuery reads table state from query parameters:
//
//	sort=name,-created  q=ana  f_email=gmail  status=pending,confirmed
//	hide=email  selected=1,2  page=2 (1-based)  page_size=20
func StateFromQuery(q url.Values, statusColumn string) State {
	s := State{
		ColumnFilters: map[string]string{},
		Hidden:        map[string]bool{},
		Selected:      map[string]bool{},
		GlobalFilter:  strings.TrimSpace(q.Get("q")),
		StatusColumn:  statusColumn,
	}

	for _, field := range splitList(q.Get("sort")) {
		if strings.HasPrefix(field, "-") {
			s.Sort = append(s.Sort, SortSpec{ID: field[1:], Desc: true})
		} else {
			s.Sort = append(s.Sort, SortSpec{ID: field})
		}
	}

	for key, vals := range q {
		if strings.HasPrefix(key, "f_") && len(vals) > 0 {
			s.ColumnFilters[strings.TrimPrefix(key, "f_")] = vals[0]
		}
	}

	s.StatusValues = splitList(q.Get("status"))
	for _, id := range splitList(q.Get("hide")) {
		s.Hidden[id] = true
	}
	for _, id := range splitList(q.Get("selected")) {
		s.Selected[id] = true
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		s.PageIndex = page - 1
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		s.PageSize = size
	}
	s.PageSize = NormalizePageSize(s.PageSize)

	return s
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
