package datatable

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID      string
	Name    string
	Status  string
	Visits  int
	Created time.Time
}

func newTable() *Table[row] {
	return New(func(r row) string { return r.ID },
		Column[row]{ID: "name", Header: "Nombre", Value: func(r row) any { return r.Name }, Sortable: true, Filterable: true},
		Column[row]{ID: "status", Header: "Estado", Value: func(r row) any { return r.Status }, Sortable: true, Filterable: true, Hideable: true},
		Column[row]{ID: "visits", Header: "Visitas", Value: func(r row) any { return r.Visits }, Sortable: true, Hideable: true},
		Column[row]{ID: "created", Header: "Creado", Value: func(r row) any { return r.Created }, Sortable: true},
	)
}

func sample() []row {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []row{
		{"1", "Ana Torres", "pending", 3, base.Add(48 * time.Hour)},
		{"2", "luis Paredes", "confirmed", 10, base},
		{"3", "Carla Núñez", "cancelled", 1, base.Add(24 * time.Hour)},
		{"4", "Bruno Díaz", "pending", 7, base.Add(72 * time.Hour)},
	}
}

func names(rows []row) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestSortCaseInsensitive(t *testing.T) {
	p := newTable().Apply(sample(), State{Sort: []SortSpec{{ID: "name"}}})
	assert.Equal(t, []string{"Ana Torres", "Bruno Díaz", "Carla Núñez", "luis Paredes"}, names(p.Rows))
}

func TestSortNumericDesc(t *testing.T) {
	p := newTable().Apply(sample(), State{Sort: []SortSpec{{ID: "visits", Desc: true}}})
	assert.Equal(t, []string{"luis Paredes", "Bruno Díaz", "Ana Torres", "Carla Núñez"}, names(p.Rows))
}

func TestSortMultiKey(t *testing.T) {
	p := newTable().Apply(sample(), State{Sort: []SortSpec{{ID: "status"}, {ID: "created", Desc: true}}})
	assert.Equal(t, []string{"Carla Núñez", "luis Paredes", "Bruno Díaz", "Ana Torres"}, names(p.Rows))
}

func TestUnknownSortColumnIgnored(t *testing.T) {
	rows := sample()
	p := newTable().Apply(rows, State{Sort: []SortSpec{{ID: "nope"}}})
	assert.Equal(t, names(rows), names(p.Rows))
}

func TestColumnAndGlobalFilter(t *testing.T) {
	tbl := newTable()

	p := tbl.Apply(sample(), State{ColumnFilters: map[string]string{"name": "TORRES"}})
	assert.Equal(t, []string{"Ana Torres"}, names(p.Rows))
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 1, p.Filtered)

	p = tbl.Apply(sample(), State{GlobalFilter: "confirmed"})
	assert.Equal(t, []string{"luis Paredes"}, names(p.Rows))

	// visits is not filterable
	p = tbl.Apply(sample(), State{ColumnFilters: map[string]string{"visits": "10"}})
	assert.Len(t, p.Rows, 4)
}

func TestStatusFilter(t *testing.T) {
	p := newTable().Apply(sample(), State{StatusColumn: "status", StatusValues: []string{"PENDING", "cancelled"}})
	assert.Equal(t, []string{"Ana Torres", "Carla Núñez", "Bruno Díaz"}, names(p.Rows))
}

func TestPagination(t *testing.T) {
	var rows []row
	for i := 0; i < 45; i++ {
		rows = append(rows, row{ID: fmt.Sprint(i), Name: fmt.Sprintf("p%02d", i)})
	}
	tbl := newTable()

	p := tbl.Apply(rows, State{PageSize: 20, PageIndex: 2})
	assert.Len(t, p.Rows, 5)
	assert.Equal(t, 3, p.PageCount)
	assert.True(t, p.CanPrevious)
	assert.False(t, p.CanNext)

	p = tbl.Apply(rows, State{PageSize: 20, PageIndex: 99})
	assert.Equal(t, 2, p.PageIndex)

	p = tbl.Apply(rows, State{PageSize: 15})
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Len(t, p.Rows, 10)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, p.PageSizes)

	p = tbl.Apply(nil, State{PageSize: 10})
	assert.Empty(t, p.Rows)
	assert.Equal(t, 0, p.PageIndex)
	assert.False(t, p.CanNext)
}

func TestVisibilityAndSelection(t *testing.T) {
	p := newTable().Apply(sample(), State{
		Hidden:   map[string]bool{"visits": true, "created": true},
		Selected: map[string]bool{"1": true, "3": true, "99": true},
		Sort:     []SortSpec{{ID: "name", Desc: true}},
	})

	var ids []string
	for _, c := range p.Columns {
		ids = append(ids, c.ID)
	}
	// created is not hideable
	assert.Equal(t, []string{"name", "status", "created"}, ids)
	assert.Equal(t, "desc", p.Columns[0].Sorted)
	assert.Equal(t, 2, p.SelectedCount)
}

func TestStateFromQuery(t *testing.T) {
	q, err := url.ParseQuery("sort=name,-visits&q=ana&f_status=pend&status=pending,confirmed&hide=visits&selected=1,2&page=3&page_size=30")
	require.NoError(t, err)

	s := StateFromQuery(q, "status")
	assert.Equal(t, []SortSpec{{ID: "name"}, {ID: "visits", Desc: true}}, s.Sort)
	assert.Equal(t, "ana", s.GlobalFilter)
	assert.Equal(t, "pend", s.ColumnFilters["status"])
	assert.Equal(t, []string{"pending", "confirmed"}, s.StatusValues)
	assert.True(t, s.Hidden["visits"])
	assert.True(t, s.Selected["2"])
	assert.Equal(t, 2, s.PageIndex)
	assert.Equal(t, 30, s.PageSize)

	s = StateFromQuery(url.Values{"page_size": {"7"}}, "")
	assert.Equal(t, DefaultPageSize, s.PageSize)
}
