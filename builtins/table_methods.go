// Package builtins implements the NOODLES built-in table and entity
// methods (spec.md §4.9), wiring them into a dispatch.Dispatcher at
// table/entity creation time the way noodlesstate.cpp wires mthd_tbl_*
// and the entity method table into every new component.
package builtins

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

// Table method names, matching spec.md §4.9's noo:: prefix verbatim.
const (
	MethodTableSubscribe       = "noo::tbl_subscribe"
	MethodTableInsert          = "noo::tbl_insert"
	MethodTableUpdate          = "noo::tbl_update"
	MethodTableRemove          = "noo::tbl_remove"
	MethodTableClear           = "noo::tbl_clear"
	MethodTableUpdateSelection = "noo::tbl_update_selection"
)

// Signal names fired by the table methods above.
const (
	SignalTableUpdated          = "noo::tbl_updated"
	SignalTableRowsRemoved      = "noo::tbl_rows_removed"
	SignalTableReset            = "noo::tbl_reset"
	SignalTableSelectionUpdated = "noo::tbl_selection_updated"
)

// TableBinding is the result of AttachTableMethods: the method/signal ids
// created, ready to append onto a Table component's Methods/Signals
// fields before Registry.CreateTable.
type TableBinding struct {
	Subscribe, Insert, Update, Remove, Clear, UpdateSelection id.Id[id.MethodTag]
	Updated, RowsRemoved, Reset, SelectionUpdated             id.Id[id.SignalTag]
}

func (b TableBinding) Methods() []id.Id[id.MethodTag] {
	return []id.Id[id.MethodTag]{b.Subscribe, b.Insert, b.Update, b.Remove, b.Clear, b.UpdateSelection}
}

func (b TableBinding) Signals() []id.Id[id.SignalTag] {
	return []id.Id[id.SignalTag]{b.Updated, b.RowsRemoved, b.Reset, b.SelectionUpdated}
}

// AttachTableMethods creates the six built-in methods and four signals
// for one table, registers their handlers against d, and returns the
// binding the caller threads into the Table component before creation.
func AttachTableMethods(
	reg *registry.Registry,
	w broadcast.Writer,
	d *dispatch.Dispatcher,
	sig *dispatch.SignalBroadcaster,
	tableOf func(id.AnyID) (id.Id[id.TableTag], registry.Table, bool),
	subscriberOf func(id.AnyID) broadcast.ClientID,
	source func(id.Id[id.TableTag]) registry.TableSource,
) TableBinding {
	var b TableBinding
	b.Subscribe = reg.CreateMethod(w, registry.Method{Name: MethodTableSubscribe})
	b.Insert = reg.CreateMethod(w, registry.Method{Name: MethodTableInsert, ArgDoc: []string{"rows"}})
	b.Update = reg.CreateMethod(w, registry.Method{Name: MethodTableUpdate, ArgDoc: []string{"keys", "rows"}})
	b.Remove = reg.CreateMethod(w, registry.Method{Name: MethodTableRemove, ArgDoc: []string{"keys"}})
	b.Clear = reg.CreateMethod(w, registry.Method{Name: MethodTableClear})
	b.UpdateSelection = reg.CreateMethod(w, registry.Method{Name: MethodTableUpdateSelection, ArgDoc: []string{"selection"}})

	b.Updated = reg.CreateSignal(w, registry.Signal{Name: SignalTableUpdated})
	b.RowsRemoved = reg.CreateSignal(w, registry.Signal{Name: SignalTableRowsRemoved})
	b.Reset = reg.CreateSignal(w, registry.Signal{Name: SignalTableReset})
	b.SelectionUpdated = reg.CreateSignal(w, registry.Signal{Name: SignalTableSelectionUpdated})

	d.Register(b.Subscribe, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		src := source(tid)
		sig.Subscribe(ctx, subscriberOf(ctx))
		return tableInitSnapshot(src), nil
	})

	d.Register(b.Insert, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		rows := decodeRows(args, 0)
		if err := source(tid).HandleInsert(rows); err != nil {
			return anyvar.Null, dispatch.Internal(err)
		}
		sig.Fire(b.Updated, ctx, args)
		return anyvar.Null, nil
	})

	d.Register(b.Update, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		if len(args) < 2 {
			return anyvar.Null, dispatch.InvalidParams("tbl_update requires keys and rows")
		}
		keys := anyvar.CoerceInt64List(args[0])
		rows := decodeRows(args, 1)
		if err := source(tid).HandleUpdate(keys, rows); err != nil {
			return anyvar.Null, dispatch.Internal(err)
		}
		sig.Fire(b.Updated, ctx, args)
		return anyvar.Null, nil
	})

	d.Register(b.Remove, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		if len(args) < 1 {
			return anyvar.Null, dispatch.InvalidParams("tbl_remove requires keys")
		}
		keys := anyvar.CoerceInt64List(args[0])
		if err := source(tid).HandleDeletion(keys); err != nil {
			return anyvar.Null, dispatch.Internal(err)
		}
		sig.Fire(b.RowsRemoved, ctx, args)
		return anyvar.Null, nil
	})

	d.Register(b.Clear, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		if err := source(tid).HandleReset(); err != nil {
			return anyvar.Null, dispatch.Internal(err)
		}
		sig.Fire(b.Reset, ctx, nil)
		return anyvar.Null, nil
	})

	d.Register(b.UpdateSelection, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		tid, _, ok := tableOf(ctx)
		if !ok {
			return anyvar.Null, dispatch.Internal(nil)
		}
		if len(args) < 1 {
			return anyvar.Null, dispatch.InvalidParams("tbl_update_selection requires a selection")
		}
		sel := decodeSelection(args[0])
		if err := source(tid).HandleSetSelection(sel); err != nil {
			return anyvar.Null, dispatch.Internal(err)
		}
		sig.Fire(b.SelectionUpdated, ctx, args)
		return anyvar.Null, nil
	})

	return b
}

func tableInitSnapshot(src registry.TableSource) anyvar.AnyVar {
	cols := make([]anyvar.AnyVar, 0, len(src.Columns()))
	for _, c := range src.Columns() {
		cols = append(cols, anyvar.Map(map[string]anyvar.AnyVar{
			"name": anyvar.String(c.Name),
			"type": anyvar.String(c.Type),
		}))
	}
	return anyvar.Map(map[string]anyvar.AnyVar{
		"columns":    anyvar.List(cols),
		"row_count":  anyvar.Int64(int64(src.NumRows())),
		"rows":       rowsToAnyVar(src.CurrentRows()),
		"selections": selectionsToAnyVar(src.CurrentSelections()),
	})
}

// rowsToAnyVar is decodeRows' inverse, used to hand a fresh subscriber
// the table's full current contents instead of just its shape.
func rowsToAnyVar(rows [][]any) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(rows))
	for i, row := range rows {
		cells := make([]anyvar.AnyVar, len(row))
		for j, c := range row {
			cells[j] = anyToAnyVar(c)
		}
		out[i] = anyvar.List(cells)
	}
	return anyvar.List(out)
}

func anyToAnyVar(v any) anyvar.AnyVar {
	switch t := v.(type) {
	case int64:
		return anyvar.Int64(t)
	case float64:
		return anyvar.Float64(t)
	case string:
		return anyvar.String(t)
	default:
		return anyvar.Null
	}
}

func selectionsToAnyVar(sels map[string]registry.Selection) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, 0, len(sels))
	for _, s := range sels {
		out = append(out, anyvar.Map(map[string]anyvar.AnyVar{
			"name": anyvar.String(s.Name),
			"rows": anyvar.PackedInt64List(s.Rows),
		}))
	}
	return anyvar.List(out)
}

func decodeRows(args []anyvar.AnyVar, idx int) [][]any {
	if idx >= len(args) {
		return nil
	}
	rowsVar := args[idx].ToList()
	out := make([][]any, 0, len(rowsVar))
	for _, rv := range rowsVar {
		cellsVar := rv.ToList()
		row := make([]any, 0, len(cellsVar))
		for _, cv := range cellsVar {
			row = append(row, cellToAny(cv))
		}
		out = append(out, row)
	}
	return out
}

func cellToAny(v anyvar.AnyVar) any {
	switch {
	case v.HasInt():
		return v.ToInt()
	case v.HasReal():
		return v.ToReal()
	case v.HasString():
		return v.ToString()
	default:
		return nil
	}
}

func decodeSelection(v anyvar.AnyVar) registry.Selection {
	m := v.ToMap()
	return registry.Selection{
		Name: m["name"].ToString(),
		Rows: anyvar.CoerceInt64List(m["rows"]),
	}
}
