package domain

import (
	"strconv"
	"time"
)

type CellKind int

const (
	CellString CellKind = iota
	CellInt
	CellTime
)

// Cell is a single table value before rendering. Exactly one of the value
// fields is meaningful, selected by Kind.
type Cell struct {
	Kind CellKind
	Str  string
	Int  int
	Time time.Time
}

func StringCell(s string) Cell  { return Cell{Kind: CellString, Str: s} }
func IntCell(n int) Cell        { return Cell{Kind: CellInt, Int: n} }
func TimeCell(t time.Time) Cell { return Cell{Kind: CellTime, Time: t} }

func (c Cell) String() string {
	switch c.Kind {
	case CellInt:
		return strconv.Itoa(c.Int)
	case CellTime:
		return c.Time.Format(time.RFC3339)
	default:
		return c.Str
	}
}

// Table is the canonical review table. Header is always emitted as the first
// row of any serialization; Rows keep fetch order.
type Table struct {
	Header []string
	Rows   [][]string
}
