package transform

import (
	stderrors "errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/itchyny/gojq"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// Query runs a jq expression over the parsed value. A single result replaces
// the value; several results are collected into an array. jq hands objects
// back unordered, so results take their key order from the input document.
type Query struct {
	expr  string
	query *gojq.Query
}

// NewQuery compiles expr
func NewQuery(expr string) (*Query, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid jq expression %q", expr), err)
	}
	return &Query{expr: expr, query: q}, nil
}

// Name implements Transformer
func (q *Query) Name() string {
	return "query"
}

// Apply implements Transformer
func (q *Query) Apply(v models.Value) (models.Value, error) {
	iter := q.query.Run(toJQ(v))

	var results models.Array
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return nil, fmt.Errorf("jq %q: %w", q.expr, err)
		}
		converted, err := fromJQ(out)
		if err != nil {
			return nil, err
		}
		results = append(results, restoreOrder(converted, v))
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// toJQ converts to the types gojq accepts: it rejects int64, so integers become int.
func toJQ(v models.Value) interface{} {
	switch t := v.(type) {
	case *models.Object:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			out[k] = toJQ(child)
		}
		return out
	case models.Array:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = toJQ(item)
		}
		return out
	case int64:
		return int(t)
	default:
		return t
	}
}

func fromJQ(v interface{}) (models.Value, error) {
	if b, ok := v.(*big.Int); ok {
		if b.IsInt64() {
			return b.Int64(), nil
		}
		f, _ := new(big.Float).SetInt(b).Float64()
		return f, nil
	}
	if m, ok := v.(map[string]interface{}); ok {
		for k, child := range m {
			converted, err := fromJQ(child)
			if err != nil {
				return nil, err
			}
			m[k] = converted
		}
		return models.Normalize(m)
	}
	if s, ok := v.([]interface{}); ok {
		out := make(models.Array, len(s))
		for i, child := range s {
			converted, err := fromJQ(child)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	return models.Normalize(v)
}

// restoreOrder returns the subtree of in that equals out, which keeps every
// key where the document had it. Values jq built itself are reordered by the
// position each key name first appears in the input; unknown keys stay last.
func restoreOrder(out, in models.Value) models.Value {
	var match models.Value
	found := false
	_ = models.Walk(in, func(_ string, sub models.Value) error {
		if models.Equal(sub, out) {
			match, found = sub, true
			return errStopWalk
		}
		return nil
	})
	if found {
		return match
	}

	rank := make(map[string]int)
	_ = models.Walk(in, func(_ string, sub models.Value) error {
		if obj, ok := sub.(*models.Object); ok {
			for _, k := range obj.Keys() {
				if _, seen := rank[k]; !seen {
					rank[k] = len(rank)
				}
			}
		}
		return nil
	})
	return reorder(out, rank)
}

var errStopWalk = stderrors.New("stop walk")

func reorder(v models.Value, rank map[string]int) models.Value {
	switch t := v.(type) {
	case *models.Object:
		keys := t.Keys()
		sort.SliceStable(keys, func(i, j int) bool {
			ri, okI := rank[keys[i]]
			rj, okJ := rank[keys[j]]
			switch {
			case okI && okJ:
				return ri < rj
			default:
				return okI && !okJ
			}
		})
		out := models.NewObject()
		for _, k := range keys {
			child, _ := t.Get(k)
			out.Set(k, reorder(child, rank))
		}
		return out
	case models.Array:
		out := make(models.Array, len(t))
		for i, item := range t {
			out[i] = reorder(item, rank)
		}
		return out
	}
	return v
}
