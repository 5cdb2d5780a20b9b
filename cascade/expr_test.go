package cascade_test

import (
	"testing"

	"github.com/casualjim/murmur"
	"github.com/casualjim/murmur/cascade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Region string  `json:"region"`
}

func TestPushExprFiltersLikeTheHandWrittenPredicate(t *testing.T) {
	orders := []order{
		{ID: "1", Amount: 50, Region: "eu"},
		{ID: "2", Amount: 150, Region: "us"},
		{ID: "3", Amount: 250, Region: "eu"},
	}
	pred := func(o order) bool { return o.Amount > 100 && o.Region == "eu" }

	src := murmur.New[order]()
	defer src.Close()
	byExpr := murmur.New[order]()
	defer byExpr.Close()
	byPred := murmur.New[order]()
	defer byPred.Close()

	in := drainInto(t, src)
	exprOut := drainInto(t, byExpr)
	predOut := drainInto(t, byPred)

	ce := cascade.New[order]()
	require.NoError(t, cascade.PushExpr(ce, byExpr, `event.amount > 100.0 && event.region == "eu"`))

	cp := cascade.New[order]()
	cascade.Push(cp, byPred, pred)

	_, err := src.Extend(orders...)
	require.NoError(t, err)
	_, err = ce.Drain(in)
	require.NoError(t, err)

	// replay for the predicate cascade
	in2 := drainInto(t, src)
	_, err = src.Extend(orders...)
	require.NoError(t, err)
	_, err = cp.Drain(in2)
	require.NoError(t, err)

	want, err := predOut.Peek()
	require.NoError(t, err)
	got, err := exprOut.Peek()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []order{{ID: "3", Amount: 250, Region: "eu"}}, got)
}

func TestPushExprCompileErrorSurfacesAtRegistration(t *testing.T) {
	c := cascade.New[order]()
	dst := murmur.New[order]()
	defer dst.Close()

	err := cascade.PushExpr(c, dst, `event.amount >`)
	require.Error(t, err)
	assert.Zero(t, c.Len(), "a failed registration must not add a link")
}

func TestPushExprNonBooleanResultDropsEvent(t *testing.T) {
	src := murmur.New[order]()
	defer src.Close()
	dst := murmur.New[order]()
	defer dst.Close()

	in := drainInto(t, src)
	out := drainInto(t, dst)

	c := cascade.New[order]()
	require.NoError(t, cascade.PushExpr(c, dst, `event.amount`))

	_, err := src.Push(order{ID: "1", Amount: 10})
	require.NoError(t, err)
	_, err = c.Drain(in)
	require.NoError(t, err)

	evs, err := out.Peek()
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestPushExprNowMs(t *testing.T) {
	src := murmur.New[order]()
	defer src.Close()
	dst := murmur.New[order]()
	defer dst.Close()

	in := drainInto(t, src)
	out := drainInto(t, dst)

	c := cascade.New[order]()
	require.NoError(t, cascade.PushExpr(c, dst, `now_ms > 0`))

	_, err := src.Push(order{ID: "1"})
	require.NoError(t, err)
	_, err = c.Drain(in)
	require.NoError(t, err)

	evs, err := out.Peek()
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}
