package postprocess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type record struct {
	name     string
	score    *int64
	created  *int64
	activity *int64
}

func (r record) SortValue(field Field) (int64, bool) {
	var v *int64
	switch field {
	case FieldScore:
		v = r.score
	case FieldCreationDate:
		v = r.created
	case FieldLastActivityDate:
		v = r.activity
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func i64(v int64) *int64 {
	return &v
}

func scores(records []record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = *r.score
	}
	return out
}

func names(records []record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.name
	}
	return out
}

func TestApplyVotes(t *testing.T) {
	items := []record{
		{name: "a", score: i64(5)},
		{name: "b", score: i64(-2)},
		{name: "c", score: i64(10)},
	}

	asc := Apply(items, Config{Sort: SortVotes, Order: OrderAsc})
	require.Equal(t, []int64{-2, 5, 10}, scores(asc))

	filtered := Apply(items, Config{Sort: SortVotes, Order: OrderAsc, Min: i64(0)})
	require.Equal(t, []int64{5, 10}, scores(filtered))

	desc := Apply(items, Config{Sort: SortVotes, Order: OrderDesc, Max: i64(5)})
	require.Equal(t, []int64{5, -2}, scores(desc))

	// input is left untouched
	require.Equal(t, []int64{5, -2, 10}, scores(items))
}

func TestApplyBoundsIgnoredForActivity(t *testing.T) {
	items := []record{
		{name: "a", activity: i64(100), score: i64(1)},
		{name: "b", activity: i64(300), score: i64(1)},
		{name: "c", activity: i64(200), score: i64(1)},
	}
	out := Apply(items, Config{Sort: SortActivity, Order: OrderDesc, Min: i64(250), Max: i64(250)})
	if diff := cmp.Diff([]string{"b", "c", "a"}, names(out)); diff != "" {
		t.Fatal(diff)
	}
}

func TestApplyMissingFieldSortsAsZero(t *testing.T) {
	items := []record{
		{name: "pos", created: i64(10)},
		{name: "missing"},
		{name: "neg", created: i64(-10)},
		{name: "zero", created: i64(0)},
	}
	out := Apply(items, Config{Sort: SortCreation, Order: OrderAsc})
	// stable: "missing" keeps its position ahead of "zero"
	require.Equal(t, []string{"neg", "missing", "zero", "pos"}, names(out))

	out = Apply(items, Config{Sort: SortCreation, Order: OrderAsc, Min: i64(1)})
	require.Equal(t, []string{"pos"}, names(out))
}

func TestApplyTabSortsAreNoop(t *testing.T) {
	items := []record{{name: "b", score: i64(1)}, {name: "a", score: i64(2)}}
	for _, sort := range []Sort{SortHot, SortWeek, SortMonth} {
		out := Apply(items, Config{Sort: sort, Order: OrderAsc, Min: i64(2)})
		require.Equal(t, []string{"b", "a"}, names(out))
	}
}

func TestSortByKey(t *testing.T) {
	items := []record{{name: "go"}, {name: "aws"}, {name: "r"}}
	key := func(r record) string { return r.name }

	require.Equal(t, []string{"r", "go", "aws"}, names(SortByKey(items, key, OrderDesc)))
	require.Equal(t, []string{"aws", "go", "r"}, names(SortByKey(items, key, OrderAsc)))
	require.Equal(t, []string{"go", "aws", "r"}, names(items))
}
