package scopes

import (
	"reflect"
	"sort"
	"testing"
)

func sorted(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

func TestExpand_AggregateAddsConcrete(t *testing.T) {
	got := Expand([]string{AllAppeal})

	want := []string{
		AllAppeal,
		CreateAppeal, ReadAppeal, UpdateAppeal, DeleteAppeal,
		CreateAppealResponse, UpdateAppealResponse,
	}
	if !reflect.DeepEqual(sorted(got), sorted(want)) {
		t.Fatalf("Expand(all:appeal) = %v want %v", got, want)
	}
}

func TestExpand_UnknownScopesPassThrough(t *testing.T) {
	got := Expand([]string{"write:everything", CreateAppeal})
	want := []string{"write:everything", CreateAppeal}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v want %v", got, want)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	once := Expand([]string{AllAppeal, AllSubmission, "custom:thing"})
	twice := Expand(once)

	if !reflect.DeepEqual(sorted(once), sorted(twice)) {
		t.Fatalf("second expansion changed the set:\nonce  = %v\ntwice = %v", once, twice)
	}
}

func TestExpand_DuplicatesDropped(t *testing.T) {
	got := Expand([]string{CreateAppeal, CreateAppeal, AllAppeal})
	seen := map[string]int{}
	for _, s := range got {
		seen[s]++
		if seen[s] > 1 {
			t.Fatalf("duplicate scope %q in %v", s, got)
		}
	}
}

func TestExpand_Empty(t *testing.T) {
	if got := Expand(nil); got != nil {
		t.Fatalf("Expand(nil) = %v want nil", got)
	}
	if got := Expand([]string{"", "  "}); len(got) != 0 {
		t.Fatalf("Expand(blank) = %v want empty", got)
	}
}

func TestSplit(t *testing.T) {
	got := Split("  create:appeal   read:appeal ")
	want := []string{"create:appeal", "read:appeal"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split = %v want %v", got, want)
	}
}

func TestTable_MappedScopesAreConcrete(t *testing.T) {
	// no aggregate may appear as a mapped value, expansion is one level
	for agg, concrete := range Table {
		for _, c := range concrete {
			if _, ok := Table[c]; ok {
				t.Fatalf("table maps %q to aggregate %q", agg, c)
			}
		}
	}
}
