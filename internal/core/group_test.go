package core

import "testing"

func TestGroupRows(t *testing.T) {
	rows := []RawRow{
		{"Email": "a@uni.ro", "n": 1},
		{"Email": "b@uni.ro", "n": 2},
		{"Email": "a@uni.ro", "n": 3},
		{"Email": "c@uni.ro", "n": 4},
		{"Email": "b@uni.ro", "n": 5},
	}

	groups := GroupRows(rows, "Email")

	wantKeys := []string{"a@uni.ro", "b@uni.ro", "c@uni.ro"}
	wantRows := [][]int{{1, 3}, {2, 5}, {4}}

	if len(groups) != len(wantKeys) {
		t.Fatalf("GroupRows() returned %d groups, want %d", len(groups), len(wantKeys))
	}
	for i, g := range groups {
		if g.Key != wantKeys[i] {
			t.Errorf("group[%d].Key = %q, want %q", i, g.Key, wantKeys[i])
		}
		if len(g.Rows) != len(wantRows[i]) {
			t.Fatalf("group[%d] has %d rows, want %d", i, len(g.Rows), len(wantRows[i]))
		}
		for j, n := range wantRows[i] {
			if g.Rows[j]["n"] != n {
				t.Errorf("group[%d].Rows[%d].n = %v, want %d", i, j, g.Rows[j]["n"], n)
			}
		}
	}
}

func TestGroupRows_NoKeyNormalization(t *testing.T) {
	rows := []RawRow{
		{"Email": "Ana@uni.ro"},
		{"Email": "ana@uni.ro"},
		{"Email": "ana@uni.ro "},
	}

	groups := GroupRows(rows, "Email")
	if len(groups) != 3 {
		t.Errorf("GroupRows() = %d groups, want 3 (keys are case and whitespace sensitive)", len(groups))
	}
}

func TestGroupRows_BlankKeysShareOneGroup(t *testing.T) {
	rows := []RawRow{
		{"Email": "a@uni.ro"},
		{"Other": "no email column"},
		{"Email": ""},
		{"Email": "a@uni.ro"},
	}

	groups := GroupRows(rows, "Email")
	if len(groups) != 2 {
		t.Fatalf("GroupRows() = %d groups, want 2", len(groups))
	}
	if groups[1].Key != "" {
		t.Errorf("group[1].Key = %q, want empty", groups[1].Key)
	}
	if len(groups[1].Rows) != 2 {
		t.Errorf("blank-key group has %d rows, want 2", len(groups[1].Rows))
	}
}

func TestGroupRows_PreservesRowCount(t *testing.T) {
	inputs := [][]RawRow{
		nil,
		{{"Email": "x"}},
		{{"Email": "x"}, {"Email": "x"}, {"Email": "y"}, {}, {"Email": "z"}, {"Email": "y"}},
	}

	for i, rows := range inputs {
		total := 0
		for _, g := range GroupRows(rows, "Email") {
			total += len(g.Rows)
		}
		if total != len(rows) {
			t.Errorf("input %d: grouped %d rows, want %d", i, total, len(rows))
		}
	}
}
