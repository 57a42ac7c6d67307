package wordsearch

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(coords ...[2]int) []Coordinate {
	out := make([]Coordinate, len(coords))
	for i, c := range coords {
		out[i] = Coordinate{Row: c[0], Col: c[1]}
	}
	return out
}

func TestIsPresent(t *testing.T) {
	line := []rune("XXCATX")
	assert.True(t, IsPresent("CAT", line))
	assert.True(t, IsPresent("TAC", line))
	assert.False(t, IsPresent("DOG", line))
	assert.Equal(t, "XXCATX", string(line), "line must not be modified")
}

func TestIsPresentRepeatedCallsSeeSameLine(t *testing.T) {
	line := []rune("ABCD")
	for range 3 {
		assert.True(t, IsPresent("ABC", line))
		assert.False(t, IsPresent("ACB", line))
	}
}

func TestPresent(t *testing.T) {
	g := mustGrid(t,
		"CATX",
		"OXXX",
		"WXXX",
	)
	tests := []struct {
		word string
		want bool
	}{
		{"CAT", true},  // row, forward
		{"TAC", true},  // row, backward
		{"COW", true},  // column, forward
		{"WOC", true},  // column, backward
		{"CXW", false}, // not contiguous
		{"DOG", false},
	}
	for _, tt := range tests {
		got, err := Present(tt.word, g)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Present(%q)", tt.word)
	}
}

func TestPresentNonSquareGrid(t *testing.T) {
	// Columns must come from the column count, not the row count.
	g := mustGrid(t, "ABCDE", "FGHIJ")
	ok, err := Present("EJ", g)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPresentSmallGrids(t *testing.T) {
	ok, err := Present("A", Grid{})
	require.NoError(t, err)
	assert.False(t, ok)

	// A single row has no vertical lines.
	g := mustGrid(t, "CAT")
	ok, err = Present("TAC", g)
	require.NoError(t, err)
	assert.True(t, ok)

	coords, err := Locate("A", g)
	require.NoError(t, err)
	assert.Equal(t, span([2]int{0, 1}), coords)
}

func TestPresentErrors(t *testing.T) {
	g := mustGrid(t, "AB", "CD")
	_, err := Present("", g)
	require.ErrorIs(t, err, ErrEmptyWord)

	_, err = Present("AB", Grid{[]rune("AB"), []rune("C")})
	require.ErrorIs(t, err, ErrInvalidGrid)
}

func TestFilter(t *testing.T) {
	g := mustGrid(t, "CAT", "DOG", "BAT")
	got, err := Filter([]string{"DOG", "EMU", "TAB", "CAT", "CDB"}, g)
	require.NoError(t, err)
	assert.Equal(t, []string{"DOG", "TAB", "CAT", "CDB"}, got)

	got, err = Filter(nil, g)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Filter([]string{"CAT", ""}, g)
	require.ErrorIs(t, err, ErrEmptyWord)
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		word string
		rows []string
		want []Coordinate
	}{
		{
			name: "rotated rows, first row wins",
			word: "MAS",
			rows: []string{"XMAS", "MASX", "ASXM", "SXMA"},
			want: span([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}),
		},
		{
			name: "first row",
			word: "CAT",
			rows: []string{"CAT", "DOG", "BAT"},
			want: span([2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2}),
		},
		{
			name: "vertical",
			word: "CAT",
			rows: []string{"C..", "A..", "T.."},
			want: span([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}),
		},
		{
			name: "backward in a row",
			word: "CAT",
			rows: []string{"TAC"},
			want: span([2]int{0, 2}, [2]int{0, 1}, [2]int{0, 0}),
		},
		{
			name: "upward in a column",
			word: "CAT",
			rows: []string{".T", ".A", ".C"},
			want: span([2]int{2, 1}, [2]int{1, 1}, [2]int{0, 1}),
		},
		{
			name: "offset start keeps full length",
			word: "DOG",
			rows: []string{"XXXXDOG", "XXXXXXX"},
			want: span([2]int{0, 4}, [2]int{0, 5}, [2]int{0, 6}),
		},
		{
			name: "leftmost occurrence",
			word: "AB",
			rows: []string{"XABAB"},
			want: span([2]int{0, 1}, [2]int{0, 2}),
		},
		{
			name: "multibyte letters",
			word: "ÉTÉ",
			rows: []string{"ÀÉTÉ"},
			want: span([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.word, mustGrid(t, tt.rows...))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Locate(%q) mismatch (-want +got):\n%s", tt.word, diff)
			}
		})
	}
}

// Legacy behaviour produced columns start..len(word)-1, which drops letters
// whenever the word does not begin in column 0. The span must always run
// from start to start+len(word)-1.
func TestLocateSpanStartsAtMatch(t *testing.T) {
	g := mustGrid(t, "..CAT")
	got, err := Locate("CAT", g)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, span([2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4}), got)
}

// Legacy behaviour clamped a missing row match to column 0 and reported the
// first row even when the word only existed in a column.
func TestLocateVerticalOnlyWordIsNotReportedInFirstRow(t *testing.T) {
	g := mustGrid(t, "XD", "XO", "XG")
	got, err := Locate("DOG", g)
	require.NoError(t, err)
	assert.Equal(t, span([2]int{0, 1}, [2]int{1, 1}, [2]int{2, 1}), got)
}

func TestLocateAbsent(t *testing.T) {
	g := mustGrid(t, "CAT", "DOG")
	got, err := Locate("EMU", g)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := Present("EMU", g)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocateErrors(t *testing.T) {
	_, err := Locate("", mustGrid(t, "A"))
	require.ErrorIs(t, err, ErrEmptyWord)

	_, err = Locate("A", Grid{[]rune("A"), []rune("BC")})
	require.ErrorIs(t, err, ErrInvalidGrid)
}

func TestPresentMatchesLocate(t *testing.T) {
	g := mustGrid(t,
		"HELLOX",
		"XAXXOX",
		"XTXXGX",
		"XSEMAG",
	)
	words := []string{"HELLO", "OLLEH", "HAT", "STAH", "GAMES", "DOG", "GOD", "GO", "X", "EMU", "LOG"}
	for _, w := range words {
		ok, err := Present(w, g)
		require.NoError(t, err)
		coords, err := Locate(w, g)
		require.NoError(t, err)
		assert.Equal(t, ok, len(coords) == runeLen(w), "word %q: present=%v coords=%v", w, ok, coords)
		assert.Equal(t, ok, coords != nil, "word %q", w)
	}
}

func TestLocateReversedWordMirrorsSpan(t *testing.T) {
	g := mustGrid(t, "XXCATX", "XXXXXX")
	fwd, err := Locate("CAT", g)
	require.NoError(t, err)
	back, err := Locate(Reverse("CAT"), g)
	require.NoError(t, err)

	want := slices.Clone(fwd)
	slices.Reverse(want)
	assert.Equal(t, want, back)
}

func TestLocateInvalidUTF8Word(t *testing.T) {
	g := mustGrid(t, "X\uFFFDY", "ABC")
	tests := []struct {
		word string
		want []Coordinate
	}{
		{"\xbd", span([2]int{0, 1})},
		{"\xff", span([2]int{0, 1})},
		{"\xef", span([2]int{0, 1})},
		{"X\xff", span([2]int{0, 0}, [2]int{0, 1})},
		{"\xffX", span([2]int{0, 1}, [2]int{0, 0})},
		{"\xff\xfe", nil},
	}
	for _, tc := range tests {
		ok, err := Present(tc.word, g)
		require.NoError(t, err)
		got, err := Locate(tc.word, g)
		require.NoError(t, err)

		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Locate(%q) mismatch (-want +got):\n%s", tc.word, diff)
		}
		assert.Equal(t, ok, len(got) == runeLen(tc.word), "word %q: present=%v coords=%v", tc.word, ok, got)
		for _, c := range got {
			assert.True(t, c.Row < g.Rows() && c.Col < g.Cols(), "word %q: %v outside the grid", tc.word, c)
		}
	}
}

func TestLocateAll(t *testing.T) {
	g := mustGrid(t, "CAT", "DOG", "BAT")
	got, err := LocateAll([]string{"CAT"}, g)
	require.NoError(t, err)
	want := Result{"CAT": span([2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("LocateAll mismatch (-want +got):\n%s", diff)
	}
}

func TestLocateAllScenarios(t *testing.T) {
	g := mustGrid(t,
		"TACX",
		"XXOX",
		"XXWX",
		"XXXX",
	)
	got, err := LocateAll([]string{"CAT", "COW", "EMU"}, g)
	require.NoError(t, err)

	want := Result{
		"CAT": span([2]int{0, 2}, [2]int{0, 1}, [2]int{0, 0}),
		"COW": span([2]int{0, 2}, [2]int{1, 2}, [2]int{2, 2}),
		"EMU": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("LocateAll mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, got["EMU"], "absent words map to an empty, non-nil slice")
}

func TestLocateAllAccumulatesBothOrientations(t *testing.T) {
	g := mustGrid(t,
		"ON",
		"NX",
	)
	got, err := LocateAll([]string{"ON"}, g)
	require.NoError(t, err)
	want := span(
		[2]int{0, 0}, [2]int{0, 1}, // row 0
		[2]int{0, 0}, [2]int{1, 0}, // column 0
	)
	assert.Equal(t, want, got["ON"])
}

func TestLocateAllPalindromeReportedOncePerLine(t *testing.T) {
	g := mustGrid(t, "XABAX")
	got, err := LocateAll([]string{"ABA"}, g)
	require.NoError(t, err)
	assert.Equal(t, span([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}), got["ABA"])
}

func TestLocateAllErrors(t *testing.T) {
	g := mustGrid(t, "AB", "CD")
	_, err := LocateAll([]string{"AB", ""}, g)
	require.ErrorIs(t, err, ErrEmptyWord)

	_, err = LocateAll([]string{"AB"}, Grid{[]rune("AB"), []rune("C")})
	require.ErrorIs(t, err, ErrInvalidGrid)

	got, err := LocateAll(nil, g)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocateAllDoesNotModifyGrid(t *testing.T) {
	g := mustGrid(t, "TAC", "XXX")
	_, err := LocateAll([]string{"CAT", "XX"}, g)
	require.NoError(t, err)
	assert.Equal(t, "TAC\nXXX", g.String())
}

func TestSolve(t *testing.T) {
	input := [][]string{
		{"CAT", "DOG"},
		{"C", "A", "T"},
		{"D", "O", "G"},
		{"B", "A", "T"},
	}
	got, err := Solve(input)
	require.NoError(t, err)
	want := Result{
		"CAT": span([2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2}),
		"DOG": span([2]int{1, 0}, [2]int{1, 1}, [2]int{1, 2}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Solve mismatch (-want +got):\n%s", diff)
	}

	got, err = Solve(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Solve([][]string{{"AB"}, {"A", "BC"}})
	require.ErrorIs(t, err, ErrInvalidGrid)

	_, err = Solve([][]string{{"AB"}, {"A", "B"}, {"C"}})
	require.ErrorIs(t, err, ErrInvalidGrid)
}
