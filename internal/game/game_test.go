package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	require.NoError(t, err)
	return b
}

func TestCheckWinner(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  PlayerMark
	}{
		{name: "No winner - empty board", board: "... ... ...", want: None},
		{name: "No winner - partial board", board: "X.. .O. ...", want: None},
		{name: "X wins - first row", board: "XXX .O. ..O", want: PlayerX},
		{name: "O wins - second row", board: "X.. OOO X.X", want: PlayerO},
		{name: "X wins - third row", board: "O.O ... XXX", want: PlayerX},
		{name: "X wins - first column", board: "XO. XO. X..", want: PlayerX},
		{name: "O wins - second column", board: "XO. XO. .O.", want: PlayerO},
		{name: "O wins - third column", board: "X.O X.O .XO", want: PlayerO},
		{name: "X wins - main diagonal", board: "X.. .X. ..X", want: PlayerX},
		{name: "O wins - anti-diagonal", board: "..O .O. O..", want: PlayerO},
		{name: "No winner - full board (draw)", board: "XOX XOO OXX", want: None},
		{name: "Winner on full board", board: "XXX OOX OXO", want: PlayerX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckWinner(mustBoard(t, tt.board)))
		})
	}
}

func TestCheckWinner_ScanOrder(t *testing.T) {
	// Not reachable through Place, but the scan order must stay fixed:
	// rows come before columns, so the X row wins over the O column.
	board := mustBoard(t, "XXX OOO ...")
	assert.Equal(t, PlayerX, CheckWinner(board))

	board = mustBoard(t, "OXX OXX O..")
	assert.Equal(t, PlayerO, CheckWinner(board), "first column is scanned before second")
}

func TestNextMark(t *testing.T) {
	var b Board
	want := []PlayerMark{PlayerX, PlayerO, PlayerX, PlayerO, PlayerX, PlayerO, PlayerX, PlayerO, PlayerX}
	for i, mark := range want {
		require.Equal(t, mark, NextMark(b), "after %d moves", i)
		// Fill cells in an order that never completes a line before the end.
		b[[]int{0, 1, 2, 4, 3, 5, 7, 6, 8}[i]] = mark
	}
}

func TestIsBoardFull(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  bool
	}{
		{name: "Empty board is not full", board: ".........", want: false},
		{name: "Partial board is not full", board: "X.. .O. ...", want: false},
		{name: "Full board is full", board: "XOX XOO OXX", want: true},
		{name: "Full board with winner is full", board: "XXX OOX OXO", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBoardFull(mustBoard(t, tt.board)))
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		board string
		want  string
	}{
		{board: ".........", want: "Next player: X"},
		{board: "X........", want: "Next player: O"},
		{board: "XO.......", want: "Next player: X"},
		{board: "XXX OO. ...", want: "Winner: X"},
		{board: "XX. OOO X..", want: "Winner: O"},
		{board: "XOX OXO OXO", want: "DRAW!"},
		{board: "XOX XOO OXX", want: "DRAW!"},
	}

	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(mustBoard(t, tt.board)))
		})
	}
}

func TestResult(t *testing.T) {
	result, mark := Result(mustBoard(t, "X.. ... ..."))
	assert.Equal(t, ResultInProgress, result)
	assert.Equal(t, None, mark)

	result, mark = Result(mustBoard(t, "OOO XX. X.."))
	assert.Equal(t, ResultWinner, result)
	assert.Equal(t, PlayerO, mark)

	result, mark = Result(mustBoard(t, "XOX XOO OXX"))
	assert.Equal(t, ResultDraw, result)
	assert.Equal(t, None, mark)
}

func TestBoard_Place(t *testing.T) {
	t.Run("writes next mark into a copy", func(t *testing.T) {
		var b Board
		next, ok := b.Place(4)
		require.True(t, ok)
		assert.Equal(t, PlayerX, next[4])
		assert.Equal(t, None, b[4], "original board must not change")

		next, ok = next.Place(0)
		require.True(t, ok)
		assert.Equal(t, PlayerO, next[0])
	})

	t.Run("occupied cell is ignored", func(t *testing.T) {
		b := mustBoard(t, "X.. ... ...")
		next, ok := b.Place(0)
		assert.False(t, ok)
		assert.Equal(t, b, next)
	})

	t.Run("no moves after a win", func(t *testing.T) {
		b := mustBoard(t, "XXX OO. ...")
		for i := range BoardSize {
			next, ok := b.Place(i)
			assert.False(t, ok, "cell %d", i)
			assert.Equal(t, b, next)
		}
	})

	t.Run("out of range index is ignored", func(t *testing.T) {
		var b Board
		for _, i := range []int{-1, 9, 100} {
			next, ok := b.Place(i)
			assert.False(t, ok)
			assert.Equal(t, b, next)
		}
	})
}

func TestBoard_Rows(t *testing.T) {
	rows := mustBoard(t, "XO. .X. ..O").Rows()
	assert.Equal(t, [3][3]PlayerMark{
		{PlayerX, PlayerO, None},
		{None, PlayerX, None},
		{None, None, PlayerO},
	}, rows)
}

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard("xo./.X./..o")
	require.NoError(t, err)
	assert.Equal(t, "XO..X...O", b.String())

	_, err = ParseBoard("XO")
	assert.Error(t, err)

	_, err = ParseBoard("XOXOXOXOXO")
	assert.Error(t, err)

	_, err = ParseBoard("XOXOZOXOX")
	assert.Error(t, err)
}

func TestScenario_WinThenRestart(t *testing.T) {
	var b Board
	require.Equal(t, "Next player: X", Status(b))

	b, _ = b.Place(0)
	require.Equal(t, PlayerX, b[0])
	require.Equal(t, "Next player: O", Status(b))

	for _, i := range []int{3, 1, 4, 2} {
		var ok bool
		b, ok = b.Place(i)
		require.True(t, ok)
	}
	assert.Equal(t, PlayerX, CheckWinner(b))
	assert.Equal(t, "Winner: X", Status(b))

	after, ok := b.Place(8)
	assert.False(t, ok)
	assert.Equal(t, b, after)

	b = Board{}
	assert.Equal(t, "Next player: X", Status(b))
}
